package network

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

// Endpoint pairs the submission channel and the confirmation feed of one
// network. A single Endpoint serves a whole announcement pass.
type Endpoint struct {
	Client *Client
	Feed   *Hub
}

type EndpointOptions struct {
	HTTPClient *http.Client
	Headers    map[string]string
	Logger     zerolog.Logger
}

// NewEndpoint resolves the REST and feed URLs of config.Network. The feed
// connection is opened lazily by the first subscription.
func NewEndpoint(config shared.Config, options EndpointOptions) (*Endpoint, error) {
	client, err := NewClient(Config{
		Network:    config.Network,
		BaseURL:    config.Endpoint,
		HTTPClient: options.HTTPClient,
		Headers:    options.Headers,
		Logger:     options.Logger,
	})
	if err != nil {
		return nil, err
	}

	feedURL := strings.TrimSpace(config.FeedURL)
	var source Source
	switch config.FeedTransport {
	case shared.FeedTransportSocketIO:
		if feedURL == "" {
			feedURL = client.BaseURL()
		}
		source = NewSocketIOSource(feedURL, options.Headers, options.Logger)
	default:
		if feedURL == "" {
			feedURL, err = FeedURLFromEndpoint(client.BaseURL())
			if err != nil {
				return nil, err
			}
		}
		source = NewListener(feedURL, WithListenerHTTPClient(options.HTTPClient), WithListenerLogger(options.Logger))
	}

	return &Endpoint{
		Client: client,
		Feed:   NewHub(source, options.Logger),
	}, nil
}

// Close releases the feed connection.
func (e *Endpoint) Close() error {
	if e == nil || e.Feed == nil {
		return nil
	}
	return e.Feed.Close()
}
