package network

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

const confirmedChannel = "confirmedAdded"

type ListenerOption func(*Listener)

func WithListenerHTTPClient(client *http.Client) ListenerOption {
	return func(l *Listener) {
		l.httpClient = client
	}
}

// WithDialRetries bounds the dial attempts made by Start.
func WithDialRetries(retries uint64, initialInterval time.Duration) ListenerOption {
	return func(l *Listener) {
		l.maxRetries = retries
		if initialInterval > 0 {
			l.retryInterval = initialInterval
		}
	}
}

func WithListenerLogger(logger zerolog.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// Listener is the websocket confirmation feed of a node. After connecting
// the node sends {"uid"}; the listener then subscribes to
// confirmedAdded/<address> per watched address.
type Listener struct {
	url           string
	httpClient    *http.Client
	maxRetries    uint64
	retryInterval time.Duration
	logger        zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	uid    string
	cancel context.CancelFunc
}

func NewListener(feedURL string, options ...ListenerOption) *Listener {
	listener := &Listener{
		url:           strings.TrimSpace(feedURL),
		maxRetries:    3,
		retryInterval: 500 * time.Millisecond,
		logger:        zerolog.Nop(),
	}
	for _, option := range options {
		option(listener)
	}
	return listener
}

// Start dials the feed, retrying with exponential backoff, and reads the
// session uid before handing frames to sink.
func (l *Listener) Start(ctx context.Context, sink Sink) error {
	if l.url == "" {
		return fmt.Errorf("feed URL is required")
	}

	var conn *websocket.Conn
	dial := func() error {
		dialed, _, err := websocket.Dial(ctx, l.url, &websocket.DialOptions{HTTPClient: l.httpClient})
		if err != nil {
			l.logger.Debug().Err(err).Str("url", l.url).Msg("feed dial failed")
			return err
		}
		conn = dialed
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.retryInterval
	if err := backoff.Retry(dial, backoff.WithContext(backoff.WithMaxRetries(policy, l.maxRetries), ctx)); err != nil {
		return fmt.Errorf("failed to dial %s: %w", l.url, err)
	}

	var hello feedMessage
	if err := wsjson.Read(ctx, conn, &hello); err != nil {
		conn.CloseNow()
		return fmt.Errorf("failed to read feed uid: %w", err)
	}
	if strings.TrimSpace(hello.UID) == "" {
		conn.CloseNow()
		return fmt.Errorf("feed did not send a uid")
	}

	readCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.mu.Lock()
	l.conn = conn
	l.uid = hello.UID
	l.cancel = cancel
	l.mu.Unlock()

	go l.read(readCtx, conn, sink)
	return nil
}

func (l *Listener) Watch(ctx context.Context, address ledger.Address) error {
	l.mu.Lock()
	conn, uid := l.conn, l.uid
	l.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("listener is not started")
	}

	return wsjson.Write(ctx, conn, feedSubscribeRequest{
		UID:       uid,
		Subscribe: confirmedChannel + "/" + address.String(),
	})
}

func (l *Listener) Close() error {
	l.mu.Lock()
	conn, cancel := l.conn, l.cancel
	l.conn, l.cancel, l.uid = nil, nil, ""
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return nil
	}
	if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		l.logger.Debug().Err(err).Msg("feed connection closed with error")
	}
	return nil
}

func (l *Listener) read(ctx context.Context, conn *websocket.Conn, sink Sink) {
	for {
		var message feedMessage
		if err := wsjson.Read(ctx, conn, &message); err != nil {
			if ctx.Err() != nil {
				return
			}
			if websocket.CloseStatus(err) != -1 {
				sink.Fail(ErrFeedClosed)
				return
			}
			sink.Fail(fmt.Errorf("confirmation feed read failed: %w", err))
			return
		}

		channel, address, _ := strings.Cut(message.Topic, "/")
		if channel != "" && channel != confirmedChannel {
			continue
		}
		if strings.TrimSpace(message.Meta.Hash) == "" {
			continue
		}
		sink.Publish(Confirmation{
			Address: ledger.Address(address),
			Hash:    strings.ToUpper(strings.TrimSpace(message.Meta.Hash)),
		})
	}
}

// FeedURLFromEndpoint derives the websocket feed URL of a REST endpoint.
func FeedURLFromEndpoint(endpoint string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid endpoint scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/ws"
	return parsed.String(), nil
}
