package network

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	socketio "github.com/zhouhui8915/go-socket.io-client"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

// socketIOClient is the part of the socket.io client the source uses.
type socketIOClient interface {
	On(event string, handler any) error
	Emit(event string, args ...any) error
}

func dialSocketIO(url string, options *socketio.Options) (socketIOClient, error) {
	client, err := socketio.NewClient(url, options)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SocketIOSource reads confirmations from a socket.io feed. Addresses are
// watched with a "subscribe" emit and confirmations arrive as "confirmed"
// events.
//
// The socket.io client cannot be closed, so a source dials once and keeps
// the connection for its lifetime. Close detaches the sink and a later
// Start attaches a new one to the same connection.
type SocketIOSource struct {
	url     string
	headers map[string][]string
	logger  zerolog.Logger
	dial    func(url string, options *socketio.Options) (socketIOClient, error)

	mu     sync.Mutex
	client socketIOClient
	sink   Sink
}

func NewSocketIOSource(feedURL string, headers map[string]string, logger zerolog.Logger) *SocketIOSource {
	converted := map[string][]string{}
	for key, value := range headers {
		converted[key] = []string{value}
	}
	return &SocketIOSource{
		url:     strings.TrimSpace(feedURL),
		headers: converted,
		logger:  logger,
		dial:    dialSocketIO,
	}
}

func (s *SocketIOSource) Start(_ context.Context, sink Sink) error {
	if s.url == "" {
		return fmt.Errorf("feed URL is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		client, err := s.dial(s.url, &socketio.Options{
			Transport: "websocket",
			Query:     map[string]string{},
			Header:    s.headers,
		})
		if err != nil {
			return err
		}
		_ = client.On("error", func(message any) {
			if current := s.currentSink(); current != nil {
				current.Fail(fmt.Errorf("confirmation feed error: %v", message))
			}
		})
		_ = client.On("disconnection", func() {
			if current := s.currentSink(); current != nil {
				current.Fail(ErrFeedClosed)
			}
		})
		_ = client.On("confirmed", func(payload map[string]any) {
			current := s.currentSink()
			if current == nil {
				return
			}
			confirmation, ok := confirmationFromPayload(payload)
			if !ok {
				s.logger.Debug().Interface("payload", payload).Msg("ignoring confirmation without hash")
				return
			}
			current.Publish(confirmation)
		})
		s.client = client
	} else {
		s.logger.Debug().Str("url", s.url).Msg("reusing socket.io connection")
	}

	s.sink = sink
	return nil
}

func (s *SocketIOSource) Watch(_ context.Context, address ledger.Address) error {
	s.mu.Lock()
	client, attached := s.client, s.sink != nil
	s.mu.Unlock()
	if client == nil || !attached {
		return fmt.Errorf("socket.io feed is not started")
	}
	return client.Emit("subscribe", address.String())
}

// Close detaches the sink; events that still arrive are dropped. The
// connection itself stays open for the next Start.
func (s *SocketIOSource) Close() error {
	s.mu.Lock()
	s.sink = nil
	s.mu.Unlock()
	return nil
}

func (s *SocketIOSource) currentSink() Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

func confirmationFromPayload(payload map[string]any) (Confirmation, bool) {
	hash := payloadString(payload, "hash")
	if meta, ok := payload["meta"].(map[string]any); ok && hash == "" {
		hash = payloadString(meta, "hash")
	}
	if hash == "" {
		return Confirmation{}, false
	}
	return Confirmation{
		Address: ledger.Address(payloadString(payload, "address")),
		Hash:    strings.ToUpper(hash),
	}, true
}

func payloadString(payload map[string]any, key string) string {
	switch typed := payload[key].(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return ""
	}
}
