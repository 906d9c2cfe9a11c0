package network

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	socketio "github.com/zhouhui8915/go-socket.io-client"
)

type fakeSocketIOClient struct {
	mu       sync.Mutex
	handlers map[string]any
	emitted  []string
}

func (f *fakeSocketIOClient) On(event string, handler any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = handler
	return nil
}

func (f *fakeSocketIOClient) Emit(event string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, arg := range args {
		f.emitted = append(f.emitted, event+":"+arg.(string))
	}
	return nil
}

func (f *fakeSocketIOClient) confirm(payload map[string]any) {
	f.mu.Lock()
	handler := f.handlers["confirmed"].(func(map[string]any))
	f.mu.Unlock()
	handler(payload)
}

type recordingSink struct {
	mu            sync.Mutex
	confirmations []Confirmation
	failures      []error
}

func (r *recordingSink) Publish(confirmation Confirmation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmations = append(r.confirmations, confirmation)
}

func (r *recordingSink) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func TestSocketIOSourceReusesConnectionAcrossRestarts(t *testing.T) {
	client := &fakeSocketIOClient{handlers: map[string]any{}}
	dials := 0
	source := NewSocketIOSource("https://feed.example.com", map[string]string{"x-api-key": "secret"}, zerolog.Nop())
	source.dial = func(url string, options *socketio.Options) (socketIOClient, error) {
		dials++
		assert.Equal(t, "https://feed.example.com", url)
		assert.Equal(t, []string{"secret"}, options.Header["x-api-key"])
		return client, nil
	}
	ctx := context.Background()

	require.Error(t, source.Watch(ctx, "0.0.1"))

	first := &recordingSink{}
	require.NoError(t, source.Start(ctx, first))
	require.NoError(t, source.Watch(ctx, "0.0.1"))
	client.confirm(map[string]any{"address": "0.0.1", "hash": "aa"})
	client.confirm(map[string]any{"address": "0.0.1"})

	require.NoError(t, source.Close())
	require.Error(t, source.Watch(ctx, "0.0.1"))
	client.confirm(map[string]any{"address": "0.0.1", "hash": "bb"})

	second := &recordingSink{}
	require.NoError(t, source.Start(ctx, second))
	require.NoError(t, source.Watch(ctx, "0.0.2"))
	client.confirm(map[string]any{"meta": map[string]any{"hash": "cc"}})
	client.handlers["disconnection"].(func())()

	assert.Equal(t, 1, dials)
	assert.Equal(t, []string{"subscribe:0.0.1", "subscribe:0.0.2"}, client.emitted)
	assert.Equal(t, []Confirmation{{Address: "0.0.1", Hash: "AA"}}, first.confirmations)
	assert.Empty(t, first.failures)
	assert.Equal(t, []Confirmation{{Hash: "CC"}}, second.confirmations)
	require.Len(t, second.failures, 1)
	assert.ErrorIs(t, second.failures[0], ErrFeedClosed)
}
