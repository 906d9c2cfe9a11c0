package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

type fakeSource struct {
	mu       sync.Mutex
	starts   int
	closes   int
	watched  []ledger.Address
	startErr error
}

func (f *fakeSource) Start(context.Context, Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.startErr
}

func (f *fakeSource) Watch(_ context.Context, address ledger.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watched = append(f.watched, address)
	return nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func receive(t *testing.T, subscription Subscription) Confirmation {
	t.Helper()
	select {
	case confirmation := <-subscription.Confirmations():
		return confirmation
	case err := <-subscription.Err():
		t.Fatalf("unexpected feed error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for confirmation")
	}
	return Confirmation{}
}

func TestHubSharesSourceAndRoutesByAddress(t *testing.T) {
	source := &fakeSource{}
	hub := NewHub(source, zerolog.Nop())
	ctx := context.Background()

	first, err := hub.Subscribe(ctx, "0.0.1")
	require.NoError(t, err)
	second, err := hub.Subscribe(ctx, "0.0.1")
	require.NoError(t, err)
	other, err := hub.Subscribe(ctx, "0.0.2")
	require.NoError(t, err)

	assert.Equal(t, 1, source.starts)
	assert.Equal(t, []ledger.Address{"0.0.1", "0.0.2"}, source.watched)

	hub.Publish(Confirmation{Address: "0.0.1", Hash: "AA"})
	assert.Equal(t, "AA", receive(t, first).Hash)
	assert.Equal(t, "AA", receive(t, second).Hash)
	select {
	case confirmation := <-other.Confirmations():
		t.Fatalf("unexpected confirmation for other address: %+v", confirmation)
	default:
	}

	hub.Publish(Confirmation{Hash: "BB"})
	assert.Equal(t, "BB", receive(t, other).Hash)
	assert.Equal(t, "BB", receive(t, first).Hash)
	assert.Equal(t, "BB", receive(t, second).Hash)

	second.Cancel()
	second.Cancel()
	hub.Publish(Confirmation{Address: "0.0.1", Hash: "CC"})
	assert.Equal(t, "CC", receive(t, first).Hash)

	require.NoError(t, hub.Close())
	assert.Equal(t, 1, source.closes)
}

func TestHubFailureReachesSubscriptions(t *testing.T) {
	source := &fakeSource{}
	hub := NewHub(source, zerolog.Nop())

	subscription, err := hub.Subscribe(context.Background(), "0.0.1")
	require.NoError(t, err)

	hub.Fail(nil)
	select {
	case err := <-subscription.Err():
		assert.ErrorIs(t, err, ErrFeedClosed)
	case <-time.After(time.Second):
		t.Fatal("expected feed error")
	}

	_, err = hub.Subscribe(context.Background(), "0.0.3")
	require.ErrorIs(t, err, ErrFeedClosed)

	require.NoError(t, hub.Close())
	_, err = hub.Subscribe(context.Background(), "0.0.3")
	require.NoError(t, err)
	assert.Equal(t, 2, source.starts)
}

func TestHubStartError(t *testing.T) {
	source := &fakeSource{startErr: errors.New("boom")}
	hub := NewHub(source, zerolog.Nop())

	_, err := hub.Subscribe(context.Background(), "0.0.1")
	require.Error(t, err)
	_, err = hub.Subscribe(context.Background(), "")
	require.Error(t, err)

	hub.Fail(errors.New("ignored before start"))
	require.NoError(t, hub.Close())
	assert.Equal(t, 0, source.closes)
}

func TestHubDeliveryDoesNotWaitForIdleSubscriptions(t *testing.T) {
	hub := NewHub(&fakeSource{}, zerolog.Nop())
	defer hub.Close()
	ctx := context.Background()

	idle, err := hub.Subscribe(ctx, "0.0.1")
	require.NoError(t, err)
	defer idle.Cancel()
	waiting, err := hub.Subscribe(ctx, "0.0.1", " mine ")
	require.NoError(t, err)
	defer waiting.Cancel()

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < 32; i++ {
			hub.Publish(Confirmation{Address: "0.0.1", Hash: "OTHER"})
		}
		hub.Publish(Confirmation{Address: "0.0.1", Hash: "MINE"})
	}()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a subscription that is not reading")
	}
	assert.Equal(t, "MINE", receive(t, waiting).Hash)
	select {
	case confirmation := <-waiting.Confirmations():
		t.Fatalf("unexpected confirmation for filtered subscription: %+v", confirmation)
	default:
	}
	assert.Len(t, idle.Confirmations(), cap(idle.(*hubSubscription).confirmations))
}

type gatedSource struct {
	*fakeSource
	gated   ledger.Address
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) Watch(ctx context.Context, address ledger.Address) error {
	if address == g.gated {
		close(g.entered)
		<-g.release
	}
	return g.fakeSource.Watch(ctx, address)
}

func TestHubSubscribeDoesNotBlockDelivery(t *testing.T) {
	source := &gatedSource{
		fakeSource: &fakeSource{},
		gated:      "0.0.9",
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	hub := NewHub(source, zerolog.Nop())
	defer hub.Close()
	ctx := context.Background()

	existing, err := hub.Subscribe(ctx, "0.0.1")
	require.NoError(t, err)

	subscribed := make(chan error, 1)
	go func() {
		subscription, err := hub.Subscribe(ctx, "0.0.9")
		if err == nil {
			subscription.Cancel()
		}
		subscribed <- err
	}()
	<-source.entered

	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		hub.Publish(Confirmation{Address: "0.0.1", Hash: "AA"})
		existing.Cancel()
	}()
	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery waited for a pending watch")
	}
	assert.Equal(t, "AA", receive(t, existing).Hash)

	close(source.release)
	require.NoError(t, <-subscribed)
	assert.Equal(t, 1, source.starts)
	assert.Equal(t, []ledger.Address{"0.0.1", "0.0.9"}, source.watched)
}

func TestListenerSubscribesAndDeliversConfirmations(t *testing.T) {
	subscribed := make(chan feedSubscribeRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		if err := wsjson.Write(ctx, conn, map[string]string{"uid": "session-1"}); err != nil {
			return
		}
		var request feedSubscribeRequest
		if err := wsjson.Read(ctx, conn, &request); err != nil {
			return
		}
		subscribed <- request

		_ = wsjson.Write(ctx, conn, map[string]any{"topic": "status/0.0.5", "meta": map[string]string{"hash": "ignored"}})
		_ = wsjson.Write(ctx, conn, map[string]any{"topic": "confirmedAdded/0.0.5", "meta": map[string]string{"hash": "abcd"}})
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}))
	defer server.Close()

	hub := NewHub(NewListener(server.URL, WithDialRetries(0, time.Millisecond)), zerolog.Nop())
	defer hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subscription, err := hub.Subscribe(ctx, "0.0.5")
	require.NoError(t, err)

	select {
	case request := <-subscribed:
		assert.Equal(t, "session-1", request.UID)
		assert.Equal(t, "confirmedAdded/0.0.5", request.Subscribe)
	case <-ctx.Done():
		t.Fatal("server never received the subscription")
	}

	select {
	case confirmation := <-subscription.Confirmations():
		assert.Equal(t, Confirmation{Address: "0.0.5", Hash: "ABCD"}, confirmation)
	case <-ctx.Done():
		t.Fatal("timed out waiting for confirmation")
	}

	select {
	case err := <-subscription.Err():
		assert.ErrorIs(t, err, ErrFeedClosed)
	case <-ctx.Done():
		t.Fatal("expected the feed to report its close")
	}
}

func TestListenerDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	listener := NewListener(server.URL, WithDialRetries(1, time.Millisecond))
	err := listener.Start(context.Background(), NewHub(listener, zerolog.Nop()))
	require.Error(t, err)

	require.Error(t, NewListener("").Start(context.Background(), nil))
	require.Error(t, NewListener(server.URL).Watch(context.Background(), "0.0.1"))
	require.NoError(t, NewListener(server.URL).Close())
}

func TestConfirmationFromPayload(t *testing.T) {
	confirmation, ok := confirmationFromPayload(map[string]any{"address": "0.0.9", "meta": map[string]any{"hash": "ab"}})
	require.True(t, ok)
	assert.Equal(t, Confirmation{Address: "0.0.9", Hash: "AB"}, confirmation)

	confirmation, ok = confirmationFromPayload(map[string]any{"hash": "cd"})
	require.True(t, ok)
	assert.Equal(t, "CD", confirmation.Hash)

	_, ok = confirmationFromPayload(map[string]any{"address": "0.0.9"})
	assert.False(t, ok)
}
