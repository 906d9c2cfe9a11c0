package network

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

// ErrFeedClosed is reported to subscriptions when the feed connection ends.
var ErrFeedClosed = errors.New("confirmation feed closed")

// Sink receives what a Source reads from the wire.
type Sink interface {
	Publish(confirmation Confirmation)
	Fail(err error)
}

// Source is a confirmation feed transport.
type Source interface {
	Start(ctx context.Context, sink Sink) error
	Watch(ctx context.Context, address ledger.Address) error
	Close() error
}

// Subscription delivers the confirmations of one address until cancelled.
type Subscription interface {
	Confirmations() <-chan Confirmation
	Err() <-chan error
	Cancel()
}

// Hub shares one Source connection between subscriptions. The source is
// started on the first Subscribe and every address is watched once.
// Delivery never blocks: a subscription whose buffer is full loses the
// confirmation, others still receive it.
type Hub struct {
	source Source
	logger zerolog.Logger

	// openMu serializes source Start and Watch calls. It is never held
	// together with delivery.
	openMu sync.Mutex

	mu            sync.Mutex
	started       bool
	starting      bool
	failure       error
	watched       map[ledger.Address]struct{}
	subscriptions map[uint64]*hubSubscription
	nextID        uint64
}

func NewHub(source Source, logger zerolog.Logger) *Hub {
	return &Hub{
		source:        source,
		logger:        logger,
		watched:       map[ledger.Address]struct{}{},
		subscriptions: map[uint64]*hubSubscription{},
	}
}

// Subscribe registers a subscription for address. It returns once the
// source watches address, so confirmations that follow are not missed.
// When hashes are given, only confirmations of those hashes are delivered.
func (h *Hub) Subscribe(ctx context.Context, address ledger.Address, hashes ...string) (Subscription, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}

	filter := map[string]struct{}{}
	for _, hash := range hashes {
		if normalized := normalizeHash(hash); normalized != "" {
			filter[normalized] = struct{}{}
		}
	}

	h.mu.Lock()
	if h.failure != nil {
		failure := h.failure
		h.mu.Unlock()
		return nil, failure
	}
	h.nextID++
	subscription := &hubSubscription{
		id:            h.nextID,
		address:       address,
		hashes:        filter,
		hub:           h,
		confirmations: make(chan Confirmation, 16),
		errs:          make(chan error, 1),
		done:          make(chan struct{}),
	}
	h.subscriptions[subscription.id] = subscription
	h.mu.Unlock()

	if err := h.open(ctx, address); err != nil {
		subscription.Cancel()
		return nil, err
	}

	h.logger.Debug().Str("address", address.String()).Uint64("subscription", subscription.id).Msg("feed subscription opened")
	return subscription, nil
}

// open starts the source if needed and watches address once.
func (h *Hub) open(ctx context.Context, address ledger.Address) error {
	h.openMu.Lock()
	defer h.openMu.Unlock()

	h.mu.Lock()
	started := h.started
	_, watched := h.watched[address]
	if !started {
		h.starting = true
	}
	h.mu.Unlock()

	if !started {
		err := h.source.Start(ctx, h)
		h.mu.Lock()
		h.starting = false
		h.started = err == nil
		h.mu.Unlock()
		if err != nil {
			return fmt.Errorf("failed to open confirmation feed: %w", err)
		}
	}

	if !watched {
		if err := h.source.Watch(ctx, address); err != nil {
			return fmt.Errorf("failed to watch %s: %w", address, err)
		}
		h.mu.Lock()
		h.watched[address] = struct{}{}
		h.mu.Unlock()
	}
	return nil
}

// Publish hands a confirmation to every subscription of its address that
// accepts its hash. A confirmation without an address goes to every
// subscription.
func (h *Hub) Publish(confirmation Confirmation) {
	h.mu.Lock()
	targets := make([]*hubSubscription, 0, len(h.subscriptions))
	for _, subscription := range h.subscriptions {
		if subscription.accepts(confirmation) {
			targets = append(targets, subscription)
		}
	}
	h.mu.Unlock()

	for _, subscription := range targets {
		select {
		case <-subscription.done:
			continue
		default:
		}
		select {
		case subscription.confirmations <- confirmation:
		default:
			h.logger.Debug().
				Str("hash", confirmation.Hash).
				Uint64("subscription", subscription.id).
				Msg("subscription buffer full, confirmation dropped")
		}
	}
}

// Fail reports err to every subscription. Later subscriptions fail with err
// until the hub is closed.
func (h *Hub) Fail(err error) {
	if err == nil {
		err = ErrFeedClosed
	}

	h.mu.Lock()
	if !h.started && !h.starting {
		h.mu.Unlock()
		return
	}
	h.failure = err
	targets := make([]*hubSubscription, 0, len(h.subscriptions))
	for _, subscription := range h.subscriptions {
		targets = append(targets, subscription)
	}
	h.mu.Unlock()

	h.logger.Warn().Err(err).Msg("confirmation feed failed")
	for _, subscription := range targets {
		select {
		case subscription.errs <- err:
		default:
		}
	}
}

// Close stops the source and cancels every subscription. A later Subscribe
// starts the source again.
func (h *Hub) Close() error {
	h.openMu.Lock()
	defer h.openMu.Unlock()

	h.mu.Lock()
	started := h.started
	subscriptions := h.subscriptions
	h.started = false
	h.failure = nil
	h.watched = map[ledger.Address]struct{}{}
	h.subscriptions = map[uint64]*hubSubscription{}
	h.mu.Unlock()

	for _, subscription := range subscriptions {
		subscription.close()
	}
	if !started {
		return nil
	}
	return h.source.Close()
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subscriptions, id)
	h.mu.Unlock()
}

type hubSubscription struct {
	id            uint64
	address       ledger.Address
	hashes        map[string]struct{}
	hub           *Hub
	confirmations chan Confirmation
	errs          chan error
	done          chan struct{}
	once          sync.Once
}

func (s *hubSubscription) accepts(confirmation Confirmation) bool {
	if confirmation.Address != "" && confirmation.Address != s.address {
		return false
	}
	if len(s.hashes) == 0 {
		return true
	}
	_, ok := s.hashes[normalizeHash(confirmation.Hash)]
	return ok
}

func (s *hubSubscription) Confirmations() <-chan Confirmation {
	return s.confirmations
}

func (s *hubSubscription) Err() <-chan error {
	return s.errs
}

func (s *hubSubscription) Cancel() {
	s.hub.remove(s.id)
	s.close()
}

func (s *hubSubscription) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func normalizeHash(hash string) string {
	return strings.ToUpper(strings.TrimSpace(hash))
}
