package bonded

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/initiator"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/network"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

const (
	// LockDuration is the number of blocks a lock stays valid.
	LockDuration uint64 = 480

	DefaultConfirmationTimeout = shared.DefaultConfirmationTimeout
)

// LockStake is the amount escrowed by every lock: 10 units of the network
// currency.
var LockStake = ledger.NetworkCurrency(10)

// ErrLockExpired is reported when a lock is not confirmed in time, the wait
// is cancelled or the feed fails first.
var ErrLockExpired = errors.New("lock expired unconfirmed")

type State int

const (
	StatePrepared State = iota
	StateLockSigned
	StateLockSubmitted
	StateLockConfirmed
	StateAggregateSubmitted
	StateAbandoned
	StateLockExpired
)

func (s State) String() string {
	switch s {
	case StatePrepared:
		return "prepared"
	case StateLockSigned:
		return "lock_signed"
	case StateLockSubmitted:
		return "lock_submitted"
	case StateLockConfirmed:
		return "lock_confirmed"
	case StateAggregateSubmitted:
		return "aggregate_submitted"
	case StateAbandoned:
		return "abandoned"
	case StateLockExpired:
		return "lock_expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateAggregateSubmitted || s == StateAbandoned || s == StateLockExpired
}

type Submitter interface {
	Announce(ctx context.Context, signed ledger.SignedTransaction) error
	AnnouncePartial(ctx context.Context, signed ledger.SignedTransaction) error
}

// Feed subscribes to the confirmations of address, limited to hashes when
// any are given.
type Feed interface {
	Subscribe(ctx context.Context, address ledger.Address, hashes ...string) (network.Subscription, error)
}

// Commitment pairs a signed bonded aggregate with the signed lock that
// references its hash.
type Commitment struct {
	Aggregate  ledger.SignedTransaction
	Lock       ledger.SignedTransaction
	LockSigner ledger.Address

	mu    sync.Mutex
	state State
}

// Prepare builds and signs the bonded aggregate wrapping payload, then the
// lock-funds transaction referencing it.
func Prepare(i initiator.Initiator, payload *ledger.TransferTransaction, deadline time.Time) (*Commitment, error) {
	if i == nil {
		return nil, fmt.Errorf("initiator is required")
	}
	if payload == nil {
		return nil, fmt.Errorf("payload is required")
	}

	aggregate := ledger.NewAggregateBonded(
		deadline,
		[]ledger.InnerTransaction{payload.WithDeadline(deadline).ToAggregate(i.PublicKey())},
		i.Network(),
	)
	signedAggregate, err := i.Sign(aggregate)
	if err != nil {
		return nil, fmt.Errorf("failed to sign bonded aggregate: %w", err)
	}

	lock, err := ledger.NewLockFunds(deadline, LockStake, LockDuration, signedAggregate, i.Network())
	if err != nil {
		return nil, err
	}
	signedLock, err := i.Sign(lock)
	if err != nil {
		return nil, fmt.Errorf("failed to sign lock: %w", err)
	}

	lockSigner, err := shared.ParsePublicKey(signedLock.Signer)
	if err != nil {
		return nil, fmt.Errorf("invalid lock signer: %w", err)
	}

	return &Commitment{
		Aggregate:  signedAggregate,
		Lock:       signedLock,
		LockSigner: ledger.AddressFromPublicKey(lockSigner),
		state:      StateLockSigned,
	}, nil
}

func (c *Commitment) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

type Option func(*Protocol)

// WithConfirmationTimeout bounds the wait for the lock confirmation.
func WithConfirmationTimeout(timeout time.Duration) Option {
	return func(p *Protocol) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Protocol) {
		p.logger = logger
	}
}

// WithTransitionHook registers fn to be called after every state change.
func WithTransitionHook(fn func(*Commitment, State)) Option {
	return func(p *Protocol) {
		p.hook = fn
	}
}

// Protocol drives commitments from LockSigned to a terminal state.
type Protocol struct {
	submitter Submitter
	feed      Feed
	timeout   time.Duration
	logger    zerolog.Logger
	hook      func(*Commitment, State)
}

func New(submitter Submitter, feed Feed, options ...Option) *Protocol {
	protocol := &Protocol{
		submitter: submitter,
		feed:      feed,
		timeout:   DefaultConfirmationTimeout,
		logger:    zerolog.Nop(),
	}
	for _, option := range options {
		option(protocol)
	}
	return protocol
}

// Commit subscribes to the lock signer's confirmations, submits the lock,
// waits for the confirmation of that exact lock hash and then submits the
// aggregate on the partial channel. The returned error is nil only when
// the commitment reached StateAggregateSubmitted.
func (p *Protocol) Commit(ctx context.Context, commitment *Commitment) error {
	if commitment == nil {
		return fmt.Errorf("commitment is required")
	}
	if state := commitment.State(); state != StateLockSigned {
		return fmt.Errorf("commitment is %s, expected %s", state, StateLockSigned)
	}
	if p.submitter == nil || p.feed == nil {
		p.transition(commitment, StateAbandoned)
		return fmt.Errorf("bonded commit requires a submitter and a confirmation feed")
	}

	logger := p.logger.With().
		Str("lock_hash", commitment.Lock.Hash).
		Str("aggregate_hash", commitment.Aggregate.Hash).
		Logger()

	subscription, err := p.feed.Subscribe(ctx, commitment.LockSigner, commitment.Lock.Hash)
	if err != nil {
		p.transition(commitment, StateAbandoned)
		return fmt.Errorf("failed to subscribe to %s: %w", commitment.LockSigner, err)
	}

	if err := p.submitter.Announce(ctx, commitment.Lock); err != nil {
		subscription.Cancel()
		p.transition(commitment, StateAbandoned)
		logger.Warn().Err(err).Msg("lock submission failed")
		return fmt.Errorf("failed to submit lock: %w", err)
	}
	p.transition(commitment, StateLockSubmitted)

	err = p.waitForLock(ctx, subscription, commitment.Lock.Hash)
	subscription.Cancel()
	if err != nil {
		p.transition(commitment, StateLockExpired)
		logger.Warn().Err(err).Msg("lock not confirmed")
		return err
	}
	p.transition(commitment, StateLockConfirmed)

	if err := p.submitter.AnnouncePartial(ctx, commitment.Aggregate); err != nil {
		p.transition(commitment, StateAbandoned)
		logger.Warn().Err(err).Msg("bonded aggregate submission failed")
		return fmt.Errorf("failed to submit bonded aggregate: %w", err)
	}
	p.transition(commitment, StateAggregateSubmitted)
	logger.Info().Msg("bonded aggregate submitted")
	return nil
}

func (p *Protocol) waitForLock(ctx context.Context, subscription network.Subscription, lockHash string) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrLockExpired, ctx.Err())
		case <-timer.C:
			return fmt.Errorf("%w: no confirmation within %s", ErrLockExpired, p.timeout)
		case err := <-subscription.Err():
			return fmt.Errorf("%w: %w", ErrLockExpired, err)
		case confirmation := <-subscription.Confirmations():
			if strings.EqualFold(strings.TrimSpace(confirmation.Hash), lockHash) {
				return nil
			}
		}
	}
}

func (p *Protocol) transition(commitment *Commitment, state State) {
	commitment.mu.Lock()
	commitment.state = state
	commitment.mu.Unlock()

	p.logger.Debug().
		Str("lock_hash", commitment.Lock.Hash).
		Str("state", state.String()).
		Msg("bonded commitment transition")
	if p.hook != nil {
		p.hook(commitment, state)
	}
}
