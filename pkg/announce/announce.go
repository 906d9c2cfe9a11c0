package announce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/batch"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/bonded"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

const (
	StateSubmitted = "submitted"
	StateFailed    = "failed"
)

type Submitter interface {
	Announce(ctx context.Context, signed ledger.SignedTransaction) error
	AnnouncePartial(ctx context.Context, signed ledger.SignedTransaction) error
}

// Result is the outcome of one submission unit. State is StateSubmitted or
// StateFailed for direct units and the final commitment state for bonded
// units.
type Result struct {
	UnitIndex int
	Kind      batch.UnitKind
	ItemIDs   []uuid.UUID
	Hash      string
	State     string
	Err       error
}

func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Observer receives every result. It may be called from several goroutines.
type Observer interface {
	OnResult(result Result)
}

type ObserverFunc func(Result)

func (f ObserverFunc) OnResult(result Result) {
	f(result)
}

type options struct {
	logger              zerolog.Logger
	observer            Observer
	metrics             *Metrics
	confirmationTimeout time.Duration
	deadline            time.Duration
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithConfirmationTimeout bounds the lock confirmation wait of bonded units.
func WithConfirmationTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.confirmationTimeout = timeout
	}
}

// WithDeadline sets how long signed transactions stay valid.
func WithDeadline(deadline time.Duration) Option {
	return func(o *options) {
		o.deadline = deadline
	}
}

func buildOptions(opts []Option) options {
	resolved := options{
		logger:              zerolog.Nop(),
		confirmationTimeout: bonded.DefaultConfirmationTimeout,
		deadline:            ledger.DefaultDeadline,
	}
	for _, option := range opts {
		option(&resolved)
	}
	return resolved
}

// Announcer submits signed units and reports one result per unit. It never
// retries.
type Announcer struct {
	submitter Submitter
	options   options
}

func NewAnnouncer(submitter Submitter, opts ...Option) *Announcer {
	return &Announcer{submitter: submitter, options: buildOptions(opts)}
}

// Submit announces the signed transaction of a direct unit.
func (a *Announcer) Submit(ctx context.Context, unit batch.Unit, signed ledger.SignedTransaction) Result {
	result := Result{
		UnitIndex: unit.Index,
		Kind:      unit.Kind,
		ItemIDs:   unit.ItemIDs(),
		Hash:      signed.Hash,
		State:     StateSubmitted,
	}
	if err := a.submitter.Announce(ctx, signed); err != nil {
		result.State = StateFailed
		result.Err = err
	}
	a.Report(result)
	return result
}

// Report logs result, counts it and hands it to the observer.
func (a *Announcer) Report(result Result) {
	event := a.options.logger.Info()
	if result.Err != nil {
		event = a.options.logger.Warn().Err(result.Err)
	}
	event.
		Int("unit", result.UnitIndex).
		Str("kind", result.Kind.String()).
		Str("hash", result.Hash).
		Str("state", result.State).
		Int("items", len(result.ItemIDs)).
		Msg("unit announced")

	a.options.metrics.observeResult(result)
	if a.options.observer != nil {
		a.options.observer.OnResult(result)
	}
}
