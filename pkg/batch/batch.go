package batch

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/initiator"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

// MaxInnerTransactions caps the inner transactions of one batch aggregate.
const MaxInnerTransactions = 1000

// PreparedItem is one pending operation. Its envelope is resolved once, when
// the item is created.
type PreparedItem struct {
	ID        uuid.UUID
	Initiator initiator.Initiator
	Payload   *ledger.TransferTransaction

	envelope initiator.Envelope
}

// NewPreparedItem resolves the envelope of payload issued by i.
func NewPreparedItem(i initiator.Initiator, payload *ledger.TransferTransaction) (PreparedItem, error) {
	if i == nil {
		return PreparedItem{}, fmt.Errorf("initiator is required")
	}
	if payload == nil {
		return PreparedItem{}, fmt.Errorf("payload is required")
	}
	envelope, err := i.ResolveEnvelope()
	if err != nil {
		return PreparedItem{}, err
	}
	return PreparedItem{
		ID:        uuid.New(),
		Initiator: i,
		Payload:   payload,
		envelope:  envelope,
	}, nil
}

func (p PreparedItem) Envelope() initiator.Envelope {
	return p.envelope
}

type UnitKind int

const (
	UnitTransfer UnitKind = iota + 1
	UnitBatch
	UnitAggregateComplete
	UnitBonded
)

func (k UnitKind) String() string {
	switch k {
	case UnitTransfer:
		return "transfer"
	case UnitBatch:
		return "batch"
	case UnitAggregateComplete:
		return "aggregate_complete"
	case UnitBonded:
		return "bonded"
	default:
		return "unknown"
	}
}

// Unit is one submission produced by Plan.
type Unit struct {
	Index int
	Kind  UnitKind
	Items []PreparedItem
}

func (u Unit) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.Items))
	for _, item := range u.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Signers returns the distinct initiators of u in first-seen order. The
// first one is the primary signer of a batch.
func (u Unit) Signers() []initiator.Initiator {
	seen := make(map[string]struct{}, len(u.Items))
	signers := make([]initiator.Initiator, 0, len(u.Items))
	for _, item := range u.Items {
		key := item.Initiator.PublicKey().StringRaw()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		signers = append(signers, item.Initiator)
	}
	return signers
}

// Plan turns the queue into submission units in a single forward pass.
// Contiguous transfers are merged; any other envelope flushes the pending
// transfers and becomes a unit of its own.
func Plan(items []PreparedItem) []Unit {
	units := make([]Unit, 0)
	pending := make([]PreparedItem, 0)

	emit := func(kind UnitKind, unitItems []PreparedItem) {
		units = append(units, Unit{Index: len(units), Kind: kind, Items: unitItems})
	}
	flush := func() {
		for start := 0; start < len(pending); start += MaxInnerTransactions {
			end := min(start+MaxInnerTransactions, len(pending))
			chunk := append([]PreparedItem(nil), pending[start:end]...)
			if len(chunk) == 1 {
				emit(UnitTransfer, chunk)
			} else {
				emit(UnitBatch, chunk)
			}
		}
		pending = pending[:0]
	}

	for _, item := range items {
		switch item.envelope {
		case initiator.EnvelopeTransfer:
			pending = append(pending, item)
		case initiator.EnvelopeAggregateComplete:
			flush()
			emit(UnitAggregateComplete, []PreparedItem{item})
		case initiator.EnvelopeAggregateBonded:
			flush()
			emit(UnitBonded, []PreparedItem{item})
		}
	}
	flush()
	return units
}

// SignUnit signs a direct unit with deadline, whatever deadline the queued
// payloads carry. Bonded units are signed by the bonded
// commit protocol and are rejected here.
func SignUnit(unit Unit, deadline time.Time) (ledger.SignedTransaction, error) {
	if len(unit.Items) == 0 {
		return ledger.SignedTransaction{}, fmt.Errorf("unit %d has no items", unit.Index)
	}

	switch unit.Kind {
	case UnitTransfer, UnitAggregateComplete:
		item := unit.Items[0]
		return item.Initiator.Sign(item.Payload.WithDeadline(deadline))
	case UnitBatch:
		return signBatch(unit, deadline)
	case UnitBonded:
		return ledger.SignedTransaction{}, fmt.Errorf("unit %d is bonded and must be committed through the bonded protocol", unit.Index)
	default:
		return ledger.SignedTransaction{}, fmt.Errorf("unit %d has unknown kind %d", unit.Index, unit.Kind)
	}
}

func signBatch(unit Unit, deadline time.Time) (ledger.SignedTransaction, error) {
	signers := unit.Signers()
	solos := make([]*initiator.Solo, 0, len(signers))
	for _, signer := range signers {
		solo, ok := signer.(*initiator.Solo)
		if !ok {
			return ledger.SignedTransaction{}, fmt.Errorf("batch signer %s: %w", signer.PublicKey().StringRaw(), initiator.ErrUnableToSign)
		}
		solos = append(solos, solo)
	}

	inner := make([]ledger.InnerTransaction, 0, len(unit.Items))
	for _, item := range unit.Items {
		inner = append(inner, item.Payload.WithDeadline(deadline).ToAggregate(item.Initiator.PublicKey()))
	}
	aggregate := ledger.NewAggregateComplete(deadline, inner, solos[0].Network())
	return solos[0].SignBatch(aggregate, solos[1:])
}
