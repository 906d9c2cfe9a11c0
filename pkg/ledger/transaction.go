package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Transaction is implemented by every transaction shape in this package.
type Transaction interface {
	Type() TransactionType
	NetworkName() string
	body() (any, error)
	deadline() time.Time
}

type TransferTransaction struct {
	Network   string
	Deadline  time.Time
	Recipient Address
	Mosaics   []Mosaic
	Message   Message
}

// NewTransfer creates a transfer to recipient.
func NewTransfer(
	deadline time.Time,
	recipient Address,
	mosaics []Mosaic,
	message Message,
	network string,
) *TransferTransaction {
	copied := make([]Mosaic, len(mosaics))
	copy(copied, mosaics)
	return &TransferTransaction{
		Network:   network,
		Deadline:  deadline,
		Recipient: recipient,
		Mosaics:   copied,
		Message:   message,
	}
}

func (t *TransferTransaction) Type() TransactionType { return TransactionTypeTransfer }

func (t *TransferTransaction) NetworkName() string { return t.Network }

func (t *TransferTransaction) deadline() time.Time { return t.Deadline }

func (t *TransferTransaction) body() (any, error) {
	if strings.TrimSpace(string(t.Recipient)) == "" {
		return nil, fmt.Errorf("transfer recipient is required")
	}
	return transferBody{
		Recipient: t.Recipient,
		Mosaics:   t.Mosaics,
		Message:   t.Message,
	}, nil
}

// WithDeadline returns a copy of t that expires at deadline.
func (t *TransferTransaction) WithDeadline(deadline time.Time) *TransferTransaction {
	copied := *t
	copied.Mosaics = append([]Mosaic(nil), t.Mosaics...)
	copied.Deadline = deadline
	return &copied
}

// ToAggregate wraps the transfer as an inner transaction signed by signer.
func (t *TransferTransaction) ToAggregate(signer hedera.PublicKey) InnerTransaction {
	return InnerTransaction{
		Signer:      publicKeyHex(signer),
		Transaction: t,
	}
}

type InnerTransaction struct {
	Signer      string
	Transaction *TransferTransaction
}

type AggregateTransaction struct {
	Kind     TransactionType
	Network  string
	Deadline time.Time
	Inner    []InnerTransaction
}

// NewAggregateComplete creates an aggregate whose signatures are all
// collected before announcement.
func NewAggregateComplete(deadline time.Time, inner []InnerTransaction, network string) *AggregateTransaction {
	return newAggregate(TransactionTypeAggregateComplete, deadline, inner, network)
}

// NewAggregateBonded creates an aggregate that collects missing cosignatures
// on chain after a lock-funds transaction is confirmed.
func NewAggregateBonded(deadline time.Time, inner []InnerTransaction, network string) *AggregateTransaction {
	return newAggregate(TransactionTypeAggregateBonded, deadline, inner, network)
}

func newAggregate(kind TransactionType, deadline time.Time, inner []InnerTransaction, network string) *AggregateTransaction {
	copied := make([]InnerTransaction, len(inner))
	copy(copied, inner)
	return &AggregateTransaction{
		Kind:     kind,
		Network:  network,
		Deadline: deadline,
		Inner:    copied,
	}
}

func (t *AggregateTransaction) Type() TransactionType { return t.Kind }

func (t *AggregateTransaction) NetworkName() string { return t.Network }

func (t *AggregateTransaction) deadline() time.Time { return t.Deadline }

func (t *AggregateTransaction) body() (any, error) {
	if !t.Kind.IsAggregate() {
		return nil, fmt.Errorf("invalid aggregate kind %s", t.Kind)
	}
	if len(t.Inner) == 0 {
		return nil, fmt.Errorf("aggregate requires at least one inner transaction")
	}

	inner := make([]innerBody, 0, len(t.Inner))
	for index, transaction := range t.Inner {
		if transaction.Transaction == nil {
			return nil, fmt.Errorf("inner transaction %d is empty", index)
		}
		if strings.TrimSpace(transaction.Signer) == "" {
			return nil, fmt.Errorf("inner transaction %d has no signer", index)
		}
		transfer, err := transaction.Transaction.body()
		if err != nil {
			return nil, fmt.Errorf("inner transaction %d: %w", index, err)
		}
		inner = append(inner, innerBody{
			Signer:   transaction.Signer,
			Type:     TransactionTypeTransfer,
			Transfer: transfer.(transferBody),
		})
	}
	return aggregateBody{Inner: inner}, nil
}

type LockFundsTransaction struct {
	Network  string
	Deadline time.Time
	Mosaic   Mosaic
	Duration uint64
	Hash     string
}

// NewLockFunds creates the lock that backs a signed bonded aggregate.
func NewLockFunds(
	deadline time.Time,
	mosaic Mosaic,
	duration uint64,
	signed SignedTransaction,
	network string,
) (*LockFundsTransaction, error) {
	if signed.Type != TransactionTypeAggregateBonded {
		return nil, fmt.Errorf("lock funds requires a signed aggregate bonded transaction, got %s", signed.Type)
	}
	if strings.TrimSpace(signed.Hash) == "" {
		return nil, fmt.Errorf("signed aggregate bonded transaction has no hash")
	}
	if duration == 0 {
		return nil, fmt.Errorf("lock duration must be positive")
	}
	return &LockFundsTransaction{
		Network:  network,
		Deadline: deadline,
		Mosaic:   mosaic,
		Duration: duration,
		Hash:     signed.Hash,
	}, nil
}

func (t *LockFundsTransaction) Type() TransactionType { return TransactionTypeLock }

func (t *LockFundsTransaction) NetworkName() string { return t.Network }

func (t *LockFundsTransaction) deadline() time.Time { return t.Deadline }

func (t *LockFundsTransaction) body() (any, error) {
	return lockBody{Mosaic: t.Mosaic, Duration: t.Duration, Hash: t.Hash}, nil
}

type transferBody struct {
	Recipient Address  `json:"recipient"`
	Mosaics   []Mosaic `json:"mosaics"`
	Message   Message  `json:"message"`
}

type innerBody struct {
	Signer   string          `json:"signer"`
	Type     TransactionType `json:"type"`
	Transfer transferBody    `json:"transfer"`
}

type aggregateBody struct {
	Inner []innerBody `json:"transactions"`
}

type lockBody struct {
	Mosaic   Mosaic `json:"mosaic"`
	Duration uint64 `json:"duration"`
	Hash     string `json:"hash"`
}

type envelope struct {
	Type     TransactionType `json:"type"`
	Network  string          `json:"network"`
	Deadline int64           `json:"deadline"`
	Body     any             `json:"body"`
}

func encodeBody(transaction Transaction) ([]byte, error) {
	if transaction == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	body, err := transaction.body()
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(envelope{
		Type:     transaction.Type(),
		Network:  transaction.NetworkName(),
		Deadline: transaction.deadline().UnixMilli(),
		Body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction body: %w", err)
	}
	return encoded, nil
}
