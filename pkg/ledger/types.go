package ledger

import (
	"fmt"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/shopspring/decimal"
)

type TransactionType uint16

const (
	TransactionTypeTransfer          TransactionType = 0x4154
	TransactionTypeAggregateComplete TransactionType = 0x4141
	TransactionTypeAggregateBonded   TransactionType = 0x4241
	TransactionTypeLock              TransactionType = 0x4148
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeTransfer:
		return "TRANSFER"
	case TransactionTypeAggregateComplete:
		return "AGGREGATE_COMPLETE"
	case TransactionTypeAggregateBonded:
		return "AGGREGATE_BONDED"
	case TransactionTypeLock:
		return "LOCK"
	default:
		return fmt.Sprintf("UNKNOWN(0x%04x)", uint16(t))
	}
}

// IsAggregate reports whether t wraps inner transactions.
func (t TransactionType) IsAggregate() bool {
	return t == TransactionTypeAggregateComplete || t == TransactionTypeAggregateBonded
}

const (
	NetworkCurrencyID           = "cat.currency"
	NetworkCurrencyDivisibility = 6

	DefaultDeadline = 2 * time.Hour
)

// Address identifies a ledger account. It is the alias account ID derived
// from the account's public key.
type Address string

// AddressFromPublicKey derives the deterministic account address of a key.
func AddressFromPublicKey(publicKey hedera.PublicKey) Address {
	accountID := publicKey.ToAccountID(0, 0)
	if accountID == nil {
		return Address(strings.ToUpper(publicKey.StringRaw()))
	}
	return Address(accountID.String())
}

func (a Address) String() string {
	return string(a)
}

type Mosaic struct {
	ID     string `json:"id"`
	Amount uint64 `json:"amount"`
}

// MosaicFromRelative converts a human amount such as "10.5" into atomic
// units using the mosaic divisibility.
func MosaicFromRelative(id string, amount string, divisibility int32) (Mosaic, error) {
	if strings.TrimSpace(id) == "" {
		return Mosaic{}, fmt.Errorf("mosaic ID is required")
	}
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Mosaic{}, fmt.Errorf("invalid mosaic amount %q: %w", amount, err)
	}
	if value.IsNegative() {
		return Mosaic{}, fmt.Errorf("mosaic amount cannot be negative")
	}

	atomic := value.Shift(divisibility)
	if !atomic.IsInteger() {
		return Mosaic{}, fmt.Errorf("mosaic amount %s exceeds divisibility %d", amount, divisibility)
	}
	if atomic.GreaterThan(decimal.NewFromUint64(^uint64(0))) {
		return Mosaic{}, fmt.Errorf("mosaic amount %s overflows", amount)
	}

	return Mosaic{ID: strings.TrimSpace(id), Amount: atomic.BigInt().Uint64()}, nil
}

// NetworkCurrency returns a mosaic of the network currency in whole units.
func NetworkCurrency(units uint64) Mosaic {
	return Mosaic{ID: NetworkCurrencyID, Amount: units * 1_000_000}
}

type MessageType uint8

const MessageTypePlain MessageType = 0

type Message struct {
	Type    MessageType `json:"type"`
	Payload string      `json:"payload"`
}

// PlainMessage creates an unencrypted message.
func PlainMessage(payload string) Message {
	return Message{Type: MessageTypePlain, Payload: payload}
}

// NewDeadline returns a deadline d from now, DefaultDeadline when d <= 0.
func NewDeadline(d time.Duration) time.Time {
	if d <= 0 {
		d = DefaultDeadline
	}
	return time.Now().UTC().Add(d)
}
