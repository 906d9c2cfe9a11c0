package initiator

import (
	"errors"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/hashing"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

var (
	ErrUnableToSign             = errors.New("initiator unable to sign")
	ErrSoloRequiresPrivateKey   = errors.New("solo initiator requires a private key")
	ErrMultisigRequiresInfo     = errors.New("multisig initiator requires multisig info")
	ErrMultisigRequiresCosigner = errors.New("multisig initiator requires at least one cosigner")
)

type Envelope int

const (
	EnvelopeTransfer Envelope = iota + 1
	EnvelopeAggregateComplete
	EnvelopeAggregateBonded
)

func (e Envelope) String() string {
	switch e {
	case EnvelopeTransfer:
		return "TRANSFER"
	case EnvelopeAggregateComplete:
		return "AGGREGATE_COMPLETE"
	case EnvelopeAggregateBonded:
		return "AGGREGATE_BONDED"
	default:
		return "UNKNOWN"
	}
}

// TransactionType returns the ledger transaction type announced for e.
func (e Envelope) TransactionType() ledger.TransactionType {
	switch e {
	case EnvelopeAggregateComplete:
		return ledger.TransactionTypeAggregateComplete
	case EnvelopeAggregateBonded:
		return ledger.TransactionTypeAggregateBonded
	default:
		return ledger.TransactionTypeTransfer
	}
}

// Initiator is implemented by Solo, Hardware and Multisig only.
type Initiator interface {
	PublicKey() hedera.PublicKey
	Network() string
	Address() ledger.Address
	CanSign() bool
	Complete() bool
	ResolveEnvelope() (Envelope, error)
	Sign(transaction ledger.Transaction) (ledger.SignedTransaction, error)

	isInitiator()
}

// MultisigInfo lists the cosignatories available locally.
type MultisigInfo struct {
	Cosignatories []hedera.PrivateKey
	Complete      bool
}

type Solo struct {
	privateKey hedera.PrivateKey
	network    string
}

// NewSolo creates an initiator that signs with privateKey.
func NewSolo(privateKey hedera.PrivateKey, network string) (*Solo, error) {
	if len(privateKey.BytesRaw()) == 0 {
		return nil, ErrSoloRequiresPrivateKey
	}
	normalized, err := shared.NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}
	return &Solo{privateKey: privateKey, network: normalized}, nil
}

func (s *Solo) isInitiator() {}

func (s *Solo) PublicKey() hedera.PublicKey { return s.privateKey.PublicKey() }

func (s *Solo) PrivateKey() hedera.PrivateKey { return s.privateKey }

func (s *Solo) Network() string { return s.network }

func (s *Solo) Address() ledger.Address { return ledger.AddressFromPublicKey(s.PublicKey()) }

func (s *Solo) CanSign() bool { return true }

func (s *Solo) Complete() bool { return true }

func (s *Solo) ResolveEnvelope() (Envelope, error) { return EnvelopeTransfer, nil }

// Sign signs transfers and lock transactions. A solo key is not
// aggregation capable on its own, so aggregates fail with ErrUnableToSign.
func (s *Solo) Sign(transaction ledger.Transaction) (ledger.SignedTransaction, error) {
	if transaction == nil {
		return ledger.SignedTransaction{}, fmt.Errorf("transaction is required")
	}
	if transaction.Type().IsAggregate() {
		return ledger.SignedTransaction{}, ErrUnableToSign
	}
	return ledger.Sign(transaction, s.privateKey)
}

// SignBatch signs an aggregate of batched transfers with s as the primary
// signer and cosigners as cosignatories.
func (s *Solo) SignBatch(aggregate *ledger.AggregateTransaction, cosigners []*Solo) (ledger.SignedTransaction, error) {
	keys := make([]hedera.PrivateKey, 0, len(cosigners))
	for _, cosigner := range cosigners {
		if cosigner == nil {
			continue
		}
		keys = append(keys, cosigner.privateKey)
	}
	return ledger.SignWithCosignatories(aggregate, s.privateKey, keys)
}

type Hardware struct {
	publicKey hedera.PublicKey
	network   string
}

// NewHardware creates an initiator for a hardware wallet account.
func NewHardware(publicKey hedera.PublicKey, network string) (*Hardware, error) {
	if len(publicKey.BytesRaw()) == 0 {
		return nil, fmt.Errorf("hardware initiator requires a public key")
	}
	normalized, err := shared.NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}
	return &Hardware{publicKey: publicKey, network: normalized}, nil
}

func (h *Hardware) isInitiator() {}

func (h *Hardware) PublicKey() hedera.PublicKey { return h.publicKey }

func (h *Hardware) Network() string { return h.network }

func (h *Hardware) Address() ledger.Address { return ledger.AddressFromPublicKey(h.publicKey) }

func (h *Hardware) CanSign() bool { return false }

func (h *Hardware) Complete() bool { return false }

func (h *Hardware) ResolveEnvelope() (Envelope, error) { return 0, ErrUnableToSign }

func (h *Hardware) Sign(ledger.Transaction) (ledger.SignedTransaction, error) {
	return ledger.SignedTransaction{}, ErrUnableToSign
}

type Multisig struct {
	publicKey     hedera.PublicKey
	network       string
	cosignatories []hedera.PrivateKey
	complete      bool
}

// NewMultisig creates an initiator for the multisig account publicKey.
func NewMultisig(publicKey hedera.PublicKey, network string, info *MultisigInfo) (*Multisig, error) {
	if info == nil {
		return nil, ErrMultisigRequiresInfo
	}
	if len(info.Cosignatories) == 0 {
		return nil, ErrMultisigRequiresCosigner
	}
	if len(publicKey.BytesRaw()) == 0 {
		return nil, fmt.Errorf("multisig initiator requires a public key")
	}
	for index, cosignatory := range info.Cosignatories {
		if len(cosignatory.BytesRaw()) == 0 {
			return nil, fmt.Errorf("multisig cosignatory %d has no private key", index)
		}
	}
	normalized, err := shared.NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}

	cosignatories := make([]hedera.PrivateKey, len(info.Cosignatories))
	copy(cosignatories, info.Cosignatories)
	return &Multisig{
		publicKey:     publicKey,
		network:       normalized,
		cosignatories: cosignatories,
		complete:      info.Complete,
	}, nil
}

func (m *Multisig) isInitiator() {}

func (m *Multisig) PublicKey() hedera.PublicKey { return m.publicKey }

func (m *Multisig) Network() string { return m.network }

func (m *Multisig) Address() ledger.Address { return ledger.AddressFromPublicKey(m.publicKey) }

func (m *Multisig) CanSign() bool { return len(m.cosignatories) > 0 }

func (m *Multisig) Complete() bool { return m.complete }

// Cosignatories returns the public keys of the local cosignatories.
func (m *Multisig) Cosignatories() []hedera.PublicKey {
	keys := make([]hedera.PublicKey, 0, len(m.cosignatories))
	for _, cosignatory := range m.cosignatories {
		keys = append(keys, cosignatory.PublicKey())
	}
	return keys
}

// LockSigner returns the public key that signs lock transactions.
func (m *Multisig) LockSigner() hedera.PublicKey {
	return m.cosignatories[0].PublicKey()
}

func (m *Multisig) ResolveEnvelope() (Envelope, error) {
	if m.complete {
		return EnvelopeAggregateComplete, nil
	}
	return EnvelopeAggregateBonded, nil
}

// Sign wraps a transfer into the aggregate the account's envelope requires,
// signs aggregates passed directly, and signs lock transactions with the
// first cosignatory.
func (m *Multisig) Sign(transaction ledger.Transaction) (ledger.SignedTransaction, error) {
	switch typed := transaction.(type) {
	case nil:
		return ledger.SignedTransaction{}, fmt.Errorf("transaction is required")
	case *ledger.TransferTransaction:
		return m.signAggregate(m.Wrap(typed))
	case *ledger.AggregateTransaction:
		return m.signAggregate(typed)
	case *ledger.LockFundsTransaction:
		return ledger.Sign(typed, m.cosignatories[0])
	default:
		return ledger.SignedTransaction{}, fmt.Errorf("unsupported transaction type %s", transaction.Type())
	}
}

// Wrap places transfer inside the aggregate shape of m's envelope, with the
// multisig account as the inner signer.
func (m *Multisig) Wrap(transfer *ledger.TransferTransaction) *ledger.AggregateTransaction {
	inner := []ledger.InnerTransaction{transfer.ToAggregate(m.publicKey)}
	if m.complete {
		return ledger.NewAggregateComplete(transfer.Deadline, inner, transfer.Network)
	}
	return ledger.NewAggregateBonded(transfer.Deadline, inner, transfer.Network)
}

func (m *Multisig) signAggregate(aggregate *ledger.AggregateTransaction) (ledger.SignedTransaction, error) {
	return ledger.SignWithCosignatories(aggregate, m.cosignatories[0], m.cosignatories[1:])
}

// FileHashMessage returns the message recorded for data. Solo initiators
// sign the digest; initiators without a local key record the plain digest.
func FileHashMessage(i Initiator, data []byte, function hashing.HashFunction) (string, error) {
	if function == nil {
		return "", fmt.Errorf("hash function is required")
	}
	if solo, ok := i.(*Solo); ok {
		return function.SignedHashing(data, solo.privateKey)
	}
	return function.NonSignedHashing(data), nil
}
