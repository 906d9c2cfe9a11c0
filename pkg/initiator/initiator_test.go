package initiator

import (
	"errors"
	"strings"
	"testing"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/hashing"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

const sampleData = "I am legen wait for it dary"

func generateKey(t *testing.T) hedera.PrivateKey {
	t.Helper()
	key, err := hedera.PrivateKeyGenerateEd25519()
	require.NoError(t, err)
	return key
}

func sampleTransfer(t *testing.T) *ledger.TransferTransaction {
	t.Helper()
	return ledger.NewTransfer(
		time.Now().Add(time.Hour),
		ledger.AddressFromPublicKey(generateKey(t).PublicKey()),
		nil,
		ledger.PlainMessage("hello"),
		"testnet",
	)
}

func TestSoloInitiator(t *testing.T) {
	key := generateKey(t)
	solo, err := NewSolo(key, "")
	require.NoError(t, err)

	assert.Equal(t, key.PublicKey().StringRaw(), solo.PublicKey().StringRaw())
	assert.Equal(t, "testnet", solo.Network())
	assert.True(t, solo.CanSign())
	assert.True(t, solo.Complete())

	envelope, err := solo.ResolveEnvelope()
	require.NoError(t, err)
	assert.Equal(t, EnvelopeTransfer, envelope)

	signed, err := solo.Sign(sampleTransfer(t))
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionTypeTransfer, signed.Type)
	require.NoError(t, ledger.Verify(signed))
}

func TestSoloRequiresPrivateKey(t *testing.T) {
	_, err := NewSolo(hedera.PrivateKey{}, "testnet")
	require.ErrorIs(t, err, ErrSoloRequiresPrivateKey)

	_, err = NewSolo(generateKey(t), "moonnet")
	require.Error(t, err)
}

func TestSoloCannotSignAggregate(t *testing.T) {
	solo, err := NewSolo(generateKey(t), "testnet")
	require.NoError(t, err)

	transfer := sampleTransfer(t)
	aggregate := ledger.NewAggregateComplete(transfer.Deadline, []ledger.InnerTransaction{transfer.ToAggregate(solo.PublicKey())}, "testnet")
	_, err = solo.Sign(aggregate)
	require.ErrorIs(t, err, ErrUnableToSign)
}

func TestSoloSignBatch(t *testing.T) {
	primary, err := NewSolo(generateKey(t), "testnet")
	require.NoError(t, err)
	cosigner, err := NewSolo(generateKey(t), "testnet")
	require.NoError(t, err)

	transfer := sampleTransfer(t)
	aggregate := ledger.NewAggregateComplete(transfer.Deadline, []ledger.InnerTransaction{
		transfer.ToAggregate(primary.PublicKey()),
		transfer.ToAggregate(cosigner.PublicKey()),
	}, "testnet")

	signed, err := primary.SignBatch(aggregate, []*Solo{cosigner, nil})
	require.NoError(t, err)
	require.Len(t, signed.Cosignatures, 1)
	assert.Equal(t, strings.ToUpper(cosigner.PublicKey().StringRaw()), signed.Cosignatures[0].Signer)
}

func TestHardwareInitiator(t *testing.T) {
	hardware, err := NewHardware(generateKey(t).PublicKey(), "testnet")
	require.NoError(t, err)

	assert.False(t, hardware.CanSign())
	assert.False(t, hardware.Complete())

	_, err = hardware.ResolveEnvelope()
	require.ErrorIs(t, err, ErrUnableToSign)

	_, err = hardware.Sign(sampleTransfer(t))
	require.ErrorIs(t, err, ErrUnableToSign)

	_, err = FileHashMessage(hardware, []byte(sampleData), nil)
	require.Error(t, err)

	message, err := FileHashMessage(hardware, []byte(sampleData), hashing.SHA3_256)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(message, "fe4e545910"))
}

func TestMultisigConstructionErrors(t *testing.T) {
	publicKey := generateKey(t).PublicKey()

	_, err := NewMultisig(publicKey, "testnet", nil)
	require.ErrorIs(t, err, ErrMultisigRequiresInfo)

	_, err = NewMultisig(publicKey, "testnet", &MultisigInfo{})
	require.ErrorIs(t, err, ErrMultisigRequiresCosigner)
	assert.False(t, errors.Is(err, ErrMultisigRequiresInfo))
}

func TestMultisigEnvelopes(t *testing.T) {
	publicKey := generateKey(t).PublicKey()
	cosigner := generateKey(t)

	incomplete, err := NewMultisig(publicKey, "testnet", &MultisigInfo{Cosignatories: []hedera.PrivateKey{cosigner}})
	require.NoError(t, err)
	assert.False(t, incomplete.Complete())
	assert.True(t, incomplete.CanSign())

	first, err := incomplete.ResolveEnvelope()
	require.NoError(t, err)
	second, err := incomplete.ResolveEnvelope()
	require.NoError(t, err)
	assert.Equal(t, EnvelopeAggregateBonded, first)
	assert.Equal(t, first, second)
	assert.Equal(t, ledger.TransactionTypeAggregateBonded, first.TransactionType())

	complete, err := NewMultisig(publicKey, "testnet", &MultisigInfo{Cosignatories: []hedera.PrivateKey{cosigner}, Complete: true})
	require.NoError(t, err)
	envelope, err := complete.ResolveEnvelope()
	require.NoError(t, err)
	assert.Equal(t, EnvelopeAggregateComplete, envelope)
}

func TestMultisigSigning(t *testing.T) {
	publicKey := generateKey(t).PublicKey()
	first := generateKey(t)
	second := generateKey(t)

	multisig, err := NewMultisig(publicKey, "testnet", &MultisigInfo{
		Cosignatories: []hedera.PrivateKey{first, second},
		Complete:      true,
	})
	require.NoError(t, err)

	signed, err := multisig.Sign(sampleTransfer(t))
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionTypeAggregateComplete, signed.Type)
	assert.Equal(t, strings.ToUpper(first.PublicKey().StringRaw()), signed.Signer)
	require.Len(t, signed.Cosignatures, 1)
	require.NoError(t, ledger.Verify(signed))

	aggregate, ok := signed.Transaction.(*ledger.AggregateTransaction)
	require.True(t, ok)
	require.Len(t, aggregate.Inner, 1)
	assert.Equal(t, strings.ToUpper(publicKey.StringRaw()), aggregate.Inner[0].Signer)

	direct, err := multisig.Sign(aggregate)
	require.NoError(t, err)
	assert.Equal(t, signed.Hash, direct.Hash)

	message, err := FileHashMessage(multisig, []byte(sampleData), hashing.SHA256)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(message, "fe4e545903"))
}

func TestFileHashMessageSolo(t *testing.T) {
	solo, err := NewSolo(generateKey(t), "testnet")
	require.NoError(t, err)

	message, err := FileHashMessage(solo, []byte(sampleData), hashing.SHA3_256)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(message, "fe4e545990"))

	publicKey := solo.PublicKey()
	valid, err := hashing.Verify(message, []byte(sampleData), &publicKey)
	require.NoError(t, err)
	assert.True(t, valid)
}
