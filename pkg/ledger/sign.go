package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"golang.org/x/crypto/sha3"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

type Cosignature struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

// SignedTransaction is a transaction ready for announcement.
type SignedTransaction struct {
	Type         TransactionType `json:"type"`
	Network      string          `json:"network"`
	Payload      string          `json:"payload"`
	Hash         string          `json:"hash"`
	Signer       string          `json:"signer"`
	Signature    string          `json:"signature"`
	Cosignatures []Cosignature   `json:"cosignatures,omitempty"`

	Transaction Transaction `json:"-"`
}

type signedDocument struct {
	Body         json.RawMessage `json:"body"`
	Signer       string          `json:"signer"`
	Signature    string          `json:"signature"`
	Cosignatures []Cosignature   `json:"cosignatures,omitempty"`
}

// Sign signs transaction with key.
func Sign(transaction Transaction, key hedera.PrivateKey) (SignedTransaction, error) {
	return sign(transaction, key, nil)
}

// SignWithCosignatories signs an aggregate with key and appends a
// cosignature from every cosigner.
func SignWithCosignatories(
	aggregate *AggregateTransaction,
	key hedera.PrivateKey,
	cosigners []hedera.PrivateKey,
) (SignedTransaction, error) {
	if aggregate == nil {
		return SignedTransaction{}, fmt.Errorf("aggregate transaction is required")
	}
	return sign(aggregate, key, cosigners)
}

func sign(transaction Transaction, key hedera.PrivateKey, cosigners []hedera.PrivateKey) (SignedTransaction, error) {
	if len(key.BytesRaw()) == 0 {
		return SignedTransaction{}, fmt.Errorf("signing key is required")
	}
	body, err := encodeBody(transaction)
	if err != nil {
		return SignedTransaction{}, err
	}

	digest := sha3.Sum256(body)
	signer := publicKeyHex(key.PublicKey())

	cosignatures := make([]Cosignature, 0, len(cosigners))
	for index, cosigner := range cosigners {
		if len(cosigner.BytesRaw()) == 0 {
			return SignedTransaction{}, fmt.Errorf("cosigner %d has no signing key", index)
		}
		cosignerHex := publicKeyHex(cosigner.PublicKey())
		if cosignerHex == signer {
			continue
		}
		cosignatures = append(cosignatures, Cosignature{
			Signer:    cosignerHex,
			Signature: strings.ToUpper(hex.EncodeToString(cosigner.Sign(digest[:]))),
		})
	}

	signed := SignedTransaction{
		Type:         transaction.Type(),
		Network:      transaction.NetworkName(),
		Hash:         strings.ToUpper(hex.EncodeToString(digest[:])),
		Signer:       signer,
		Signature:    strings.ToUpper(hex.EncodeToString(key.Sign(digest[:]))),
		Cosignatures: cosignatures,
		Transaction:  transaction,
	}
	if len(signed.Cosignatures) == 0 {
		signed.Cosignatures = nil
	}

	document, err := json.Marshal(signedDocument{
		Body:         body,
		Signer:       signed.Signer,
		Signature:    signed.Signature,
		Cosignatures: signed.Cosignatures,
	})
	if err != nil {
		return SignedTransaction{}, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	signed.Payload = strings.ToUpper(hex.EncodeToString(document))
	return signed, nil
}

// Verify checks the hash, signature and cosignatures of a signed
// transaction against its payload.
func Verify(signed SignedTransaction) error {
	raw, err := hex.DecodeString(signed.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	var document signedDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("invalid payload document: %w", err)
	}

	digest := sha3.Sum256(document.Body)
	if !strings.EqualFold(hex.EncodeToString(digest[:]), signed.Hash) {
		return fmt.Errorf("transaction hash mismatch")
	}
	if err := verifySignature(document.Signer, document.Signature, digest[:]); err != nil {
		return fmt.Errorf("signer: %w", err)
	}
	for index, cosignature := range document.Cosignatures {
		if err := verifySignature(cosignature.Signer, cosignature.Signature, digest[:]); err != nil {
			return fmt.Errorf("cosignature %d: %w", index, err)
		}
	}
	return nil
}

// Signers returns the signer and every cosigner of signed.
func (s SignedTransaction) Signers() []string {
	signers := make([]string, 0, len(s.Cosignatures)+1)
	signers = append(signers, s.Signer)
	for _, cosignature := range s.Cosignatures {
		signers = append(signers, cosignature.Signer)
	}
	return signers
}

func verifySignature(signerHex string, signatureHex string, digest []byte) error {
	publicKey, err := shared.ParsePublicKey(signerHex)
	if err != nil {
		return err
	}
	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if !publicKey.Verify(digest, signature) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

func publicKeyHex(publicKey hedera.PublicKey) string {
	return strings.ToUpper(publicKey.StringRaw())
}
