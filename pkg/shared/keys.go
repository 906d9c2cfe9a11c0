package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// ParsePrivateKey accepts hex or DER keys, with or without a 0x prefix.
// ED25519 is tried first, then ECDSA secp256k1.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}

	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	genericKey, genericErr := hedera.PrivateKeyFromString(candidate)
	if genericErr == nil {
		return genericKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key as ED25519 (%v), ECDSA (%v), or generic (%v)",
		edErr,
		ecdsaErr,
		genericErr,
	)
}

// ParsePublicKey parses a raw or DER encoded public key.
func ParsePublicKey(raw string) (hedera.PublicKey, error) {
	candidate := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if candidate == "" {
		return hedera.PublicKey{}, fmt.Errorf("public key cannot be empty")
	}

	publicKey, err := hedera.PublicKeyFromString(candidate)
	if err == nil {
		return publicKey, nil
	}

	edKey, edErr := hedera.PublicKeyFromStringEd25519(candidate)
	if edErr == nil {
		return edKey, nil
	}

	ecdsaKey, ecdsaErr := hedera.PublicKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	return hedera.PublicKey{}, fmt.Errorf(
		"failed to parse public key %q: generic=%v ed25519=%v ecdsa=%v",
		candidate,
		err,
		edErr,
		ecdsaErr,
	)
}
