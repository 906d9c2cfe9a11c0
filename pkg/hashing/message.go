package hashing

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

type Message struct {
	Function *Function
	Signed   bool
	Body     string
}

// ParseMessage splits a hash-based message into its algorithm, signed flag
// and body. ok is false for raw (non hash-based) messages.
func ParseMessage(message string) (Message, bool) {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) <= len(Header)+2 || !strings.EqualFold(trimmed[:len(Header)], Header) {
		return Message{}, false
	}

	versionBytes, err := hex.DecodeString(trimmed[len(Header) : len(Header)+2])
	if err != nil {
		return Message{}, false
	}
	version := versionBytes[0]

	for _, function := range functions {
		if function.version == version {
			return Message{Function: function, Signed: false, Body: trimmed[len(Header)+2:]}, true
		}
		if function.signedVersion == version {
			return Message{Function: function, Signed: true, Body: trimmed[len(Header)+2:]}, true
		}
	}
	return Message{}, false
}

// Verify checks a hash-based message against data. Signed messages need the
// public key of the initiator that produced them.
func Verify(message string, data []byte, signer *hedera.PublicKey) (bool, error) {
	parsed, ok := ParseMessage(message)
	if !ok {
		return false, fmt.Errorf("message is not hash-based")
	}

	body, err := hex.DecodeString(parsed.Body)
	if err != nil {
		return false, fmt.Errorf("invalid message body: %w", err)
	}

	digest := parsed.Function.Digest(data)
	if !parsed.Signed {
		return bytes.Equal(body, digest), nil
	}
	if signer == nil {
		return false, fmt.Errorf("signer public key is required for signed messages")
	}
	return signer.Verify(digest, body), nil
}
