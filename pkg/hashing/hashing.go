package hashing

import (
	"encoding/hex"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	_ "github.com/multiformats/go-multihash/register/sha3"
	"golang.org/x/crypto/sha3"
)

// Header prefixes every hash-based apostille message.
const Header = "fe4e5459"

// HashFunction is the capability consumed by notarization sessions.
type HashFunction interface {
	Name() string
	NonSignedHashing(data []byte) string
	SignedHashing(data []byte, key hedera.PrivateKey) (string, error)
}

type Function struct {
	name          string
	version       byte
	signedVersion byte
	digest        func(data []byte) []byte
}

var (
	MD5       = newMultihashFunction("MD5", 0x01, multihash.MD5)
	SHA1      = newMultihashFunction("SHA1", 0x02, multihash.SHA1)
	SHA256    = newMultihashFunction("SHA256", 0x03, multihash.SHA2_256)
	Keccak256 = &Function{name: "KECCAK-256", version: 0x08, signedVersion: 0x88, digest: keccak256}
	Keccak512 = &Function{name: "KECCAK-512", version: 0x09, signedVersion: 0x89, digest: keccak512}
	SHA3_256  = newMultihashFunction("SHA3-256", 0x10, multihash.SHA3_256)
	SHA3_512  = newMultihashFunction("SHA3-512", 0x11, multihash.SHA3_512)
)

var functions = []*Function{MD5, SHA1, SHA256, Keccak256, Keccak512, SHA3_256, SHA3_512}

func newMultihashFunction(name string, version byte, code uint64) *Function {
	return &Function{
		name:          name,
		version:       version,
		signedVersion: version | 0x80,
		digest: func(data []byte) []byte {
			sum, err := multihash.Sum(data, code, -1)
			if err != nil {
				// registered codes with default length never fail
				panic(fmt.Sprintf("multihash %s: %v", name, err))
			}
			decoded, err := multihash.Decode(sum)
			if err != nil {
				panic(fmt.Sprintf("multihash %s: %v", name, err))
			}
			return decoded.Digest
		},
	}
}

func keccak256(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hasher.Sum(nil)
}

func keccak512(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak512()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// Name returns the algorithm name.
func (f *Function) Name() string {
	return f.name
}

// Digest returns the raw digest of data.
func (f *Function) Digest(data []byte) []byte {
	return f.digest(data)
}

// Version returns the two hex digit version tag of non-signed messages.
func (f *Function) Version() string {
	return fmt.Sprintf("%02x", f.version)
}

// SignedVersion returns the two hex digit version tag of signed messages.
func (f *Function) SignedVersion() string {
	return fmt.Sprintf("%02x", f.signedVersion)
}

// NonSignedHashing returns header, version and the hex digest of data.
func (f *Function) NonSignedHashing(data []byte) string {
	return Header + f.Version() + hex.EncodeToString(f.digest(data))
}

// SignedHashing signs the digest of data with key and returns header,
// signed version and the upper-case hex signature.
func (f *Function) SignedHashing(data []byte, key hedera.PrivateKey) (string, error) {
	if len(key.BytesRaw()) == 0 {
		return "", fmt.Errorf("signing key is required")
	}
	signature := key.Sign(f.digest(data))
	return Header + f.SignedVersion() + strings.ToUpper(hex.EncodeToString(signature)), nil
}

// ByName looks a function up by its name, ignoring case and separators.
func ByName(name string) (*Function, error) {
	wanted := normalizeName(name)
	for _, function := range functions {
		if normalizeName(function.name) == wanted {
			return function, nil
		}
	}
	return nil, fmt.Errorf("unsupported hash function %q", name)
}

func normalizeName(name string) string {
	replacer := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(name)))
}

// ContentID returns the CIDv1 (raw codec, sha2-256) of data.
func ContentID(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}
