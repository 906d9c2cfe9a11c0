package apostille

import (
	"errors"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/bonded"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/initiator"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/network"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid generator private key")
	ErrNetworkMismatch   = errors.New("initiator network does not match the apostille network")
	ErrAlreadyCreated    = errors.New("apostille already created")
	ErrNotCreated        = errors.New("apostille not created yet")
)

// Kind groups errors by what the caller can do about them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConstruction: an input was invalid when building a value.
	KindConstruction
	// KindUsage: operations were called in the wrong order or without a
	// required endpoint.
	KindUsage
	// KindCapability: the initiator cannot perform the requested operation.
	KindCapability
	// KindNetwork: the node or the confirmation feed failed.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindUsage:
		return "usage"
	case KindCapability:
		return "capability"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var requestErr *network.RequestError
	switch {
	case errors.Is(err, initiator.ErrUnableToSign):
		return KindCapability
	case errors.Is(err, ErrInvalidPrivateKey),
		errors.Is(err, ErrNetworkMismatch),
		errors.Is(err, initiator.ErrSoloRequiresPrivateKey),
		errors.Is(err, initiator.ErrMultisigRequiresInfo),
		errors.Is(err, initiator.ErrMultisigRequiresCosigner):
		return KindConstruction
	case errors.Is(err, ErrAlreadyCreated),
		errors.Is(err, ErrNotCreated),
		errors.Is(err, shared.ErrMissingEndpoint):
		return KindUsage
	case errors.As(err, &requestErr),
		errors.Is(err, bonded.ErrLockExpired),
		errors.Is(err, network.ErrFeedClosed):
		return KindNetwork
	default:
		return KindUnknown
	}
}
