package shared

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	NetworkMainnet     = "mainnet"
	NetworkTestnet     = "testnet"
	NetworkPrivate     = "private"
	NetworkPrivateTest = "private-test"
)

// ErrMissingEndpoint is returned when a network has no default endpoint and
// none was supplied.
var ErrMissingEndpoint = errors.New("missing endpoint argument")

var defaultEndpoints = map[string]string{
	NetworkMainnet:     "http://88.99.192.82:7890",
	NetworkTestnet:     "http://104.128.226.60:7890",
	NetworkPrivateTest: "http://api.beta.catapult.mijin.io:3000",
}

// NormalizeNetwork lower-cases network and maps the mijin aliases. An empty
// network means testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}

	switch normalized {
	case NetworkMainnet, NetworkTestnet, NetworkPrivate, NetworkPrivateTest:
		return normalized, nil
	case "mijin":
		return NetworkPrivate, nil
	case "mijin-test", "mijin_test":
		return NetworkPrivateTest, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// IsPublicNetwork reports whether explicit endpoints on the network should be
// historical nodes.
func IsPublicNetwork(network string) bool {
	return network == NetworkMainnet || network == NetworkTestnet
}

// ResolveEndpoint returns the explicit endpoint when one is given, and the
// network's well-known default otherwise.
func ResolveEndpoint(network string, explicit string) (string, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return "", err
	}

	candidate := strings.TrimRight(strings.TrimSpace(explicit), "/")
	if candidate == "" {
		defaultEndpoint, ok := defaultEndpoints[normalized]
		if !ok {
			return "", fmt.Errorf("%w for network %s", ErrMissingEndpoint, normalized)
		}
		return defaultEndpoint, nil
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid endpoint URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("invalid endpoint URL: host is required")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}
