// Package shared provides common utilities used across the Apostille SDK for
// Go. It includes network normalization and default endpoint resolution,
// configuration loading from environment variables, .env files and YAML
// files, logger construction, and key parsing helpers.
//
// This package is typically used internally by other SDK packages but is
// also available for direct use when building custom notarization tooling.
//
// # Environment Variables
//
//   - APOSTILLE_NETWORK: mainnet, testnet, private or private-test
//   - APOSTILLE_ENDPOINT: REST endpoint, required on the private network
//   - APOSTILLE_FEED_URL: confirmation feed URL, derived from the endpoint when empty
//   - APOSTILLE_FEED_TRANSPORT: websocket (default) or socketio
//   - APOSTILLE_GENERATOR_KEY: private key that derives apostille accounts
//   - APOSTILLE_INITIATOR_KEY: private key of the solo initiator
//   - APOSTILLE_CONFIRMATION_TIMEOUT: bonded lock confirmation timeout, e.g. 10m
//   - APOSTILLE_LOG_LEVEL: debug, info, warn or error
//
// Endpoint and keys can be scoped per network by prefixing the variable with
// the upper-cased network name, e.g. MAINNET_APOSTILLE_ENDPOINT.
package shared
