// The Apostille SDK for Go notarizes files on a ledger through apostille
// accounts: deterministic accounts derived from a seed, which receive one
// transfer per recorded fact.
//
// # Packages
//
//   - apostille: notarization sessions (create, update, announce)
//   - initiator: solo, hardware and multisig initiators and their envelopes
//   - batch: planning of pending items into submission units
//   - bonded: lock-then-aggregate commit of bonded aggregates
//   - announce: concurrent submission with per-unit results and metrics
//   - hashing: hash-based apostille messages and content identifiers
//   - ledger: transactions, signing and addresses
//   - network: REST submission channel and confirmation feeds
//   - shared: networks, configuration, keys and logging
//
// A command line client lives in cmd/apostille.
//
// # Installation
//
//	go get github.com/hashgraph-online/apostille-sdk-go@latest
package apostille_sdk_go
