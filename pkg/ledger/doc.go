// Package ledger models the transactions an apostille pipeline produces:
// plain transfers carrying notarization messages, aggregate transactions
// (complete and bonded) wrapping transfers as inner transactions, and the
// lock-funds transaction that escrows a stake before a bonded aggregate can
// be announced.
//
// Transactions are signed with hedera-sdk-go keys. A signed transaction
// carries its hex payload, the upper-case SHA3-256 hash of its body, the
// signer public key and, for aggregates, the cosignatures collected locally.
package ledger
