// Package bonded implements the lock-then-aggregate commit used for
// multisig operations whose cosignatures cannot all be collected locally.
//
// A Commitment moves through
//
//	Prepared -> LockSigned -> LockSubmitted -> LockConfirmed -> AggregateSubmitted
//
// and ends in Abandoned when the lock (or the aggregate) cannot be
// submitted, or in LockExpired when the lock confirmation does not arrive
// before the confirmation timeout, the context is cancelled or the feed
// fails. Each commitment holds its own feed subscription and only accepts
// the confirmation of its own lock hash.
package bonded
