// Package initiator models the signing authorities that issue apostille
// operations.
//
// An Initiator is one of three closed variants:
//
//   - Solo owns a private key and signs transfers and lock transactions.
//   - Hardware only knows a public key; the device signs out of band, so
//     every signing attempt fails with ErrUnableToSign.
//   - Multisig is a multisig account whose cosignatories are (partly)
//     available locally. When Complete reports true the cosignatories can
//     finalize an aggregate on their own; otherwise the aggregate is bonded
//     and collects the missing cosignatures on chain.
//
// ResolveEnvelope maps a variant to the outer transaction shape its
// operations are announced in.
package initiator
