// Package hashing implements the apostille hashing capability: deterministic
// digests of notarized content, encoded as hash-based messages carrying a
// fixed checksum header and a version byte that names the algorithm and
// whether the digest was signed by the initiator.
//
// Message layout:
//
//	fe4e5459 | version (2 hex digits) | hex digest or hex signature of the digest
//
// Non-signed versions use the low range (01, 02, 03, 08, 09, 10, 11), signed
// versions set the high bit (81, 82, 83, 88, 89, 90, 91).
package hashing
