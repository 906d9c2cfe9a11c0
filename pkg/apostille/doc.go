// Package apostille implements notarization sessions.
//
// An Apostille owns a deterministic account derived from a seed by a
// generator key, and a queue of transfers to that account. Create records
// the first transfer (the raw data or its hash-based message), Update adds
// more, and Announce pushes the queue to a node through package announce.
// Items whose unit failed stay queued for the next Announce.
package apostille
