// Package announce pushes submission units to a ledger node and reports an
// explicit Result for each of them.
//
// Pass ties the pipeline together: it plans the queue with package batch,
// signs direct units in queue order, prepares bonded commitments, then runs
// every submission and bonded commit concurrently. Results are logged with
// zerolog, counted with prometheus counters when Metrics are configured,
// and handed to an optional Observer.
package announce
