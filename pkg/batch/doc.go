// Package batch turns the ordered queue of pending apostille operations into
// submission units.
//
// Plan walks the queue once. Runs of plain transfers are merged into a single
// aggregate-complete transaction (at most MaxInnerTransactions inner
// transactions each), signed by the first distinct initiator with the other
// initiators as cosignatories. A run of one transfer is announced unwrapped.
// Items that already need an aggregate envelope are never merged and never
// reordered across.
package batch
