// Package cleaner runs a complete wd40 pass over one root.
//
// A run has up to three phases. Discovery walks the tree and yields
// confirmed candidates. Confirmation, when a Confirmer is configured and the
// run is live, shows the whole batch to the user before anything is touched.
// Execution sizes and deletes each candidate on a bounded pool of workers;
// every outcome is sent to a single aggregator that owns the summary and the
// audit record.
//
// Without a Confirmer (dry runs, or -y) discovery and execution overlap: a
// candidate is processed as soon as the walker emits it.
//
// Cancellation is checked between candidates only. A candidate already being
// deleted always reaches a terminal state.
package cleaner
