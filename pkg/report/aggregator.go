package report

import (
	"github.com/arthur-debert/wd40/pkg/executor"
)

type message struct {
	outcome *executor.Outcome
	path    string
	scanErr error
}

// Aggregator is the single consumer that owns a Summary while a run is in
// flight. Workers send outcomes and scan errors to it; Close waits for the
// queue to drain and hands back the finalized summary.
type Aggregator struct {
	in      chan message
	done    chan struct{}
	summary *Summary
	audit   *Audit

	declined   bool
	discovered int
}

// NewAggregator starts the consumer goroutine. audit may be nil.
func NewAggregator(summary *Summary, audit *Audit) *Aggregator {
	a := &Aggregator{
		in:      make(chan message, 64),
		done:    make(chan struct{}),
		summary: summary,
		audit:   audit,
	}
	audit.RunStarted(summary.Root, summary.DryRun)
	go a.run()
	return a
}

func (a *Aggregator) run() {
	defer close(a.done)
	for m := range a.in {
		if m.outcome != nil {
			a.summary.Record(*m.outcome)
			a.audit.Candidate(*m.outcome)
			continue
		}
		a.summary.RecordScanError(m.path, m.scanErr)
		a.audit.ScanError(m.path, m.scanErr)
	}
}

// Outcome queues one candidate outcome. Safe for concurrent use until Close.
func (a *Aggregator) Outcome(o executor.Outcome) {
	a.in <- message{outcome: &o}
}

// ScanError queues a non-fatal walk error
func (a *Aggregator) ScanError(path string, err error) {
	a.in <- message{path: path, scanErr: err}
}

// Decline marks the run as refused by the user with found candidates left
// untouched. Call it from the goroutine that will call Close.
func (a *Aggregator) Decline(found int) {
	a.declined = true
	a.discovered = found
}

// Close stops accepting messages, finalizes the summary and writes the
// closing audit lines. It must be called exactly once, after every sender
// has returned.
func (a *Aggregator) Close(cancelled bool) *Summary {
	close(a.in)
	<-a.done
	a.summary.Cancelled = cancelled
	a.summary.Declined = a.declined
	a.summary.Discovered = a.discovered
	a.summary.Finalize()
	a.audit.RunFinished(a.summary)
	return a.summary
}
