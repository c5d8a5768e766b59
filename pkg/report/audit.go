package report

import (
	"io"
	"sync"

	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/executor"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Audit event names. Each audit line carries one of these in its "event"
// field.
const (
	EventRunStarted  = "run_started"
	EventCandidate   = "candidate"
	EventScanError   = "scan_error"
	EventKindSummary = "kind_summary"
	EventRunFinished = "run_finished"
)

// Audit writes the append-only JSON-lines record of a run. Lines are logged
// without a level so the console verbosity never filters them. A nil *Audit
// discards everything, which is how auditing is switched off.
type Audit struct {
	logger zerolog.Logger
	sink   *errWriter
}

// NewAudit creates an audit record on w. Every line is stamped with runID.
func NewAudit(w io.Writer, runID string) *Audit {
	sink := &errWriter{w: w}
	return &Audit{
		logger: zerolog.New(sink).With().Timestamp().Str("run", runID).Logger(),
		sink:   sink,
	}
}

// RunStarted records the scan root and mode
func (a *Audit) RunStarted(root string, dryRun bool) {
	if a == nil {
		return
	}
	a.logger.Log().
		Str("event", EventRunStarted).
		Str("root", root).
		Str("mode", mode(dryRun)).
		Send()
}

// Candidate records one candidate's outcome
func (a *Audit) Candidate(o executor.Outcome) {
	if a == nil {
		return
	}
	ev := a.logger.Log().
		Str("event", EventCandidate).
		Str("kind", o.Candidate.Kind.String()).
		Str("path", o.Candidate.Path).
		Int64("bytes", o.Bytes).
		Str("size", humanize.IBytes(uint64(o.Bytes))).
		Str("outcome", o.State.String()).
		Strs("signals", o.Candidate.Evidence())
	if o.Err != nil {
		ev = ev.Str("code", string(errors.GetErrorCode(o.Err))).Str("error", o.Err.Error())
	}
	if len(o.Warnings) > 0 {
		ev = ev.Int("warnings", len(o.Warnings))
	}
	ev.Send()
}

// ScanError records a directory the walker had to skip
func (a *Audit) ScanError(path string, err error) {
	if a == nil {
		return
	}
	a.logger.Log().
		Str("event", EventScanError).
		Str("path", path).
		Str("code", string(errors.GetErrorCode(err))).
		Str("error", err.Error()).
		Send()
}

// RunFinished records the per-kind breakdown and the run totals
func (a *Audit) RunFinished(s *Summary) {
	if a == nil {
		return
	}
	for _, ks := range s.ByKind() {
		a.logger.Log().
			Str("event", EventKindSummary).
			Str("kind", ks.Kind.String()).
			Int("found", ks.Found).
			Int("deleted", ks.Deleted).
			Int("failed", ks.Failed).
			Int64("bytes", ks.Bytes).
			Int64("bytes_freed", ks.Freed).
			Send()
	}
	t := s.Totals()
	a.logger.Log().
		Str("event", EventRunFinished).
		Str("mode", mode(s.DryRun)).
		Int("found", t.Found).
		Int("deleted", t.Deleted).
		Int("failed", t.Failed).
		Int("scan_errors", len(s.ScanErrors)).
		Int("warnings", s.Warnings).
		Int64("bytes_freed", t.Freed).
		Int64("bytes_estimated", t.Bytes).
		Bool("cancelled", s.Cancelled).
		Bool("declined", s.Declined).
		Dur("duration", s.Duration()).
		Send()
}

// Err returns the first write failure, if any
func (a *Audit) Err() error {
	if a == nil {
		return nil
	}
	if err := a.sink.Err(); err != nil {
		return errors.Wrap(err, errors.ErrAuditWrite, "failed to write audit record")
	}
	return nil
}

func mode(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "live"
}

// errWriter remembers the first error of the underlying writer, which
// zerolog would otherwise swallow
type errWriter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func (e *errWriter) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}
