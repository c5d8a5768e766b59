// Package report aggregates per-candidate outcomes into a run summary,
// writes the structured audit record and renders the human summary.
//
// All mutation of a Summary goes through an Aggregator, which owns it on a
// single goroutine and is fed over a channel by the deletion workers.
package report

import (
	"sort"
	"time"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/executor"
)

// KindStats is the per-kind slice of a summary
type KindStats struct {
	Kind    artifact.Kind
	Found   int
	Deleted int
	Failed  int
	// Bytes is the measured size of every candidate found
	Bytes int64
	// Freed is the measured size of the candidates that reached Deleted
	Freed int64
}

// Entry is the outcome of one candidate as kept in the summary
type Entry struct {
	Path  string
	Kind  artifact.Kind
	State executor.State
	Bytes int64
}

// Failure is an itemized problem the user may need to resolve by hand
type Failure struct {
	Path    string
	Kind    artifact.Kind
	Code    errors.ErrorCode
	Message string
}

// Summary is the run-scoped aggregate handed to the reporter at the end
type Summary struct {
	RunID    string
	Root     string
	DryRun   bool
	Started  time.Time
	Finished time.Time

	Kinds      map[artifact.Kind]KindStats
	Entries    []Entry
	Failures   []Failure
	ScanErrors []Failure
	Warnings   int
	Cancelled  bool

	// Declined is set when the user refused the deletion prompt. Discovered
	// then holds how many candidates were left untouched.
	Declined   bool
	Discovered int
}

// NewSummary creates an empty summary for a run
func NewSummary(runID, root string, dryRun bool) *Summary {
	return &Summary{
		RunID:   runID,
		Root:    root,
		DryRun:  dryRun,
		Started: time.Now(),
		Kinds:   make(map[artifact.Kind]KindStats),
	}
}

// Record folds one outcome into the summary
func (s *Summary) Record(o executor.Outcome) {
	kind := o.Candidate.Kind
	ks := s.Kinds[kind]
	ks.Kind = kind
	ks.Found++
	ks.Bytes += o.Bytes

	switch o.State {
	case executor.Deleted:
		ks.Deleted++
		ks.Freed += o.Bytes
	case executor.DeleteFailed:
		ks.Failed++
		s.Failures = append(s.Failures, failureFrom(o.Candidate.Path, kind, o.Err))
	}
	s.Kinds[kind] = ks

	s.Warnings += len(o.Warnings)
	s.Entries = append(s.Entries, Entry{
		Path:  o.Candidate.Path,
		Kind:  kind,
		State: o.State,
		Bytes: o.Bytes,
	})
}

// RecordScanError notes a directory the walker could not handle
func (s *Summary) RecordScanError(path string, err error) {
	s.ScanErrors = append(s.ScanErrors, failureFrom(path, artifact.None, err))
}

func failureFrom(path string, kind artifact.Kind, err error) Failure {
	f := Failure{Path: path, Kind: kind, Code: errors.GetErrorCode(err)}
	if err != nil {
		f.Message = err.Error()
	}
	return f
}

// Finalize sorts the itemized lists and stamps the finish time
func (s *Summary) Finalize() {
	sort.Slice(s.Entries, func(i, j int) bool { return s.Entries[i].Path < s.Entries[j].Path })
	sort.Slice(s.Failures, func(i, j int) bool { return s.Failures[i].Path < s.Failures[j].Path })
	sort.Slice(s.ScanErrors, func(i, j int) bool { return s.ScanErrors[i].Path < s.ScanErrors[j].Path })
	s.Finished = time.Now()
}

// ByKind returns the stats of every kind that had candidates, in display
// order
func (s *Summary) ByKind() []KindStats {
	var out []KindStats
	for _, k := range artifact.AllKinds() {
		if ks, ok := s.Kinds[k]; ok {
			out = append(out, ks)
		}
	}
	return out
}

// Totals adds up every kind
func (s *Summary) Totals() KindStats {
	var t KindStats
	for _, ks := range s.Kinds {
		t.Found += ks.Found
		t.Deleted += ks.Deleted
		t.Failed += ks.Failed
		t.Bytes += ks.Bytes
		t.Freed += ks.Freed
	}
	return t
}

// Duration returns how long the run took
func (s *Summary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}
