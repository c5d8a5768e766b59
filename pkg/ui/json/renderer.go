// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"
	"time"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/report"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	output  io.Writer
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{
		output:  output,
		encoder: encoder,
	}, nil
}

// Document is the JSON shape of a run summary
type Document struct {
	Run        string     `json:"run"`
	Root       string     `json:"root"`
	Mode       string     `json:"mode"`
	Started    time.Time  `json:"started"`
	Finished   time.Time  `json:"finished"`
	Kinds      []KindDoc  `json:"kinds"`
	Totals     KindDoc    `json:"totals"`
	Candidates []EntryDoc `json:"candidates"`
	Failures   []FailDoc  `json:"failures,omitempty"`
	ScanErrors []FailDoc  `json:"scan_errors,omitempty"`
	Warnings   int        `json:"warnings"`
	Cancelled  bool       `json:"cancelled"`
	Declined   bool       `json:"declined,omitempty"`
}

// KindDoc is one row of the per-kind table
type KindDoc struct {
	Kind       string `json:"kind,omitempty"`
	Found      int    `json:"found"`
	Deleted    int    `json:"deleted"`
	Failed     int    `json:"failed"`
	Bytes      int64  `json:"bytes"`
	BytesFreed int64  `json:"bytes_freed"`
}

// EntryDoc is one candidate outcome
type EntryDoc struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
	Outcome string `json:"outcome"`
}

// FailDoc is an itemized failure
type FailDoc struct {
	Path  string `json:"path"`
	Kind  string `json:"kind,omitempty"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// NewDocument converts a summary to its JSON shape
func NewDocument(s *report.Summary) Document {
	doc := Document{
		Run:        s.RunID,
		Root:       s.Root,
		Mode:       "live",
		Started:    s.Started,
		Finished:   s.Finished,
		Kinds:      []KindDoc{},
		Candidates: []EntryDoc{},
		Warnings:   s.Warnings,
		Cancelled:  s.Cancelled,
		Declined:   s.Declined,
	}
	if s.DryRun {
		doc.Mode = "dry-run"
	}
	for _, ks := range s.ByKind() {
		doc.Kinds = append(doc.Kinds, kindDoc(ks))
	}
	doc.Totals = kindDoc(s.Totals())
	for _, e := range s.Entries {
		doc.Candidates = append(doc.Candidates, EntryDoc{
			Kind:    e.Kind.String(),
			Path:    e.Path,
			Bytes:   e.Bytes,
			Outcome: e.State.String(),
		})
	}
	doc.Failures = failDocs(s.Failures, true)
	doc.ScanErrors = failDocs(s.ScanErrors, false)
	return doc
}

func kindDoc(ks report.KindStats) KindDoc {
	d := KindDoc{
		Found:      ks.Found,
		Deleted:    ks.Deleted,
		Failed:     ks.Failed,
		Bytes:      ks.Bytes,
		BytesFreed: ks.Freed,
	}
	if ks.Kind != artifact.None {
		d.Kind = ks.Kind.String()
	}
	return d
}

func failDocs(failures []report.Failure, withKind bool) []FailDoc {
	var out []FailDoc
	for _, f := range failures {
		d := FailDoc{Path: f.Path, Code: string(f.Code), Error: f.Message}
		if withKind {
			d.Kind = f.Kind.String()
		}
		out = append(out, d)
	}
	return out
}

// RenderResult renders a summary as a Document, anything else as-is
func (r *Renderer) RenderResult(result interface{}) error {
	if s, ok := result.(*report.Summary); ok {
		return r.encoder.Encode(NewDocument(s))
	}
	return r.encoder.Encode(result)
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	errorObj := map[string]string{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	return r.encoder.Encode(errorObj)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	messageObj := map[string]string{
		"message": msg,
	}
	return r.encoder.Encode(messageObj)
}
