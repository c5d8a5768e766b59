// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wd40/pkg/report"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output  io.Writer
	details bool
}

// New creates a new text renderer
func New(output io.Writer, details bool) (*Renderer, error) {
	return &Renderer{output: output, details: details}, nil
}

// RenderResult renders a run summary as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *report.Summary:
		return report.Render(r.output, v, report.RenderOptions{Details: r.details})
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
