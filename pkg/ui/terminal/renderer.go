// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wd40/pkg/report"
	"github.com/arthur-debert/wd40/pkg/ui/styles"
)

// Renderer provides rich terminal output using the lipgloss styles
type Renderer struct {
	output  io.Writer
	details bool
}

// New creates a new terminal renderer
func New(w io.Writer, details bool) (*Renderer, error) {
	return &Renderer{output: w, details: details}, nil
}

// RenderResult renders a run summary with colors
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *report.Summary:
		return report.Render(r.output, v, report.RenderOptions{Color: true, Details: r.details})
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, styles.GetStyle("Error").Render("Error: "+err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.GetStyle("Muted").Render(msg))
	return err
}
