// Package ui selects how a run is presented: rich terminal output, plain
// text or JSON.
package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wd40/pkg/ui/json"
	"github.com/arthur-debert/wd40/pkg/ui/terminal"
	"github.com/arthur-debert/wd40/pkg/ui/text"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderResult renders a run summary (or any other value)
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// Options tunes the human renderers
type Options struct {
	// Details lists every candidate under the per-kind table
	Details bool
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer, opts Options) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(output), output, opts)
	case FormatTerminal:
		return terminal.New(output, opts.Details)
	case FormatText:
		return text.New(output, opts.Details)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
