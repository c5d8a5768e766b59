package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how a run summary is presented
type Format int

const (
	// FormatAuto picks terminal or text depending on where output goes
	FormatAuto Format = iota
	// FormatTerminal is the styled summary table
	FormatTerminal
	// FormatText is the same summary without escape codes
	FormatText
	// FormatJSON is a single summary document for scripts
	FormatJSON
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "terminal",
	FormatText:     "text",
	FormatJSON:     "json",
}

// FormatNames lists the accepted --format values in help order
func FormatNames() []string {
	return []string{"auto", "terminal", "text", "json"}
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat maps a --format value to a Format. Names are case-insensitive
// and the empty string means auto.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return FormatAuto, nil
	}
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput,
		"unknown format %q (expected %s)", s, strings.Join(FormatNames(), ", ")).
		WithDetail("format", s)
}

type fdWriter interface {
	Fd() uintptr
}

// DetectFormat resolves auto for w. Only a colour-capable terminal gets the
// styled summary; files, pipes, buffers and NO_COLOR get text.
func DetectFormat(w io.Writer) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	f, ok := w.(fdWriter)
	if !ok {
		return FormatText
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
