package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/wd40/pkg/executor"
	"github.com/arthur-debert/wd40/pkg/ui/styles"
	"github.com/dustin/go-humanize"
)

// RenderOptions controls the human summary
type RenderOptions struct {
	// Color enables lipgloss styling; leave off for pipes and files
	Color bool
	// Details lists every candidate, not just the per-kind table
	Details bool
}

type painter bool

func (p painter) paint(style, text string) string {
	if !p {
		return text
	}
	return styles.GetStyle(style).Render(text)
}

// Bytes formats a byte count in binary units ("1.5 GiB")
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Render writes the human readable summary of s to w
func Render(w io.Writer, s *Summary, opts RenderOptions) error {
	p := painter(opts.Color)
	var b strings.Builder

	if s.DryRun {
		b.WriteString(p.paint("DryRunBanner", "Dry run: nothing was deleted"))
		b.WriteString("\n\n")
	}

	totals := s.Totals()
	if s.Declined {
		b.WriteString(p.paint("Warning", fmt.Sprintf("Aborted: %d director(ies) left untouched", s.Discovered)))
		b.WriteString("\n")
	} else if totals.Found == 0 {
		b.WriteString(p.paint("Muted", "No artifact directories found in "+s.Root))
		b.WriteString("\n")
	} else {
		if opts.Details {
			renderEntries(&b, p, s)
		}
		renderTable(&b, p, s)
	}

	if len(s.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(p.paint("Error", fmt.Sprintf("%d deletion(s) failed:", len(s.Failures))))
		b.WriteString("\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  %s (%s): %s\n", p.paint("FilePath", f.Path), f.Kind, f.Message)
		}
	}
	if len(s.ScanErrors) > 0 {
		b.WriteString("\n")
		b.WriteString(p.paint("Warning", fmt.Sprintf("%d director(ies) could not be scanned:", len(s.ScanErrors))))
		b.WriteString("\n")
		for _, f := range s.ScanErrors {
			fmt.Fprintf(&b, "  %s: %s\n", p.paint("FilePath", f.Path), f.Message)
		}
	}
	if s.Warnings > 0 {
		b.WriteString("\n")
		b.WriteString(p.paint("Warning", fmt.Sprintf("%d file(s) could not be measured and were counted as 0 B", s.Warnings)))
		b.WriteString("\n")
	}
	if s.Cancelled {
		b.WriteString("\n")
		b.WriteString(p.paint("Warning", "Interrupted: remaining candidates were not processed"))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderEntries(b *strings.Builder, p painter, s *Summary) {
	for _, e := range s.Entries {
		marker := "-"
		switch e.State {
		case executor.Deleted:
			marker = p.paint("Success", "✓")
		case executor.DeleteFailed:
			marker = p.paint("Error", "✗")
		case executor.DryRunSkipped:
			marker = p.paint("Muted", "~")
		}
		fmt.Fprintf(b, "%s %-12s %10s  %s\n", marker, e.Kind, Bytes(e.Bytes), p.paint("FilePath", e.Path))
	}
	b.WriteString("\n")
}

func renderTable(b *strings.Builder, p painter, s *Summary) {
	header := fmt.Sprintf("%-30s %6s %8s %7s %12s", "Kind", "Found", "Deleted", "Failed", "Size")
	b.WriteString(p.paint("TableHeader", header))
	b.WriteString("\n")

	for _, ks := range s.ByKind() {
		fmt.Fprintf(b, "%s %6d %8d %7d %s\n",
			p.paint("Kind", fmt.Sprintf("%-30s", ks.Kind.Label())),
			ks.Found, ks.Deleted, ks.Failed,
			p.paint("Size", fmt.Sprintf("%12s", Bytes(ks.Bytes))))
	}

	t := s.Totals()
	fmt.Fprintf(b, "%-30s %6d %8d %7d %12s\n", "Total", t.Found, t.Deleted, t.Failed, Bytes(t.Bytes))
	b.WriteString("\n")

	if s.DryRun {
		b.WriteString(p.paint("Total", "Would free "+Bytes(t.Bytes)))
	} else {
		b.WriteString(p.paint("Total", "Freed "+Bytes(t.Freed)))
	}
	b.WriteString("\n")
}
