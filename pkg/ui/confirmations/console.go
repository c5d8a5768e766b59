// Package confirmations asks the user before anything is deleted.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
)

// listed is how many paths of each kind are printed before "and N more"
const listed = 3

// ConsoleDialog prompts on a terminal
type ConsoleDialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleDialog creates a dialog on stdin and stdout
func NewConsoleDialog() *ConsoleDialog {
	return NewDialog(os.Stdin, os.Stdout)
}

// NewDialog creates a dialog on explicit streams
func NewDialog(in io.Reader, out io.Writer) *ConsoleDialog {
	return &ConsoleDialog{in: bufio.NewReader(in), out: out}
}

// Confirm lists the candidates grouped by kind and asks once for the whole
// batch. Anything but y or yes declines, including end of input.
func (d *ConsoleDialog) Confirm(cands []artifact.Candidate) (bool, error) {
	if len(cands) == 0 {
		return false, nil
	}

	groups := make(map[artifact.Kind][]string)
	for _, c := range cands {
		groups[c.Kind] = append(groups[c.Kind], c.Path)
	}

	fmt.Fprintf(d.out, "\nThe following %d director(ies) will be deleted:\n\n", len(cands))
	for _, kind := range artifact.AllKinds() {
		paths := groups[kind]
		if len(paths) == 0 {
			continue
		}
		fmt.Fprintf(d.out, "%s (%d)\n", kind.Label(), len(paths))
		shown := paths
		if len(shown) > listed {
			shown = shown[:listed]
		}
		for _, p := range shown {
			fmt.Fprintf(d.out, "└── %s\n", p)
		}
		if rest := len(paths) - len(shown); rest > 0 {
			fmt.Fprintf(d.out, "    and %d more\n", rest)
		}
		fmt.Fprintln(d.out)
	}

	fmt.Fprint(d.out, "Delete these directories? [y/N]: ")
	response, err := d.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, errors.ErrInvalidInput, "failed to read user input")
	}
	if err == io.EOF && response == "" {
		fmt.Fprintln(d.out)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
