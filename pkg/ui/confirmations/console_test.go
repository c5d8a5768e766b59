package confirmations_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/ui/confirmations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates() []artifact.Candidate {
	var out []artifact.Candidate
	for i := 0; i < 5; i++ {
		out = append(out, artifact.Candidate{
			Path:       fmt.Sprintf("/w/p%d/target", i),
			Kind:       artifact.RustTarget,
			Confidence: artifact.Confirmed,
		})
	}
	out = append(out, artifact.Candidate{Path: "/w/app/node_modules", Kind: artifact.NodeModules, Confidence: artifact.Confirmed})
	return out
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"full word", "YES\n", true},
		{"padded", "  y  \n", true},
		{"no", "n\n", false},
		{"default is no", "\n", false},
		{"end of input", "", false},
		{"no trailing newline", "y", true},
		{"anything else", "sure\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			d := confirmations.NewDialog(strings.NewReader(tt.input), &out)
			ok, err := d.Confirm(candidates())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestConfirmListing(t *testing.T) {
	var out bytes.Buffer
	d := confirmations.NewDialog(strings.NewReader("n\n"), &out)
	_, err := d.Confirm(candidates())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "6 director(ies) will be deleted")
	assert.Contains(t, text, "Rust target directories (5)")
	assert.Contains(t, text, "/w/p2/target")
	assert.NotContains(t, text, "/w/p3/target")
	assert.Contains(t, text, "and 2 more")
	assert.Contains(t, text, "Node.js node_modules (1)")
	assert.Less(t, strings.Index(text, "Rust"), strings.Index(text, "Node.js"), "kinds in display order")
}

func TestConfirmNothing(t *testing.T) {
	var out bytes.Buffer
	d := confirmations.NewDialog(strings.NewReader("y\n"), &out)
	ok, err := d.Confirm(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}
