package styles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/wd40/pkg/ui/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleRegistry(t *testing.T) {
	require.NoError(t, styles.LoadStyles("styles.yaml"))

	expected := []string{
		"Header", "SubHeader", "Success", "Error", "Warning", "Muted", "Bold",
		"FilePath", "Kind", "Size", "TableHeader", "DryRunBanner", "Total",
	}
	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			_, exists := styles.StyleRegistry[name]
			assert.True(t, exists, "Style %s should exist in registry", name)
		})
	}
}

func TestGetStyle(t *testing.T) {
	require.NoError(t, styles.LoadStyles("styles.yaml"))

	assert.True(t, styles.GetStyle("Bold").GetBold())
	assert.True(t, styles.GetStyle("TableHeader").GetUnderline())
	assert.False(t, styles.GetStyle("DoesNotExist").GetBold(), "unknown names fall back to a plain style")

	merged := styles.MergeStyles("Kind", "Muted")
	assert.True(t, merged.GetBold())
}

func TestLoadStylesErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, styles.LoadStyles(filepath.Join(t.TempDir(), "nope.yaml")))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("styles: [unclosed"), 0644))
		assert.Error(t, styles.LoadStyles(path))
	})

	t.Run("no styles", func(t *testing.T) {
		assert.Error(t, styles.LoadStylesFromData([]byte("colors: {}\n")))
	})

	require.NoError(t, styles.LoadStyles("styles.yaml"))
}
