package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/spf13/afero"
)

// CacheDirTag is the content cargo writes into target/CACHEDIR.TAG
const CacheDirTag = "Signature: 8a477f597d28d172789f06886806bc55\n# This file is a cache directory tag created by cargo.\n"

// Tree describes a fixture directory tree
type Tree map[string]string

func (tree Tree) sortedKeys() []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildTree materialises tree under root on the real filesystem
func BuildTree(t *testing.T, root string, tree Tree) {
	t.Helper()
	for _, rel := range tree.sortedKeys() {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(tree[rel]), 0644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}

// TempTree builds tree in a fresh temp directory and returns its path
func TempTree(t *testing.T, tree Tree) string {
	t.Helper()
	root := t.TempDir()
	BuildTree(t, root, tree)
	return root
}

// MemTree builds tree under root in an in-memory afero filesystem
func MemTree(t *testing.T, root string, tree Tree) (types.FS, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	if err := mem.MkdirAll(root, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	for _, rel := range tree.sortedKeys() {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := mem.MkdirAll(full, 0755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		if err := mem.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := afero.WriteFile(mem, full, []byte(tree[rel]), 0644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
	return filesystem.NewAferoFS(mem), mem
}

// Snapshot records the existence and modification time of every path below
// root so tests can prove a dry run mutated nothing.
func Snapshot(t *testing.T, root string) map[string]time.Time {
	t.Helper()
	snap := make(map[string]time.Time)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		snap[path] = info.ModTime()
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return snap
}
