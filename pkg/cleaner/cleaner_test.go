package cleaner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/cleaner"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/executor"
	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/report"
	"github.com/arthur-debert/wd40/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace holds one artifact of several kinds next to source files
var workspace = testutil.Tree{
	"README.md": "# workspace\n",

	"api/Cargo.toml":          "[package]\nname = \"api\"\n",
	"api/src/main.rs":         "fn main() {}\n",
	"api/target/CACHEDIR.TAG": testutil.CacheDirTag,
	"api/target/debug/api":    strings.Repeat("x", 4096),
	"api/target/debug/api.d":  strings.Repeat("d", 100),

	"web/package.json":                   `{"name":"web","dependencies":{"left-pad":"1.0.0"}}`,
	"web/package-lock.json":              "{}",
	"web/node_modules/left-pad/index.js": strings.Repeat("n", 500),

	"tools/venv/pyvenv.cfg":                        "home = /usr/bin\n",      // 16
	"tools/venv/bin/activate":                      strings.Repeat("a", 100), // 100
	"tools/venv/lib/python3.12/site-packages/x.py": strings.Repeat("b", 900), // 900
	"tools/scripts/run.py":                         "print('hi')\n",
}

const venvBytes = 1016

var targetBytes = int64(4096 + 100 + len(testutil.CacheDirTag))

func run(t *testing.T, opts cleaner.Options) *report.Summary {
	t.Helper()
	if opts.Workers == 0 {
		opts.Workers = 4
	}
	summary, err := cleaner.New(opts).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)
	return summary
}

func TestDryRunEstimatesAndMutatesNothing(t *testing.T) {
	root := testutil.TempTree(t, testutil.Tree{
		"tools/venv/pyvenv.cfg":                        "home = /usr/bin\n",
		"tools/venv/bin/activate":                      strings.Repeat("a", 100),
		"tools/venv/lib/python3.12/site-packages/x.py": strings.Repeat("b", 900),
		"tools/scripts/run.py":                         "print('hi')\n",
	})
	before := testutil.Snapshot(t, root)

	summary := run(t, cleaner.Options{Root: root, DryRun: true})

	venv := summary.Kinds[artifact.PythonVenv]
	assert.Equal(t, 1, venv.Found)
	assert.Zero(t, venv.Deleted)
	assert.EqualValues(t, venvBytes, venv.Bytes)
	assert.Zero(t, summary.Totals().Freed)
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, executor.DryRunSkipped, summary.Entries[0].State)
	assert.Equal(t, before, testutil.Snapshot(t, root))
}

func TestDryRunIsIdempotent(t *testing.T) {
	root := testutil.TempTree(t, workspace)

	first := run(t, cleaner.Options{Root: root, DryRun: true})
	second := run(t, cleaner.Options{Root: root, DryRun: true})

	assert.Equal(t, first.Kinds, second.Kinds)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Len(t, first.Entries, 3)
}

func TestLiveRunFreesExactlyWhatWasDeleted(t *testing.T) {
	root := testutil.TempTree(t, workspace)
	fs := testutil.NewFaultFS(filesystem.NewOS())
	stuck := filepath.Join(root, "web", "node_modules")
	fs.FailRemoveAll(stuck, syscall.EBUSY)

	summary := run(t, cleaner.Options{Root: root, FS: fs})

	var deleted int64
	for _, e := range summary.Entries {
		if e.State == executor.Deleted {
			deleted += e.Bytes
		}
	}
	totals := summary.Totals()
	assert.Equal(t, deleted, totals.Freed)
	assert.Equal(t, targetBytes+venvBytes, totals.Freed)
	assert.Equal(t, 2, totals.Deleted)
	assert.Equal(t, 1, totals.Failed)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, stuck, summary.Failures[0].Path)
	assert.Equal(t, errors.ErrDeleteFailed, summary.Failures[0].Code)

	assert.NoDirExists(t, filepath.Join(root, "api", "target"))
	assert.NoDirExists(t, filepath.Join(root, "tools", "venv"))
	assert.DirExists(t, stuck)
	assert.FileExists(t, filepath.Join(root, "api", "src", "main.rs"))
	assert.FileExists(t, filepath.Join(root, "tools", "scripts", "run.py"))
}

func TestKindFilter(t *testing.T) {
	root := testutil.TempTree(t, workspace)

	summary := run(t, cleaner.Options{
		Root:  root,
		Kinds: artifact.NewKindSet(artifact.RustKinds...),
	})

	assert.Equal(t, []artifact.Kind{artifact.RustTarget}, kindsOf(summary))
	assert.NoDirExists(t, filepath.Join(root, "api", "target"))
	assert.DirExists(t, filepath.Join(root, "web", "node_modules"))
	assert.DirExists(t, filepath.Join(root, "tools", "venv"))
}

func kindsOf(s *report.Summary) []artifact.Kind {
	var out []artifact.Kind
	for _, ks := range s.ByKind() {
		out = append(out, ks.Kind)
	}
	return out
}

type fakeConfirmer struct {
	answer bool
	err    error
	asked  []artifact.Candidate
	calls  int
}

func (f *fakeConfirmer) Confirm(cands []artifact.Candidate) (bool, error) {
	f.calls++
	f.asked = cands
	return f.answer, f.err
}

func TestConfirmation(t *testing.T) {
	t.Run("declined leaves everything", func(t *testing.T) {
		root := testutil.TempTree(t, workspace)
		before := testutil.Snapshot(t, root)
		confirm := &fakeConfirmer{answer: false}

		summary := run(t, cleaner.Options{Root: root, Confirmer: confirm})

		assert.Equal(t, 1, confirm.calls)
		assert.Len(t, confirm.asked, 3)
		assert.True(t, summary.Declined)
		assert.Equal(t, 3, summary.Discovered)
		assert.Zero(t, summary.Totals().Found)
		assert.Equal(t, before, testutil.Snapshot(t, root))
	})

	t.Run("accepted deletes the batch", func(t *testing.T) {
		root := testutil.TempTree(t, workspace)
		confirm := &fakeConfirmer{answer: true}

		summary := run(t, cleaner.Options{Root: root, Confirmer: confirm})

		require.Len(t, confirm.asked, 3)
		assert.Equal(t, filepath.Join(root, "api", "target"), confirm.asked[0].Path, "candidates sorted")
		assert.Equal(t, 3, summary.Totals().Deleted)
		assert.False(t, summary.Declined)
		assert.NoDirExists(t, filepath.Join(root, "web", "node_modules"))
	})

	t.Run("not asked on a dry run", func(t *testing.T) {
		root := testutil.TempTree(t, workspace)
		confirm := &fakeConfirmer{answer: true}

		summary := run(t, cleaner.Options{Root: root, DryRun: true, Confirmer: confirm})

		assert.Zero(t, confirm.calls)
		assert.Equal(t, 3, summary.Totals().Found)
	})

	t.Run("not asked when nothing was found", func(t *testing.T) {
		root := testutil.TempTree(t, testutil.Tree{"src/main.go": "package main\n"})
		confirm := &fakeConfirmer{answer: true}

		summary := run(t, cleaner.Options{Root: root, Confirmer: confirm})

		assert.Zero(t, confirm.calls)
		assert.Zero(t, summary.Totals().Found)
	})

	t.Run("prompt failure ends the run", func(t *testing.T) {
		root := testutil.TempTree(t, workspace)
		confirm := &fakeConfirmer{err: errors.New(errors.ErrInvalidInput, "stdin closed")}

		summary, err := cleaner.New(cleaner.Options{Root: root, Confirmer: confirm}).Run(context.Background())

		require.Error(t, err)
		assert.Nil(t, summary)
		assert.DirExists(t, filepath.Join(root, "api", "target"))
	})
}

func TestUnusableRootIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	summary, err := cleaner.New(cleaner.Options{Root: missing}).Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, errors.IsFatal(err))
}

func TestScanErrorsDoNotStopTheRun(t *testing.T) {
	root := testutil.TempTree(t, workspace)
	fs := testutil.NewFaultFS(filesystem.NewOS())
	locked := filepath.Join(root, "tools")
	fs.FailReadDir(locked, syscall.EACCES)

	summary := run(t, cleaner.Options{Root: root, FS: fs, DryRun: true})

	require.Len(t, summary.ScanErrors, 1)
	assert.Equal(t, locked, summary.ScanErrors[0].Path)
	assert.Equal(t, errors.ErrDirectoryRead, summary.ScanErrors[0].Code)
	assert.Equal(t, 2, summary.Totals().Found, "venv below the locked dir is unseen")
}

func TestCancelledRunDeletesNothing(t *testing.T) {
	root := testutil.TempTree(t, workspace)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := cleaner.New(cleaner.Options{Root: root}).Run(ctx)

	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Zero(t, summary.Totals().Deleted)
	assert.DirExists(t, filepath.Join(root, "api", "target"))
}

func TestAuditRecord(t *testing.T) {
	root := testutil.TempTree(t, workspace)
	var buf bytes.Buffer

	c := cleaner.New(cleaner.Options{Root: root, DryRun: true, Audit: &buf, Workers: 2})
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	var events []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		assert.Equal(t, c.RunID(), line["run"])
		events = append(events, line["event"].(string))
	}

	require.NotEmpty(t, events)
	assert.Equal(t, report.EventRunStarted, events[0])
	assert.Equal(t, report.EventRunFinished, events[len(events)-1])
	assert.Equal(t, 3, count(events, report.EventCandidate))
	assert.Equal(t, 3, count(events, report.EventKindSummary))
}

func count(items []string, want string) int {
	n := 0
	for _, s := range items {
		if s == want {
			n++
		}
	}
	return n
}

func TestSccacheNames(t *testing.T) {
	root := testutil.TempTree(t, testutil.Tree{
		"home/compiler-cache/cache-objects/00/ab": "obj",
	})

	defaults := run(t, cleaner.Options{Root: root, DryRun: true})
	assert.Zero(t, defaults.Totals().Found)

	custom := run(t, cleaner.Options{Root: root, DryRun: true, SccacheNames: []string{"compiler-cache"}})
	assert.Equal(t, 1, custom.Kinds[artifact.Sccache].Found)
}
