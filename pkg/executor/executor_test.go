package executor_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/executor"
	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/testutil"
	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFS serves reads from a real tree and records removals
type MockFS struct {
	mock.Mock
	types.FS
}

func (m *MockFS) RemoveAll(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

var targetTree = testutil.Tree{
	"proj/Cargo.toml":             "[package]\n",
	"proj/target/CACHEDIR.TAG":    "tag",                     // 3
	"proj/target/debug/app":       strings.Repeat("x", 2048), // 2048
	"proj/target/debug/deps/a.rs": strings.Repeat("y", 49),   // 49
}

func confirmed(path string, kind artifact.Kind) artifact.Candidate {
	return artifact.Candidate{Path: path, Kind: kind, Confidence: artifact.Confirmed}
}

func TestDryRun(t *testing.T) {
	root := testutil.TempTree(t, targetTree)
	before := testutil.Snapshot(t, root)

	exec := executor.New(executor.Options{DryRun: true, FS: filesystem.NewOS()})
	out := exec.Process(context.Background(), confirmed(filepath.Join(root, "proj", "target"), artifact.RustTarget))

	assert.Equal(t, executor.DryRunSkipped, out.State)
	assert.Equal(t, []executor.State{executor.Pending, executor.Sizing, executor.DryRunSkipped}, out.History)
	assert.EqualValues(t, 2100, out.Bytes)
	assert.EqualValues(t, 3, out.Files)
	assert.Zero(t, out.Freed())
	assert.NoError(t, out.Err)
	assert.Equal(t, before, testutil.Snapshot(t, root), "dry run must not touch the tree")
}

func TestDryRunNeverRemoves(t *testing.T) {
	mem, _ := testutil.MemTree(t, "/w", targetTree)
	fs := &MockFS{FS: mem}

	exec := executor.New(executor.Options{DryRun: true, FS: fs})
	outs := exec.Execute(context.Background(), []artifact.Candidate{
		confirmed("/w/proj/target", artifact.RustTarget),
	})

	require.Len(t, outs, 1)
	assert.EqualValues(t, 2100, outs[0].Bytes)
	fs.AssertNotCalled(t, "RemoveAll", mock.Anything)
}

func TestLiveDelete(t *testing.T) {
	root := testutil.TempTree(t, targetTree)
	target := filepath.Join(root, "proj", "target")

	exec := executor.New(executor.Options{FS: filesystem.NewOS()})
	out := exec.Process(context.Background(), confirmed(target, artifact.RustTarget))

	require.NoError(t, out.Err)
	assert.Equal(t, executor.Deleted, out.State)
	assert.Equal(t, []executor.State{executor.Pending, executor.Sizing, executor.Deleting, executor.Deleted}, out.History)
	assert.EqualValues(t, 2100, out.Freed())

	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "proj", "Cargo.toml"))
	assert.NoError(t, err, "siblings survive")
}

func TestLiveDeleteDoesNotFollowSymlinks(t *testing.T) {
	outside := testutil.TempTree(t, testutil.Tree{"precious.txt": "keep"})
	root := testutil.TempTree(t, targetTree)
	target := filepath.Join(root, "proj", "target")
	if err := os.Symlink(outside, filepath.Join(target, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	out := executor.New(executor.Options{FS: filesystem.NewOS()}).
		Process(context.Background(), confirmed(target, artifact.RustTarget))

	require.Equal(t, executor.Deleted, out.State)
	_, err := os.Stat(filepath.Join(outside, "precious.txt"))
	assert.NoError(t, err)
}

func TestDeleteFailed(t *testing.T) {
	t.Run("remove error", func(t *testing.T) {
		mem, _ := testutil.MemTree(t, "/w", targetTree)
		fs := testutil.NewFaultFS(mem)
		fs.FailRemoveAll("/w/proj/target", syscall.EBUSY)

		out := executor.New(executor.Options{FS: fs}).
			Process(context.Background(), confirmed("/w/proj/target", artifact.RustTarget))

		assert.Equal(t, executor.DeleteFailed, out.State)
		assert.Equal(t, []executor.State{executor.Pending, executor.Sizing, executor.Deleting, executor.DeleteFailed}, out.History)
		assert.True(t, errors.IsErrorCode(out.Err, errors.ErrDeleteFailed))
		assert.True(t, stderrors.Is(out.Err, syscall.EBUSY))
		assert.EqualValues(t, 2100, out.Bytes, "size is still reported")
		assert.Zero(t, out.Freed())
	})

	t.Run("mocked remove error", func(t *testing.T) {
		mem, _ := testutil.MemTree(t, "/w", targetTree)
		fs := &MockFS{FS: mem}
		fs.On("RemoveAll", "/w/proj/target").Return(syscall.EPERM).Once()

		out := executor.New(executor.Options{FS: fs}).
			Process(context.Background(), confirmed("/w/proj/target", artifact.RustTarget))

		assert.Equal(t, executor.DeleteFailed, out.State)
		assert.Equal(t, "/w/proj/target", errors.GetErrorDetails(out.Err)["path"])
		fs.AssertExpectations(t)
	})

	t.Run("vanished before deletion", func(t *testing.T) {
		mem, _ := testutil.MemTree(t, "/w", targetTree)
		fs := &MockFS{FS: mem}

		out := executor.New(executor.Options{FS: fs}).
			Process(context.Background(), confirmed("/w/proj/gone", artifact.RustTarget))

		assert.Equal(t, executor.DeleteFailed, out.State)
		assert.True(t, errors.IsErrorCode(out.Err, errors.ErrDeleteFailed))
		assert.NotEmpty(t, out.Warnings)
		fs.AssertNotCalled(t, "RemoveAll", mock.Anything)
	})

	t.Run("replaced by symlink", func(t *testing.T) {
		root := testutil.TempTree(t, targetTree)
		elsewhere := testutil.TempTree(t, testutil.Tree{"data/file": "x"})
		target := filepath.Join(root, "proj", "target")
		require.NoError(t, os.RemoveAll(target))
		if err := os.Symlink(filepath.Join(elsewhere, "data"), target); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}

		out := executor.New(executor.Options{FS: filesystem.NewOS()}).
			Process(context.Background(), confirmed(target, artifact.RustTarget))

		assert.Equal(t, executor.DeleteFailed, out.State)
		_, err := os.Stat(filepath.Join(elsewhere, "data", "file"))
		assert.NoError(t, err)
	})
}

func TestUnconfirmedIsRefused(t *testing.T) {
	mem, _ := testutil.MemTree(t, "/w", targetTree)
	fs := &MockFS{FS: mem}

	out := executor.New(executor.Options{FS: fs}).Process(context.Background(), artifact.Candidate{
		Path: "/w/proj", Kind: artifact.None, Confidence: artifact.Rejected,
	})

	assert.Equal(t, executor.DeleteFailed, out.State)
	assert.True(t, errors.IsErrorCode(out.Err, errors.ErrInvalidInput))
	fs.AssertNotCalled(t, "RemoveAll", mock.Anything)
}

func TestExecuteStopsWhenCancelled(t *testing.T) {
	mem, _ := testutil.MemTree(t, "/w", targetTree)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outs := executor.New(executor.Options{FS: mem}).Execute(ctx, []artifact.Candidate{
		confirmed("/w/proj/target", artifact.RustTarget),
	})

	assert.Empty(t, outs)
}

func TestProcessIgnoresCancellationOnceStarted(t *testing.T) {
	mem, _ := testutil.MemTree(t, "/w", targetTree)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := executor.New(executor.Options{FS: mem}).Process(ctx, confirmed("/w/proj/target", artifact.RustTarget))

	assert.Equal(t, executor.Deleted, out.State)
	assert.EqualValues(t, 2100, out.Bytes)
}

func TestStateMachine(t *testing.T) {
	tests := []struct {
		from, to executor.State
		want     bool
	}{
		{executor.Pending, executor.Sizing, true},
		{executor.Sizing, executor.DryRunSkipped, true},
		{executor.Sizing, executor.Deleting, true},
		{executor.Deleting, executor.Deleted, true},
		{executor.Deleting, executor.DeleteFailed, true},
		{executor.Pending, executor.Deleting, false},
		{executor.Sizing, executor.Deleted, false},
		{executor.Deleted, executor.Deleting, false},
		{executor.DryRunSkipped, executor.Deleting, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, executor.CanTransition(tt.from, tt.to))
		})
	}

	assert.True(t, executor.Deleted.Terminal())
	assert.True(t, executor.DryRunSkipped.Terminal())
	assert.False(t, executor.Sizing.Terminal())
	assert.Equal(t, "delete-failed", executor.DeleteFailed.String())
}
