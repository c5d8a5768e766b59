package testutil

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/wd40/pkg/types"
)

// FaultFS wraps a types.FS and fails selected operations on selected paths
type FaultFS struct {
	types.FS

	mu       sync.Mutex
	readDir  map[string]error
	lstat    map[string]error
	remove   map[string]error
	removals []string
}

// NewFaultFS wraps inner
func NewFaultFS(inner types.FS) *FaultFS {
	return &FaultFS{
		FS:      inner,
		readDir: make(map[string]error),
		lstat:   make(map[string]error),
		remove:  make(map[string]error),
	}
}

// FailReadDir makes ReadDir(path) return err
func (f *FaultFS) FailReadDir(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readDir[filepath.Clean(path)] = err
}

// FailLstat makes Lstat(path) return err
func (f *FaultFS) FailLstat(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lstat[filepath.Clean(path)] = err
}

// FailRemoveAll makes RemoveAll(path) return err without touching anything
func (f *FaultFS) FailRemoveAll(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remove[filepath.Clean(path)] = err
}

// Removals lists every path RemoveAll was called with
func (f *FaultFS) Removals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removals...)
}

func (f *FaultFS) ReadDir(name string) ([]fs.DirEntry, error) {
	f.mu.Lock()
	err := f.readDir[filepath.Clean(name)]
	f.mu.Unlock()
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return f.FS.ReadDir(name)
}

func (f *FaultFS) Lstat(name string) (fs.FileInfo, error) {
	f.mu.Lock()
	err := f.lstat[filepath.Clean(name)]
	f.mu.Unlock()
	if err != nil {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: err}
	}
	return f.FS.Lstat(name)
}

func (f *FaultFS) RemoveAll(path string) error {
	f.mu.Lock()
	f.removals = append(f.removals, filepath.Clean(path))
	err := f.remove[filepath.Clean(path)]
	f.mu.Unlock()
	if err != nil {
		return &fs.PathError{Op: "removeall", Path: path, Err: err}
	}
	return f.FS.RemoveAll(path)
}
