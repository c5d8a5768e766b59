package types

import (
	"io/fs"
)

// FS is the filesystem interface used by the probes, walker, sizer and
// executor. Every operation is read-only except RemoveAll.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)

	// Lstat must not follow a trailing symlink. For in-memory test
	// filesystems without symlink support it may fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)

	// Directory operations
	ReadDir(name string) ([]fs.DirEntry, error)

	// RemoveAll deletes path and everything below it without following
	// symlinks out of the subtree.
	RemoveAll(path string) error
}
