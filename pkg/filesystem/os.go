package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/wd40/pkg/types"
)

// osFS implements types.FS using the OS filesystem
type osFS struct{}

// NewOS creates a new OS filesystem implementation
func NewOS() types.FS {
	return &osFS{}
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (o *osFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (o *osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// RemoveAll relies on os.RemoveAll, which unlinks symlinks rather than
// descending through them.
func (o *osFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
