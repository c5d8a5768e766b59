// Package sizer measures the apparent size of a directory tree.
package sizer

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/types"
)

// Size is the result of measuring one directory
type Size struct {
	Bytes int64
	Files int64
	Dirs  int64
	// Warnings holds one ErrSizeProbe error per entry that could not be
	// inspected. Those entries count as zero bytes.
	Warnings []error
}

// Sizer sums regular file sizes below a directory
type Sizer struct {
	fs types.FS
}

// New creates a sizer over fs
func New(fs types.FS) *Sizer {
	return &Sizer{fs: fs}
}

// Measure walks dir and adds up the size of every regular file. Symlinks are
// neither followed nor counted. It uses an explicit stack so deep trees
// cannot exhaust the goroutine stack. Unreadable entries are recorded as
// warnings, never returned as an error; ctx cancellation stops the walk early
// and returns the partial total.
func (s *Sizer) Measure(ctx context.Context, dir string) Size {
	var size Size
	stack := []string{dir}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			size.Warnings = append(size.Warnings,
				errors.Wrap(ctx.Err(), errors.ErrSizeProbe, "size measurement interrupted").WithDetail("path", dir))
			return size
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := s.fs.ReadDir(current)
		if err != nil {
			size.Warnings = append(size.Warnings, probeError(err, current))
			continue
		}
		size.Dirs++

		for _, e := range entries {
			path := filepath.Join(current, e.Name())
			switch {
			case e.Type()&fs.ModeSymlink != 0:
				continue
			case e.IsDir():
				stack = append(stack, path)
			case e.Type().IsRegular():
				info, err := s.fs.Lstat(path)
				if err != nil {
					size.Warnings = append(size.Warnings, probeError(err, path))
					continue
				}
				size.Bytes += info.Size()
				size.Files++
			}
		}
	}
	return size
}

func probeError(err error, path string) error {
	return errors.Wrapf(err, errors.ErrSizeProbe, "cannot stat %s", path).WithDetail("path", path)
}
