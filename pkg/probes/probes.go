// Package probes implements the cheap, read-only checks the classifier
// combines into a verdict. Every probe answers a yes/no question about a
// directory, its children or its parent and never returns an error: an
// unreadable marker simply counts as absent.
package probes

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// ProjectMarkers are files whose presence inside a candidate means it is a
// project root rather than a build output directory.
var ProjectMarkers = []string{"Cargo.toml", "package.json", "setup.py", ".git"}

// Prober runs probes against a filesystem
type Prober struct {
	fs types.FS
}

// New creates a prober over fs
func New(fs types.FS) *Prober {
	return &Prober{fs: fs}
}

// Exists reports whether path exists, without following a trailing symlink
func (p *Prober) Exists(path string) bool {
	_, err := p.fs.Lstat(path)
	return err == nil
}

// IsFile reports whether path is a regular file
func (p *Prober) IsFile(path string) bool {
	info, err := p.fs.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path is a real directory (not a symlink to one)
func (p *Prober) IsDir(path string) bool {
	info, err := p.fs.Lstat(path)
	return err == nil && info.IsDir()
}

// HasAny reports whether dir contains at least one of names
func (p *Prober) HasAny(dir string, names ...string) bool {
	for _, name := range names {
		if p.Exists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// HasAnyDir reports whether dir contains a subdirectory with one of names
func (p *Prober) HasAnyDir(dir string, names ...string) bool {
	for _, name := range names {
		if p.IsDir(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// HasExtension reports whether dir directly contains a regular file with
// the given extension (".cabal")
func (p *Prober) HasExtension(dir, ext string) bool {
	return p.anyEntry(dir, func(e fs.DirEntry) bool {
		return e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ext)
	})
}

// HasSubdir reports whether dir has at least one real subdirectory
func (p *Prober) HasSubdir(dir string) bool {
	return p.anyEntry(dir, func(e fs.DirEntry) bool {
		return e.IsDir() && e.Type()&fs.ModeSymlink == 0
	})
}

// HasRegularFile reports whether dir directly contains a regular file
func (p *Prober) HasRegularFile(dir string) bool {
	return p.anyEntry(dir, func(e fs.DirEntry) bool {
		return e.Type().IsRegular()
	})
}

// HasEntryMatching reports whether any direct child name matches one of the
// filepath.Match patterns
func (p *Prober) HasEntryMatching(dir string, patterns ...string) bool {
	return p.anyEntry(dir, func(e fs.DirEntry) bool {
		for _, pattern := range patterns {
			if ok, err := filepath.Match(pattern, e.Name()); err == nil && ok {
				return true
			}
		}
		return false
	})
}

// IsProjectRoot reports whether dir itself looks like a source project
func (p *Prober) IsProjectRoot(dir string) bool {
	return p.HasAny(dir, ProjectMarkers...)
}

// DependsOn reports whether the package.json at path lists dep in any of its
// dependency tables
func (p *Prober) DependsOn(path, dep string) bool {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return false
	}
	var manifest struct {
		Dependencies         map[string]interface{} `json:"dependencies"`
		DevDependencies      map[string]interface{} `json:"devDependencies"`
		PeerDependencies     map[string]interface{} `json:"peerDependencies"`
		OptionalDependencies map[string]interface{} `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false
	}
	for _, table := range []map[string]interface{}{
		manifest.Dependencies, manifest.DevDependencies,
		manifest.PeerDependencies, manifest.OptionalDependencies,
	} {
		if _, ok := table[dep]; ok {
			return true
		}
	}
	return false
}

// IsTOML reports whether path is a regular file holding a TOML document
func (p *Prober) IsTOML(path string) bool {
	if !p.IsFile(path) {
		return false
	}
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]interface{}
	return toml.Unmarshal(data, &doc) == nil
}

func (p *Prober) anyEntry(dir string, match func(fs.DirEntry) bool) bool {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if match(e) {
			return true
		}
	}
	return false
}
