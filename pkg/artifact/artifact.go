// Package artifact defines the data model shared by the classifier, walker,
// executor and reporter: artifact kinds, classification verdicts and the
// signals that justify them.
package artifact

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the ecosystem an artifact directory belongs to
type Kind int

const (
	None Kind = iota
	RustTarget
	NodeModules
	PythonVenv
	StackWork
	Sccache
	RustupRoot
	NextBuild
	CargoNixCache
)

var kindNames = map[Kind]string{
	None:          "none",
	RustTarget:    "rust-target",
	NodeModules:   "node-modules",
	PythonVenv:    "python-venv",
	StackWork:     "stack-work",
	Sccache:       "sccache",
	RustupRoot:    "rustup",
	NextBuild:     "next-build",
	CargoNixCache: "cargo-nix",
}

var kindLabels = map[Kind]string{
	None:          "Not an artifact",
	RustTarget:    "Rust target directories",
	NodeModules:   "Node.js node_modules",
	PythonVenv:    "Python virtual environments",
	StackWork:     "Haskell Stack work directories",
	Sccache:       "sccache caches",
	RustupRoot:    "rustup toolchain trees",
	NextBuild:     "Next.js builds",
	CargoNixCache: "cargo-nix caches",
}

// AllKinds lists every artifact kind in display order
func AllKinds() []Kind {
	return []Kind{RustTarget, NodeModules, PythonVenv, StackWork, Sccache, RustupRoot, NextBuild, CargoNixCache}
}

// String returns the stable identifier used in config, flags and audit logs
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Label returns a human readable description
func (k Kind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return k.String()
}

// ParseKind resolves a kind identifier. Underscores and case are ignored so
// that environment variables like WD40_KINDS_ENABLED=rust_target work.
func ParseKind(s string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for kind, name := range kindNames {
		if kind != None && name == normalized {
			return kind, nil
		}
	}
	return None, fmt.Errorf("unknown artifact kind %q", s)
}

// KindSet is a set of selected kinds. The empty set selects everything.
type KindSet map[Kind]bool

// NewKindSet builds a set from the given kinds
func NewKindSet(kinds ...Kind) KindSet {
	set := make(KindSet, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

// Contains reports whether k is selected
func (s KindSet) Contains(k Kind) bool {
	if len(s) == 0 {
		return k != None
	}
	return s[k]
}

// Add merges other kinds into the set
func (s KindSet) Add(kinds ...Kind) {
	for _, k := range kinds {
		s[k] = true
	}
}

// Kinds returns the selected kinds in display order
func (s KindSet) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds() {
		if s.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}

// Ecosystem groups used by the --rust-only style filters
var (
	RustKinds    = []Kind{RustTarget, RustupRoot, Sccache, CargoNixCache}
	NodeKinds    = []Kind{NodeModules, NextBuild}
	PythonKinds  = []Kind{PythonVenv}
	HaskellKinds = []Kind{StackWork}
)

// Confidence is the classifier's verdict for one directory
type Confidence int

const (
	Rejected Confidence = iota
	Confirmed
)

func (c Confidence) String() string {
	if c == Confirmed {
		return "confirmed"
	}
	return "rejected"
}

// Signal is one piece of evidence checked while classifying a directory
type Signal struct {
	Name     string `json:"name"`
	Present  bool   `json:"present"`
	Required bool   `json:"required"`
}

func (s Signal) String() string {
	mark := "-"
	if s.Present {
		mark = "+"
	}
	return mark + s.Name
}

// Candidate is a classified directory. It is created by the classifier and
// never mutated afterwards.
type Candidate struct {
	Path       string
	Kind       Kind
	Confidence Confidence
	Signals    []Signal
}

// Confirmed reports whether the candidate is a genuine artifact directory
func (c Candidate) Confirmed() bool {
	return c.Confidence == Confirmed && c.Kind != None
}

// Evidence returns the names of the signals that were present
func (c Candidate) Evidence() []string {
	var names []string
	for _, s := range c.Signals {
		if s.Present {
			names = append(names, s.Name)
		}
	}
	return names
}

// SortCandidates orders candidates by path for stable output
func SortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		return cands[i].Path < cands[j].Path
	})
}
