package classifier

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/probes"
)

// Check is a single named signal probe against a candidate directory
type Check struct {
	Name string
	Test func(p *probes.Prober, dir string) bool
}

// Clause is one required condition of a rule. It holds when any of its
// checks passes; a Guard clause holds when none of them does.
type Clause struct {
	AnyOf []Check
	Guard bool
}

// Rule is the static validation rule for one artifact kind. A directory is
// confirmed when its name is in Names (or Names is empty) and every clause
// holds. Optional checks are recorded for the audit trail only.
type Rule struct {
	Kind        artifact.Kind
	Names       []string
	Requires    []Clause
	Optional    []Check
	Description string
}

// Options tunes the default rule table
type Options struct {
	// SccacheNames are the directory names accepted for sccache caches
	SccacheNames []string
}

// DefaultOptions returns the stock rule options
func DefaultOptions() Options {
	return Options{SccacheNames: []string{".sccache"}}
}

// CargoNixArtifacts are the entry patterns accepted as cargo-nix cache
// contents
var CargoNixArtifacts = []string{"*.lock", "*.nix", "*.drv", "*cache*", "gcroots", "result*"}

// ManifestSignal is the optional Rust target signal recording a Cargo.toml
// next to the target directory
const ManifestSignal = "../Cargo.toml"

// Orphaned reports whether cand is a confirmed Rust target whose parent has
// no Cargo.toml. A candidate classified without the manifest signal is never
// orphaned.
func Orphaned(cand artifact.Candidate) bool {
	if !cand.Confirmed() || cand.Kind != artifact.RustTarget {
		return false
	}
	for _, sig := range cand.Signals {
		if sig.Name == ManifestSignal {
			return !sig.Present
		}
	}
	return false
}

func child(name string) Check {
	return Check{Name: name, Test: func(p *probes.Prober, dir string) bool {
		return p.Exists(filepath.Join(dir, name))
	}}
}

func childFile(name string) Check {
	return Check{Name: name, Test: func(p *probes.Prober, dir string) bool {
		return p.IsFile(filepath.Join(dir, name))
	}}
}

func childDir(name string) Check {
	return Check{Name: name + "/", Test: func(p *probes.Prober, dir string) bool {
		return p.IsDir(filepath.Join(dir, name))
	}}
}

func sibling(name string) Check {
	return Check{Name: "../" + name, Test: func(p *probes.Prober, dir string) bool {
		return p.Exists(filepath.Join(filepath.Dir(dir), name))
	}}
}

func guard(names ...string) Clause {
	clause := Clause{Guard: true}
	for _, name := range names {
		clause.AnyOf = append(clause.AnyOf, child(name))
	}
	return clause
}

func anyOf(checks ...Check) Clause {
	return Clause{AnyOf: checks}
}

// DefaultRules returns the rule table in priority order. Named kinds come
// first because the name gate is the cheapest signal; the unnamed Python
// rule is evaluated last.
func DefaultRules(opts Options) []Rule {
	sccacheNames := opts.SccacheNames
	if len(sccacheNames) == 0 {
		sccacheNames = DefaultOptions().SccacheNames
	}

	return []Rule{
		{
			Kind:  artifact.RustTarget,
			Names: []string{"target", "target-ra"},
			Requires: []Clause{
				anyOf(childFile("CACHEDIR.TAG"), childFile(".rustc_info.json")),
				guard("Cargo.toml"),
			},
			Optional:    []Check{sibling("Cargo.toml")},
			Description: "named `target` or `target-ra`; contains `CACHEDIR.TAG` or `.rustc_info.json`; is not itself a crate",
		},
		{
			Kind:  artifact.NodeModules,
			Names: []string{"node_modules"},
			Requires: []Clause{
				anyOf(sibling("package.json"), sibling("package-lock.json"), sibling("yarn.lock"), sibling("pnpm-lock.yaml")),
				guard("Cargo.toml", "setup.py"),
			},
			Optional: []Check{
				childDir(".bin"),
				child(".package-lock.json"),
				{Name: "packages", Test: func(p *probes.Prober, dir string) bool { return p.HasSubdir(dir) }},
			},
			Description: "named `node_modules`; parent has `package.json`, `package-lock.json`, `yarn.lock` or `pnpm-lock.yaml`",
		},
		{
			Kind:  artifact.StackWork,
			Names: []string{".stack-work"},
			Requires: []Clause{
				anyOf(childFile("stack.sqlite3"), childDir("dist"), childDir("install")),
				anyOf(sibling("stack.yaml"), sibling("package.yaml"), Check{
					Name: "../*.cabal",
					Test: func(p *probes.Prober, dir string) bool {
						return p.HasExtension(filepath.Dir(dir), ".cabal")
					},
				}),
				guard(probes.ProjectMarkers...),
			},
			Description: "named `.stack-work`; has `stack.sqlite3`, `dist/` or `install/`; parent has `stack.yaml` or a `.cabal` file",
		},
		{
			Kind:  artifact.RustupRoot,
			Names: []string{".rustup"},
			Requires: []Clause{
				anyOf(
					Check{Name: "settings.toml", Test: func(p *probes.Prober, dir string) bool {
						return p.IsTOML(filepath.Join(dir, "settings.toml"))
					}},
					childDir("toolchains"),
				),
				guard("Cargo.toml", "package.json", ".git"),
			},
			Optional:    []Check{childDir("downloads"), childDir("update-hashes")},
			Description: "named `.rustup`; has a valid `settings.toml` or a `toolchains/` directory",
		},
		{
			Kind:  artifact.NextBuild,
			Names: []string{".next"},
			Requires: []Clause{
				anyOf(
					sibling("next.config.js"), sibling("next.config.mjs"),
					sibling("next.config.ts"), sibling("next.config.cjs"),
					Check{Name: "../package.json:next", Test: func(p *probes.Prober, dir string) bool {
						return p.DependsOn(filepath.Join(filepath.Dir(dir), "package.json"), "next")
					}},
				),
				guard("Cargo.toml", "package.json", ".git"),
			},
			Optional:    []Check{childFile("BUILD_ID"), childDir("cache"), childDir("server"), childDir("static")},
			Description: "named `.next`; parent has `next.config.*` or a `package.json` depending on `next`",
		},
		{
			Kind:  artifact.CargoNixCache,
			Names: []string{".cargo-nix"},
			Requires: []Clause{
				anyOf(Check{
					Name: "cache-artifacts",
					Test: func(p *probes.Prober, dir string) bool {
						return p.HasEntryMatching(dir, CargoNixArtifacts...)
					},
				}),
				guard("Cargo.toml", "package.json", ".git"),
			},
			Description: "named `.cargo-nix`; contains lock or cache files (" + strings.Join(CargoNixArtifacts, ", ") + ")",
		},
		{
			Kind:  artifact.Sccache,
			Names: sccacheNames,
			Requires: []Clause{
				anyOf(
					Check{Name: "cache-subdirs", Test: func(p *probes.Prober, dir string) bool { return p.HasSubdir(dir) }},
					Check{Name: "cache-objects", Test: func(p *probes.Prober, dir string) bool { return p.HasRegularFile(dir) }},
				),
				guard("Cargo.toml", "package.json", ".git"),
			},
			Description: "named " + quoteAll(sccacheNames) + "; holds cache subdirectories or objects; is not a project root",
		},
		{
			Kind: artifact.PythonVenv,
			Requires: []Clause{
				anyOf(childFile("pyvenv.cfg")),
				anyOf(childFile("bin/activate"), childFile("Scripts/activate"), childFile("Scripts/activate.bat")),
				anyOf(childDir("lib"), childDir("Lib")),
				guard(".git"),
			},
			Description: "any name; has `pyvenv.cfg`, an activation script and a `lib`/`Lib` directory",
		},
	}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, " or ")
}

func (r Rule) matchesName(name string) bool {
	if len(r.Names) == 0 {
		return true
	}
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

// evaluate runs the rule's clauses in order, stopping at the first one that
// fails. It returns whether the rule confirmed and the signals it observed.
func (r Rule) evaluate(p *probes.Prober, dir string) (bool, []artifact.Signal) {
	var signals []artifact.Signal
	if len(r.Names) > 0 {
		signals = append(signals, artifact.Signal{Name: "name:" + filepath.Base(dir), Present: true, Required: true})
	}

	for _, clause := range r.Requires {
		hit := false
		for _, check := range clause.AnyOf {
			present := check.Test(p, dir)
			name := check.Name
			if clause.Guard {
				name = "guard:" + name
			}
			signals = append(signals, artifact.Signal{Name: name, Present: present, Required: !clause.Guard})
			if present {
				hit = true
				break
			}
		}
		if hit == clause.Guard {
			return false, signals
		}
	}

	for _, check := range r.Optional {
		signals = append(signals, artifact.Signal{Name: check.Name, Present: check.Test(p, dir)})
	}
	return true, signals
}
