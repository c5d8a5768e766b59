// Package ignore implements .wd40ignore matching.
//
// A Ruleset holds the patterns of one ignore file and is scoped to the
// directory that file lives in. Patterns follow the familiar gitignore
// shape:
//
//	# comment
//	vendor/          directories only
//	/build           anchored to the ruleset directory
//	**/fixtures/**   ** crosses path segments
//	!keep-me         re-include a previously excluded path
//	*.tmp  # note    inline comment after whitespace
//
// Within a Ruleset the last matching pattern wins. Rulesets are chained in a
// Stack as the walker descends; the closest ruleset with any matching pattern
// decides. Malformed patterns never match and are reported through
// Ruleset.Invalid so the caller can log them.
package ignore

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFileName is the ignore file looked for in every directory
const DefaultFileName = ".wd40ignore"

type pattern struct {
	raw      string
	glob     string
	negate   bool
	dirOnly  bool
	anchored bool
}

// Ruleset is the ordered pattern list of one ignore file
type Ruleset struct {
	Dir     string
	Source  string
	rules   []pattern
	invalid []string
}

// Parse reads an ignore file's content. dir is the directory the patterns
// are relative to and source names the file for diagnostics.
func Parse(dir, source string, data []byte) *Ruleset {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return New(dir, source, lines)
}

// New builds a ruleset from individual pattern lines
func New(dir, source string, lines []string) *Ruleset {
	rs := &Ruleset{Dir: filepath.Clean(dir), Source: source}
	for _, line := range lines {
		p, ok := parseLine(line)
		if !ok {
			continue
		}
		if !doublestar.ValidatePattern(p.glob) {
			rs.invalid = append(rs.invalid, p.raw)
			continue
		}
		rs.rules = append(rs.rules, p)
	}
	return rs
}

func parseLine(line string) (pattern, bool) {
	line = strings.TrimRight(line, "\r")
	if i := inlineComment(line); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return pattern{}, false
	}

	p := pattern{raw: line}
	switch {
	case strings.HasPrefix(line, "!"):
		p.negate = true
		line = line[1:]
	case strings.HasPrefix(line, `\!`), strings.HasPrefix(line, `\#`):
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if strings.Contains(line, "/") {
		p.anchored = true
	}
	if line == "" {
		return pattern{}, false
	}

	p.glob = line
	if !p.anchored {
		p.glob = "**/" + line
	}
	return p, true
}

// inlineComment returns the index of a '#' preceded by whitespace, or -1
func inlineComment(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] == '#' && (line[i-1] == ' ' || line[i-1] == '\t') {
			return i
		}
	}
	return -1
}

// Len returns the number of usable patterns
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Invalid returns the malformed pattern lines that were dropped
func (rs *Ruleset) Invalid() []string {
	return rs.invalid
}

// Match evaluates path against the ruleset. matched reports whether any
// pattern applied; excluded is the verdict of the last one that did. Paths
// outside the ruleset directory, and the directory itself, never match.
func (rs *Ruleset) Match(path string, isDir bool) (matched, excluded bool) {
	rel, ok := relative(rs.Dir, path)
	if !ok {
		return false, false
	}
	for _, p := range rs.rules {
		if p.dirOnly && !isDir {
			continue
		}
		if hit, err := doublestar.Match(p.glob, rel); err == nil && hit {
			matched = true
			excluded = !p.negate
		}
	}
	return matched, excluded
}

func relative(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Stack is an immutable chain of rulesets from the scan root down to the
// current directory. Pushing returns a new Stack, so a parent's stack can be
// shared by every worker handling its children.
type Stack struct {
	parent *Stack
	rules  *Ruleset
}

// Push returns a stack with rs as the closest ruleset. A nil or empty rs
// returns s unchanged.
func (s *Stack) Push(rs *Ruleset) *Stack {
	if rs == nil || rs.Len() == 0 {
		return s
	}
	return &Stack{parent: s, rules: rs}
}

// Excluded reports whether path is ignored. The closest ruleset with a
// matching pattern decides; with no match anywhere the path is kept.
func (s *Stack) Excluded(path string, isDir bool) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if matched, excluded := cur.rules.Match(path, isDir); matched {
			return excluded
		}
	}
	return false
}

// Depth returns the number of rulesets in the chain
func (s *Stack) Depth() int {
	n := 0
	for cur := s; cur != nil; cur = cur.parent {
		n++
	}
	return n
}
