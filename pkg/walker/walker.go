// Package walker performs the concurrent descent that finds artifact
// directories.
//
// Directories are explored breadth first from a shared work queue by a fixed
// pool of workers. Each directory is classified exactly once; a confirmed
// artifact is emitted and never descended into, anything else has its
// children queued. Ignore rules are applied to children before they are
// queued, so an excluded subtree is never read. Symlinks below the root are
// never followed.
package walker

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/classifier"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/ignore"
	"github.com/arthur-debert/wd40/pkg/logging"
	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultWorkers is the pool size used when Options.Workers is unset
const DefaultWorkers = 8

// Options contains configuration for the walker
type Options struct {
	FS         types.FS
	Classifier *classifier.Classifier

	// Kinds selects which confirmed kinds are emitted. Every confirmed
	// directory is pruned whether or not it is selected.
	Kinds artifact.KindSet
	// OrphanedOnly further restricts emission to Rust targets whose parent
	// has no Cargo.toml
	OrphanedOnly bool

	// MaxDepth limits descent below the root (root is depth 0). Zero means
	// unbounded.
	MaxDepth int
	Workers  int

	// IgnoreFileName is looked up in every directory that is descended into
	IgnoreFileName string
	// GlobalIgnore patterns are scoped to the scan root
	GlobalIgnore []string

	// FollowRootSymlink allows the root argument itself to be a symlink
	FollowRootSymlink bool

	Logger *zerolog.Logger
}

// Event is one item of the walk's output stream: either a confirmed
// candidate or a non-fatal scan error.
type Event struct {
	Candidate *artifact.Candidate
	Path      string
	Err       error
}

// Stats counts what a walk did
type Stats struct {
	Visited  int64
	Pruned   int64
	Ignored  int64
	Symlinks int64
	Errors   int64
}

// Walker finds artifact directories below a root
type Walker struct {
	fs           types.FS
	classifier   *classifier.Classifier
	kinds        artifact.KindSet
	orphanedOnly bool
	maxDepth     int
	workers      int
	ignoreName   string
	global       []string
	followRoot   bool
	logger       zerolog.Logger

	visited, pruned, ignored, symlinks, errs atomic.Int64
}

// New creates a walker
func New(opts Options) *Walker {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	cls := opts.Classifier
	if cls == nil {
		cls = classifier.New(classifier.Config{FS: fsys, Logger: opts.Logger})
	}
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	ignoreName := opts.IgnoreFileName
	if ignoreName == "" {
		ignoreName = ignore.DefaultFileName
	}
	logger := logging.GetLogger("walker")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Walker{
		fs:           fsys,
		classifier:   cls,
		kinds:        opts.Kinds,
		orphanedOnly: opts.OrphanedOnly,
		maxDepth:     opts.MaxDepth,
		workers:      workers,
		ignoreName:   ignoreName,
		global:       opts.GlobalIgnore,
		followRoot:   opts.FollowRootSymlink,
		logger:       logger,
	}
}

// Stats returns the counters of the last walk. Only meaningful once the
// stream has been drained.
func (w *Walker) Stats() Stats {
	return Stats{
		Visited:  w.visited.Load(),
		Pruned:   w.pruned.Load(),
		Ignored:  w.ignored.Load(),
		Symlinks: w.symlinks.Load(),
		Errors:   w.errs.Load(),
	}
}

// Stream starts walking root and returns the event channel, which is closed
// when the walk finishes or ctx is cancelled. An unusable root is reported
// synchronously as an ErrScanRoot error and nothing is started.
func (w *Walker) Stream(ctx context.Context, root string) (<-chan Event, error) {
	root, err := w.checkRoot(root)
	if err != nil {
		return nil, err
	}

	w.visited.Store(0)
	w.pruned.Store(0)
	w.ignored.Store(0)
	w.symlinks.Store(0)
	w.errs.Store(0)

	var base *ignore.Stack
	if len(w.global) > 0 {
		rs := ignore.New(root, "config", w.global)
		w.reportInvalid(rs)
		base = base.Push(rs)
	}

	q := newQueue()
	q.push(node{path: root, ignores: base})
	visited := newVisitedSet()
	out := make(chan Event, w.workers)

	stop := context.AfterFunc(ctx, q.close)
	done := logging.LogOperationStart(w.logger, "walk")

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n, ok := q.pop()
				if !ok {
					return
				}
				if ctx.Err() == nil {
					w.visit(ctx, q, visited, n, out)
				}
				q.done()
			}
		}()
	}

	go func() {
		wg.Wait()
		stop()
		close(out)
		done()
		w.logger.Debug().
			Str("root", root).
			Int("directories", visited.len()).
			Int64("pruned", w.pruned.Load()).
			Int64("ignored", w.ignored.Load()).
			Int64("errors", w.errs.Load()).
			Msg("Walk finished")
	}()

	return out, nil
}

// Result is the collected output of a walk
type Result struct {
	Candidates []artifact.Candidate
	Errors     []error
}

// Collect walks root and gathers every event. Candidates are sorted by path.
func (w *Walker) Collect(ctx context.Context, root string) (Result, error) {
	events, err := w.Stream(ctx, root)
	if err != nil {
		return Result{}, err
	}
	var res Result
	for ev := range events {
		if ev.Err != nil {
			res.Errors = append(res.Errors, ev.Err)
			continue
		}
		res.Candidates = append(res.Candidates, *ev.Candidate)
	}
	artifact.SortCandidates(res.Candidates)
	if err := ctx.Err(); err != nil {
		return res, errors.Wrap(err, errors.ErrCancelled, "walk cancelled")
	}
	return res, nil
}

func (w *Walker) checkRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrScanRoot, "cannot resolve scan root %s", root)
	}

	info, err := w.fs.Lstat(abs)
	if err == nil && info.Mode()&fs.ModeSymlink != 0 {
		if !w.followRoot {
			return "", errors.Newf(errors.ErrScanRoot, "scan root %s is a symlink", abs).
				WithDetail("path", abs)
		}
		info, err = w.fs.Stat(abs)
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrScanRoot, "cannot access scan root %s", abs).
			WithDetail("path", abs)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrScanRoot, "scan root %s is not a directory", abs).
			WithDetail("path", abs)
	}
	if _, err := w.fs.ReadDir(abs); err != nil {
		return "", errors.Wrapf(err, errors.ErrScanRoot, "cannot read scan root %s", abs).
			WithDetail("path", abs)
	}
	return abs, nil
}

func (w *Walker) visit(ctx context.Context, q *queue, visited *visitedSet, n node, out chan<- Event) {
	if !visited.add(n.path) {
		return
	}
	w.visited.Add(1)

	cand := w.classifier.Classify(n.path)
	if cand.Confirmed() {
		w.pruned.Add(1)
		if !w.kinds.Contains(cand.Kind) {
			w.logger.Debug().
				Str("path", n.path).
				Str("kind", cand.Kind.String()).
				Msg("Artifact not selected, pruned")
			return
		}
		if w.orphanedOnly && !classifier.Orphaned(cand) {
			w.logger.Debug().
				Str("path", n.path).
				Str("kind", cand.Kind.String()).
				Msg("Artifact not orphaned, pruned")
			return
		}
		w.logger.Debug().
			Str("path", n.path).
			Str("kind", cand.Kind.String()).
			Msg("Artifact found")
		w.send(ctx, out, Event{Candidate: &cand, Path: n.path})
		return
	}

	if w.maxDepth > 0 && n.depth >= w.maxDepth {
		return
	}

	entries, err := w.fs.ReadDir(n.path)
	if err != nil {
		w.errs.Add(1)
		scanErr := errors.Wrapf(err, errors.ErrDirectoryRead, "cannot read %s", n.path).
			WithDetail("path", n.path)
		w.logger.Warn().Err(err).Str("path", n.path).Msg("Skipping unreadable directory")
		w.send(ctx, out, Event{Path: n.path, Err: scanErr})
		return
	}

	ignores := n.ignores
	for _, e := range entries {
		if e.Name() == w.ignoreName && e.Type().IsRegular() {
			ignores = w.loadIgnore(ctx, n.path, ignores, out)
			break
		}
	}

	for _, e := range entries {
		if e.Type()&fs.ModeSymlink != 0 {
			w.symlinks.Add(1)
			w.logger.Trace().Str("path", filepath.Join(n.path, e.Name())).Msg("Symlink not followed")
			continue
		}
		if !e.IsDir() {
			continue
		}
		child := filepath.Join(n.path, e.Name())
		if ignores.Excluded(child, true) {
			w.ignored.Add(1)
			w.logger.Debug().Str("path", child).Msg("Ignored")
			continue
		}
		q.push(node{path: child, depth: n.depth + 1, ignores: ignores})
	}
}

func (w *Walker) loadIgnore(ctx context.Context, dir string, parent *ignore.Stack, out chan<- Event) *ignore.Stack {
	path := filepath.Join(dir, w.ignoreName)
	data, err := w.fs.ReadFile(path)
	if err != nil {
		w.errs.Add(1)
		w.logger.Warn().Err(err).Str("path", path).Msg("Cannot read ignore file")
		w.send(ctx, out, Event{Path: path, Err: errors.Wrapf(err, errors.ErrIgnoreRead, "cannot read %s", path).
			WithDetail("path", path)})
		return parent
	}
	rs := ignore.Parse(dir, path, data)
	w.reportInvalid(rs)
	w.logger.Debug().Str("path", path).Int("patterns", rs.Len()).Msg("Loaded ignore file")
	return parent.Push(rs)
}

func (w *Walker) reportInvalid(rs *ignore.Ruleset) {
	for _, p := range rs.Invalid() {
		w.logger.Warn().Str("source", rs.Source).Str("pattern", p).Msg("Malformed ignore pattern never matches")
	}
}

func (w *Walker) send(ctx context.Context, out chan<- Event, ev Event) {
	select {
	case out <- ev:
	case <-ctx.Done():
	}
}
