package cleaner

import (
	"context"
	"io"
	"path/filepath"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/classifier"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/executor"
	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/logging"
	"github.com/arthur-debert/wd40/pkg/report"
	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/arthur-debert/wd40/pkg/walker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Confirmer approves a batch of candidates before they are deleted
type Confirmer interface {
	Confirm(cands []artifact.Candidate) (bool, error)
}

// Options contains configuration for a run
type Options struct {
	FS     types.FS
	Root   string
	DryRun bool

	// Kinds selects which kinds are processed; empty means all
	Kinds        artifact.KindSet
	OrphanedOnly bool
	MaxDepth     int
	Workers      int

	IgnoreFileName    string
	GlobalIgnore      []string
	FollowRootSymlink bool
	SccacheNames      []string

	// Confirmer is asked once before a live run deletes anything. Nil
	// skips the prompt.
	Confirmer Confirmer

	// Audit receives the JSON-lines audit record; nil disables it
	Audit io.Writer
	// RunID stamps the audit lines; generated when empty
	RunID string

	Logger *zerolog.Logger
}

// Cleaner wires the walker, the executor pool and the aggregator together
type Cleaner struct {
	opts     Options
	fs       types.FS
	walker   *walker.Walker
	executor *executor.Executor
	workers  int
	logger   zerolog.Logger
}

// New creates a cleaner for one root
func New(opts Options) *Cleaner {
	logger := logging.GetLogger("cleaner")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = walker.DefaultWorkers
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	rules := classifier.DefaultOptions()
	if len(opts.SccacheNames) > 0 {
		rules.SccacheNames = opts.SccacheNames
	}
	cls := classifier.New(classifier.Config{
		FS:     fsys,
		Rules:  classifier.DefaultRules(rules),
		Logger: opts.Logger,
	})

	return &Cleaner{
		opts: opts,
		fs:   fsys,
		walker: walker.New(walker.Options{
			FS:                fsys,
			Classifier:        cls,
			Kinds:             opts.Kinds,
			OrphanedOnly:      opts.OrphanedOnly,
			MaxDepth:          opts.MaxDepth,
			Workers:           workers,
			IgnoreFileName:    opts.IgnoreFileName,
			GlobalIgnore:      opts.GlobalIgnore,
			FollowRootSymlink: opts.FollowRootSymlink,
			Logger:            opts.Logger,
		}),
		executor: executor.New(executor.Options{
			DryRun: opts.DryRun,
			FS:     fsys,
			Logger: opts.Logger,
		}),
		workers: workers,
		logger:  logger,
	}
}

// RunID returns the identifier stamped on the audit record
func (c *Cleaner) RunID() string {
	return c.opts.RunID
}

// WalkStats returns the walker counters of the last run
func (c *Cleaner) WalkStats() walker.Stats {
	return c.walker.Stats()
}

// Run performs the whole pass and returns its summary. The only error is a
// fatal one: an unusable root, a failed prompt or an audit write failure. In
// the audit case the summary is still returned.
func (c *Cleaner) Run(ctx context.Context) (*report.Summary, error) {
	done := logging.LogOperationStart(c.logger, "clean")
	defer done()

	if c.opts.Confirmer == nil || c.opts.DryRun {
		return c.stream(ctx)
	}
	return c.confirmed(ctx)
}

func (c *Cleaner) newAggregator() (*report.Aggregator, *report.Audit) {
	root := c.opts.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	var audit *report.Audit
	if c.opts.Audit != nil {
		audit = report.NewAudit(c.opts.Audit, c.opts.RunID)
	}
	summary := report.NewSummary(c.opts.RunID, root, c.opts.DryRun)
	return report.NewAggregator(summary, audit), audit
}

// stream overlaps discovery and execution
func (c *Cleaner) stream(ctx context.Context) (*report.Summary, error) {
	events, err := c.walker.Stream(ctx, c.opts.Root)
	if err != nil {
		return nil, err
	}
	agg, audit := c.newAggregator()

	var g errgroup.Group
	g.SetLimit(c.workers)
	for ev := range events {
		if ev.Err != nil {
			agg.ScanError(ev.Path, ev.Err)
			continue
		}
		if ctx.Err() != nil {
			continue
		}
		cand := *ev.Candidate
		g.Go(func() error {
			agg.Outcome(c.executor.Process(ctx, cand))
			return nil
		})
	}
	_ = g.Wait()

	return c.finish(agg, audit, ctx.Err() != nil)
}

// confirmed discovers everything first, asks, then executes
func (c *Cleaner) confirmed(ctx context.Context) (*report.Summary, error) {
	res, err := c.walker.Collect(ctx, c.opts.Root)
	if err != nil && !errors.IsErrorCode(err, errors.ErrCancelled) {
		return nil, err
	}
	agg, audit := c.newAggregator()
	for _, scanErr := range res.Errors {
		agg.ScanError(pathOf(scanErr), scanErr)
	}
	if ctx.Err() != nil || len(res.Candidates) == 0 {
		return c.finish(agg, audit, ctx.Err() != nil)
	}

	ok, err := c.opts.Confirmer.Confirm(res.Candidates)
	if err != nil {
		agg.Close(false)
		return nil, err
	}
	if !ok {
		c.logger.Info().Int("candidates", len(res.Candidates)).Msg("Deletion declined")
		return c.finishDeclined(agg, audit, len(res.Candidates))
	}

	c.Clean(ctx, agg, res.Candidates)
	return c.finish(agg, audit, ctx.Err() != nil)
}

// Clean runs the executor pool over cands and feeds every outcome to agg.
// Candidates not yet started when ctx is cancelled are skipped.
func (c *Cleaner) Clean(ctx context.Context, agg *report.Aggregator, cands []artifact.Candidate) {
	var g errgroup.Group
	g.SetLimit(c.workers)
	for _, cand := range cands {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			agg.Outcome(c.executor.Process(ctx, cand))
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Cleaner) finish(agg *report.Aggregator, audit *report.Audit, cancelled bool) (*report.Summary, error) {
	summary := agg.Close(cancelled)
	c.logSummary(summary)
	return summary, audit.Err()
}

func (c *Cleaner) finishDeclined(agg *report.Aggregator, audit *report.Audit, found int) (*report.Summary, error) {
	agg.Decline(found)
	return c.finish(agg, audit, false)
}

func (c *Cleaner) logSummary(s *report.Summary) {
	t := s.Totals()
	c.logger.Info().
		Str("run", s.RunID).
		Str("root", s.Root).
		Bool("dry_run", s.DryRun).
		Int("found", t.Found).
		Int("deleted", t.Deleted).
		Int("failed", t.Failed).
		Int("scan_errors", len(s.ScanErrors)).
		Int64("bytes_freed", t.Freed).
		Bool("cancelled", s.Cancelled).
		Msg("Run finished")
}

func pathOf(err error) string {
	if p, ok := errors.GetErrorDetails(err)["path"].(string); ok {
		return p
	}
	return ""
}
