package executor

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/logging"
	"github.com/arthur-debert/wd40/pkg/sizer"
	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/rs/zerolog"
)

// Options contains configuration for the executor
type Options struct {
	DryRun bool
	Logger *zerolog.Logger
	// Filesystem operations interface for testing
	FS types.FS
}

// Outcome is what happened to one candidate
type Outcome struct {
	Candidate artifact.Candidate
	State     State
	// History lists every state the candidate went through, in order
	History []State
	// Bytes is the measured size, whether or not the directory was removed
	Bytes    int64
	Files    int64
	Err      error
	Warnings []error
	Started  time.Time
	Duration time.Duration
}

// Freed returns the bytes actually reclaimed
func (o Outcome) Freed() int64 {
	if o.State == Deleted {
		return o.Bytes
	}
	return 0
}

func (o *Outcome) advance(to State) {
	if !CanTransition(o.State, to) {
		panic(fmt.Sprintf("executor: illegal transition %s -> %s", o.State, to))
	}
	o.State = to
	o.History = append(o.History, to)
}

// Executor sizes and deletes candidates
type Executor struct {
	dryRun bool
	logger zerolog.Logger
	fs     types.FS
	sizer  *sizer.Sizer
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Executor{
		dryRun: opts.DryRun,
		logger: logger,
		fs:     fs,
		sizer:  sizer.New(fs),
	}
}

// DryRun reports whether the executor only simulates deletions
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Execute processes a slice of candidates sequentially
func (e *Executor) Execute(ctx context.Context, cands []artifact.Candidate) []Outcome {
	outcomes := make([]Outcome, 0, len(cands))
	for _, cand := range cands {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, e.Process(ctx, cand))
	}
	return outcomes
}

// Process drives one candidate to a terminal state. Once started it runs to
// completion even if ctx is cancelled: callers check cancellation between
// candidates, never inside one.
func (e *Executor) Process(ctx context.Context, cand artifact.Candidate) Outcome {
	out := Outcome{
		Candidate: cand,
		State:     Pending,
		History:   []State{Pending},
		Started:   time.Now(),
	}
	e.process(context.WithoutCancel(ctx), &out)
	out.Duration = time.Since(out.Started)
	return out
}

func (e *Executor) process(ctx context.Context, out *Outcome) {
	cand := out.Candidate
	logger := e.logger.With().
		Str("path", cand.Path).
		Str("kind", cand.Kind.String()).
		Logger()

	if !cand.Confirmed() {
		out.Err = errors.Newf(errors.ErrInvalidInput, "refusing to process unconfirmed directory %s", cand.Path).
			WithDetail("path", cand.Path)
		out.advance(DeleteFailed)
		logger.Error().Err(out.Err).Msg("Unconfirmed candidate")
		return
	}

	out.advance(Sizing)
	size := e.sizer.Measure(ctx, cand.Path)
	out.Bytes = size.Bytes
	out.Files = size.Files
	out.Warnings = size.Warnings
	for _, w := range size.Warnings {
		logger.Warn().Err(w).Msg("Size probe failed, counted as zero")
	}

	if e.dryRun {
		out.advance(DryRunSkipped)
		logger.Info().Int64("bytes", out.Bytes).Msg("Would delete")
		return
	}

	out.advance(Deleting)
	if err := e.verify(cand.Path); err != nil {
		out.Err = err
		out.advance(DeleteFailed)
		logger.Warn().Err(err).Msg("Candidate changed since classification")
		return
	}

	if err := e.fs.RemoveAll(cand.Path); err != nil {
		out.Err = errors.Wrapf(err, errors.ErrDeleteFailed, "failed to delete %s", cand.Path).
			WithDetail("path", cand.Path).
			WithDetail("kind", cand.Kind.String())
		out.advance(DeleteFailed)
		logger.Warn().Err(err).Msg("Deletion failed, directory may be partially removed")
		return
	}

	out.advance(Deleted)
	logger.Info().
		Int64("bytes", out.Bytes).
		Dur("duration", time.Since(out.Started)).
		Msg("Deleted")
}

// verify makes sure path is still a real directory before it is removed
func (e *Executor) verify(path string) error {
	info, err := e.fs.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDeleteFailed, "cannot stat %s before deletion", path).
			WithDetail("path", path)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return errors.Newf(errors.ErrDeleteFailed, "%s became a symlink, not deleting", path).
			WithDetail("path", path)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrDeleteFailed, "%s is no longer a directory", path).
			WithDetail("path", path)
	}
	return nil
}
