package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arthur-debert/wd40/internal/version"
	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/cleaner"
	"github.com/arthur-debert/wd40/pkg/config"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/logging"
	"github.com/arthur-debert/wd40/pkg/paths"
	"github.com/arthur-debert/wd40/pkg/ui"
	"github.com/arthur-debert/wd40/pkg/ui/confirmations"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runFlags struct {
	verbosity int
	dryRun    bool
	yes       bool
	kinds     []string
	maxDepth  int
	workers   int
	ignore    []string
	logFile   string
	noAudit   bool
	details   bool
	format    string

	rustOnly     bool
	nodeOnly     bool
	pythonOnly   bool
	haskellOnly  bool
	rustupOnly   bool
	nextOnly     bool
	cargoNixOnly bool
	orphanedOnly bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	f := &runFlags{}

	rootCmd := &cobra.Command{
		Use:     "wd40 [path]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(f.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runClean(cmd, args, f); err != nil {
				return renderError(cmd, f.format, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&f.verbosity, "verbose", "v", MsgFlagVerbose)

	flags := rootCmd.Flags()
	flags.BoolVarP(&f.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	flags.BoolVarP(&f.yes, "yes", "y", false, MsgFlagYes)
	flags.StringArrayVar(&f.kinds, "kind", nil, MsgFlagKind)
	flags.IntVar(&f.maxDepth, "max-depth", 0, MsgFlagMaxDepth)
	flags.IntVar(&f.workers, "workers", 8, MsgFlagWorkers)
	flags.StringArrayVar(&f.ignore, "ignore", nil, MsgFlagIgnore)
	flags.StringVar(&f.logFile, "log-file", "", MsgFlagLogFile)
	flags.BoolVar(&f.noAudit, "no-audit", false, MsgFlagNoAudit)
	flags.BoolVar(&f.details, "details", false, MsgFlagDetails)
	flags.StringVar(&f.format, "format", "auto", MsgFlagFormat)

	flags.BoolVar(&f.rustOnly, "rust-only", false, MsgFlagRustOnly)
	flags.BoolVar(&f.nodeOnly, "node-only", false, MsgFlagNodeOnly)
	flags.BoolVar(&f.pythonOnly, "python-only", false, MsgFlagPyOnly)
	flags.BoolVar(&f.haskellOnly, "haskell-only", false, MsgFlagHsOnly)
	flags.BoolVar(&f.rustupOnly, "rustup-only", false, MsgFlagRustup)
	flags.BoolVar(&f.nextOnly, "next-only", false, MsgFlagNextOnly)
	flags.BoolVar(&f.cargoNixOnly, "cargo-nix-only", false, MsgFlagCargoNix)
	flags.BoolVar(&f.orphanedOnly, "orphaned-only", false, MsgFlagOrphaned)

	rootCmd.MarkFlagsMutuallyExclusive("no-audit", "log-file")
	_ = rootCmd.RegisterFlagCompletionFunc("kind", completeKinds)
	_ = rootCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		ui.FormatNames(), cobra.ShellCompDirectiveNoFileComp))

	// Disable automatic help command
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	initTemplateFormatting(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newKindsCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

func completeKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, k := range artifact.AllKinds() {
		names = append(names, k.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// selectedKinds folds the ecosystem filters and --kind into one list of
// identifiers. Nil means no filter was given.
func (f *runFlags) selectedKinds() []string {
	groups := []struct {
		on    bool
		kinds []artifact.Kind
	}{
		{f.rustOnly, artifact.RustKinds},
		{f.nodeOnly, artifact.NodeKinds},
		{f.pythonOnly, artifact.PythonKinds},
		{f.haskellOnly, artifact.HaskellKinds},
		{f.rustupOnly, []artifact.Kind{artifact.RustupRoot}},
		{f.nextOnly, []artifact.Kind{artifact.NextBuild}},
		{f.cargoNixOnly, []artifact.Kind{artifact.CargoNixCache}},
		{f.orphanedOnly, []artifact.Kind{artifact.RustTarget}},
	}

	var names []string
	for _, g := range groups {
		if !g.on {
			continue
		}
		for _, k := range g.kinds {
			names = append(names, k.String())
		}
	}
	return append(names, f.kinds...)
}

// overrides turns the flags the user actually set into config keys
func (f *runFlags) overrides(cmd *cobra.Command) map[string]interface{} {
	out := make(map[string]interface{})
	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		out["scan.max_depth"] = f.maxDepth
	}
	if flags.Changed("workers") {
		out["scan.workers"] = f.workers
	}
	if kinds := f.selectedKinds(); len(kinds) > 0 {
		out["kinds.enabled"] = kinds
	}
	if f.noAudit {
		out["audit.enabled"] = false
	}
	return out
}

// reportedError is an error already shown to the user in the selected
// output format
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already rendered, so callers only need to
// set the exit status
func Reported(err error) bool {
	var r reportedError
	return stderrors.As(err, &r)
}

// renderError shows a run-ending error through the renderer for format.
// JSON goes to stdout where the summary document would have been; the
// human formats go to stderr. An unusable --format leaves err unrendered.
func renderError(cmd *cobra.Command, name string, err error) error {
	format, perr := ui.ParseFormat(name)
	if perr != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	if format == ui.FormatJSON {
		out = cmd.OutOrStdout()
	}
	renderer, rerr := ui.NewRenderer(format, out, ui.Options{})
	if rerr != nil {
		return err
	}
	if rerr := renderer.RenderError(err); rerr != nil {
		return err
	}
	return reportedError{err: err}
}

func runClean(cmd *cobra.Command, args []string, f *runFlags) error {
	logger := logging.GetLogger("cli")

	root := "."
	if len(args) == 1 {
		root = paths.ExpandHome(args[0])
	}

	format, err := ui.ParseFormat(f.format)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}

	p := paths.New()
	cfg, err := config.Load(config.Options{
		UserFile:    p.UserConfigFile(),
		ProjectFile: p.ProjectConfigFile(root),
		Overrides:   f.overrides(cmd),
	})
	if err != nil {
		return err
	}
	kinds, err := cfg.SelectedKinds()
	if err != nil {
		return err
	}

	audit, auditPath, closeAudit := openAudit(cfg, p, f.logFile, logger)
	defer closeAudit()

	var confirmer cleaner.Confirmer
	if !f.yes && !f.dryRun {
		confirmer = confirmations.NewDialog(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("root", root).
		Bool("dryRun", f.dryRun).
		Bool("orphanedOnly", f.orphanedOnly).
		Strs("kinds", cfg.Kinds.Enabled).
		Int("workers", cfg.Scan.Workers).
		Msg("Starting clean")

	c := cleaner.New(cleaner.Options{
		Root:              root,
		DryRun:            f.dryRun,
		Kinds:             kinds,
		OrphanedOnly:      f.orphanedOnly,
		MaxDepth:          cfg.Scan.MaxDepth,
		Workers:           cfg.Scan.Workers,
		IgnoreFileName:    cfg.Ignore.FileName,
		GlobalIgnore:      append(append([]string{}, cfg.Ignore.Patterns...), f.ignore...),
		FollowRootSymlink: cfg.Scan.FollowRootSymlink,
		SccacheNames:      cfg.Sccache.DirNames,
		Confirmer:         confirmer,
		Audit:             audit,
	})

	summary, err := c.Run(ctx)
	if summary == nil {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Str("path", auditPath).Msg(MsgWarnAudit)
	}

	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout(), ui.Options{Details: f.details})
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	if err := renderer.RenderResult(summary); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render summary")
	}
	if auditPath != "" && format != ui.FormatJSON {
		return renderer.RenderMessage(fmt.Sprintf(MsgAuditRecord, auditPath))
	}
	return nil
}

// openAudit opens the audit record for appending. A record that cannot be
// opened is a warning, never a reason to skip the run.
func openAudit(cfg *config.Config, p paths.Paths, override string, logger zerolog.Logger) (io.Writer, string, func()) {
	noop := func() {}
	if !cfg.Audit.Enabled {
		return nil, "", noop
	}

	path := paths.ExpandHome(override)
	if path == "" {
		path = p.AuditFile(cfg.Audit.Dir, time.Now())
	}
	if err := paths.EnsureDir(filepath.Dir(path)); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg(MsgWarnAuditOpen)
		return nil, "", noop
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg(MsgWarnAuditOpen)
		return nil, "", noop
	}
	return file, path, func() {
		if err := file.Close(); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg(MsgWarnAudit)
		}
	}
}
