package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/wd40/internal/version"
	"github.com/arthur-debert/wd40/pkg/classifier"
	"github.com/arthur-debert/wd40/pkg/config"
	"github.com/arthur-debert/wd40/pkg/paths"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: MsgKindsShort,
		Long:  MsgKindsLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{UserFile: paths.New().UserConfigFile()})
			if err != nil {
				return err
			}
			rules := classifier.DefaultRules(classifier.Options{SccacheNames: cfg.Sccache.DirNames})
			md := KindsMarkdown(rules)

			out := cmd.OutOrStdout()
			if isTerminal(out) {
				md = renderMarkdown(md)
			}
			_, err = io.WriteString(out, md)
			return err
		},
	}
}

// KindsMarkdown lists the rules in priority order as a markdown table
func KindsMarkdown(rules []classifier.Rule) string {
	var b strings.Builder
	b.WriteString("# Artifact kinds\n\n")
	b.WriteString("| Kind | Description | Recognised when |\n")
	b.WriteString("|------|-------------|-----------------|\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", r.Kind, r.Kind.Label(), r.Description)
	}
	return b.String()
}

// renderMarkdown uses glamour with auto-detected style and falls back to the
// raw markdown on any error
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(wd40 completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ wd40 completion bash > /etc/bash_completion.d/wd40
  # macOS:
  $ wd40 completion bash > /usr/local/etc/bash_completion.d/wd40

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ wd40 completion zsh > "${fpath[1]}/_wd40"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ wd40 completion fish | source
  # To load completions for each session, execute once:
  $ wd40 completion fish > ~/.config/fish/completions/wd40.fish

PowerShell:
  PS> wd40 completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var err error
			switch args[0] {
			case "bash":
				err = cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				err = cmd.Root().GenZshCompletion(out)
			case "fish":
				err = cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				err = cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			if err != nil {
				log.Error().Err(err).Str("shell", args[0]).Msg("Failed to generate completion")
			}
			return err
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			return doc.GenManTree(cmd.Root(), ManHeader(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", MsgFlagManOutDir)
	return cmd
}

// ManHeader is shared by the man subcommand and the wd40-manpage tool
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "WD40",
		Section: "1",
		Source:  "wd40 " + version.Version,
		Manual:  "wd40 manual",
	}
}
