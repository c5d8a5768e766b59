package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Find and delete build-artifact directories"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgKindsShort      = "List the artifact kinds and how they are recognised"
	MsgManShort        = "Generate man pages"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgAuditRecord = "Audit record: %s"

	// Version output
	MsgVersionFormat = "wd40 version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Classify and measure only; delete nothing"
	MsgFlagYes       = "Delete without asking for confirmation"
	MsgFlagKind      = "Only process this kind (repeatable, see 'wd40 kinds')"
	MsgFlagMaxDepth  = "Do not descend more than this many levels below the path (0 = unbounded)"
	MsgFlagWorkers   = "Number of parallel workers"
	MsgFlagIgnore    = "Extra ignore pattern relative to the path (repeatable)"
	MsgFlagLogFile   = "Write the audit record to this file instead of the cache directory"
	MsgFlagNoAudit   = "Do not write an audit record"
	MsgFlagDetails   = "List every candidate in the summary"
	MsgFlagFormat    = "Output format: auto, terminal, text or json"
	MsgFlagRustOnly  = "Only Rust artifacts (target, rustup, sccache, cargo-nix)"
	MsgFlagNodeOnly  = "Only Node.js artifacts (node_modules, .next)"
	MsgFlagPyOnly    = "Only Python virtual environments"
	MsgFlagHsOnly    = "Only Haskell .stack-work directories"
	MsgFlagRustup    = "Only rustup toolchain trees"
	MsgFlagNextOnly  = "Only Next.js .next builds"
	MsgFlagCargoNix  = "Only cargo-nix caches"
	MsgFlagOrphaned  = "Only Rust target directories whose project has no Cargo.toml"
	MsgFlagManOutDir = "Directory to write the man pages to"

	// Warnings
	MsgWarnAuditOpen = "Cannot open the audit record, continuing without it"
	MsgWarnAudit     = "The audit record is incomplete"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/kinds-long.txt
	msgKindsLongRaw string
	MsgKindsLong    = strings.TrimSpace(msgKindsLongRaw)
)
