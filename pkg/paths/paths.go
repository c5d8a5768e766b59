package paths

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/wd40/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for wd40
	EnvConfigDir = "WD40_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for wd40
	EnvCacheDir = "WD40_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name used under every XDG base
	AppDirName = "wd40"

	// ConfigFileName is the user configuration file inside ConfigDir
	ConfigFileName = "config.toml"

	// ProjectConfigName is the optional configuration file at a scan root
	ProjectConfigName = ".wd40.toml"

	// LogFileName is the name of the diagnostic log file
	LogFileName = "wd40.log"

	// auditLayout names audit records clean-20060102-150405.log
	auditLayout = "20060102-150405"
)

// Paths resolves wd40's own files
type Paths interface {
	ConfigDir() string
	CacheDir() string
	StateDir() string
	UserConfigFile() string
	ProjectConfigFile(root string) string
	AuditDir(override string) string
	AuditFile(dir string, at time.Time) string
	LogFilePath() string
}

type paths struct {
	config string
	cache  string
	state  string
}

// New resolves every base directory once, honouring the WD40_* overrides
func New() Paths {
	p := &paths{}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.config = ExpandHome(dir)
	} else {
		p.config = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvCacheDir); dir != "" {
		p.cache = ExpandHome(dir)
	} else {
		p.cache = filepath.Join(xdg.CacheHome, AppDirName)
	}

	// xdg.StateHome is resolved at init; read the variable directly so a
	// changed environment is seen
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		p.state = filepath.Join(dir, AppDirName)
	} else {
		p.state = filepath.Join(GetHomeDirectoryWithDefault("."), ".local", "state", AppDirName)
	}

	return p
}

func (p *paths) ConfigDir() string { return p.config }

func (p *paths) CacheDir() string { return p.cache }

func (p *paths) StateDir() string { return p.state }

// UserConfigFile returns the per-user config.toml
func (p *paths) UserConfigFile() string {
	return filepath.Join(p.config, ConfigFileName)
}

// ProjectConfigFile returns the .wd40.toml path for a scan root
func (p *paths) ProjectConfigFile(root string) string {
	return filepath.Join(root, ProjectConfigName)
}

// AuditDir returns override when set, the cache directory otherwise
func (p *paths) AuditDir(override string) string {
	if override != "" {
		return ExpandHome(override)
	}
	return p.cache
}

// AuditFile returns the audit record path for a run started at the given
// time. An empty dir means the cache directory.
func (p *paths) AuditFile(dir string, at time.Time) string {
	return filepath.Join(p.AuditDir(dir), "clean-"+at.Format(auditLayout)+".log")
}

// LogFilePath returns the path to the wd40 log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.state, LogFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	// ~user is left alone
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrap(err, errors.ErrConfigLoad, "failed to get home directory")
	}
	return homeDir, nil
}

// GetHomeDirectoryWithDefault returns the home directory or a default value
func GetHomeDirectoryWithDefault(defaultDir string) string {
	homeDir, err := GetHomeDirectory()
	if err != nil {
		return defaultDir
	}
	return homeDir
}

// EnsureDir creates dir and its parents
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrAuditWrite, "failed to create %s", dir)
	}
	return nil
}
