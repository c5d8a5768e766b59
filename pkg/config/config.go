package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"strings"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix starts every environment override
const EnvPrefix = "WD40_"

// Config is the fully resolved configuration of one run
type Config struct {
	Scan    Scan    `koanf:"scan"`
	Ignore  Ignore  `koanf:"ignore"`
	Kinds   Kinds   `koanf:"kinds"`
	Sccache Sccache `koanf:"sccache"`
	Audit   Audit   `koanf:"audit"`
}

// Scan controls the walk
type Scan struct {
	Workers           int  `koanf:"workers"`
	MaxDepth          int  `koanf:"max_depth"`
	FollowRootSymlink bool `koanf:"follow_root_symlink"`
}

// Ignore controls the ignore files and the global patterns
type Ignore struct {
	FileName string   `koanf:"file_name"`
	Patterns []string `koanf:"patterns"`
}

// Kinds restricts the run to some artifact kinds. Empty means all.
type Kinds struct {
	Enabled []string `koanf:"enabled"`
}

// Sccache lists the directory names accepted as a compiler cache
type Sccache struct {
	DirNames []string `koanf:"dir_names"`
}

// Audit controls the structured audit record
type Audit struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// Options selects the optional layers
type Options struct {
	// UserFile is the per-user config.toml; empty skips the layer
	UserFile string
	// ProjectFile is the .wd40.toml at the scan root; empty skips the layer
	ProjectFile string
	// Overrides holds flag values keyed by dotted path ("scan.workers")
	Overrides map[string]interface{}
	// IgnoreEnv skips the WD40_* environment layer
	IgnoreEnv bool
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Default returns the embedded defaults alone
func Default() (*Config, error) {
	return Load(Options{IgnoreEnv: true})
}

// Load merges every layer and validates the result
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse built-in defaults")
	}

	for _, path := range []string{opts.UserFile, opts.ProjectFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config %s", path).
				WithDetail("path", path)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	if !opts.IgnoreEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
		}
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply flag overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps WD40_SECTION_KEY to section.key. Only the first underscore
// separates the section, so WD40_SCAN_MAX_DEPTH is scan.max_depth.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Validate checks ranges and kind names
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return errors.Newf(errors.ErrConfigValid, "scan.workers must be at least 1, got %d", c.Scan.Workers).
			WithDetail("key", "scan.workers")
	}
	if c.Scan.MaxDepth < 0 {
		return errors.Newf(errors.ErrConfigValid, "scan.max_depth must not be negative, got %d", c.Scan.MaxDepth).
			WithDetail("key", "scan.max_depth")
	}
	if strings.ContainsRune(c.Ignore.FileName, '/') {
		return errors.Newf(errors.ErrConfigValid, "ignore.file_name must be a plain file name, got %q", c.Ignore.FileName).
			WithDetail("key", "ignore.file_name")
	}
	if len(c.Sccache.DirNames) == 0 {
		return errors.New(errors.ErrConfigValid, "sccache.dir_names must not be empty").
			WithDetail("key", "sccache.dir_names")
	}
	if _, err := c.SelectedKinds(); err != nil {
		return err
	}
	return nil
}

// SelectedKinds parses kinds.enabled. An empty set selects every kind.
func (c *Config) SelectedKinds() (artifact.KindSet, error) {
	set := artifact.NewKindSet()
	for _, name := range c.Kinds.Enabled {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		kind, err := artifact.ParseKind(name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "unknown kind %q in kinds.enabled", name).
				WithDetail("key", "kinds.enabled")
		}
		set.Add(kind)
	}
	return set, nil
}
