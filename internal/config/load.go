package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	masonerrors "github.com/masonbuild/mason/internal/errors"
)

// configFileName is the name of both the global and the project config
// file, relative to their respective directories.
const configFileName = "config.yaml"

// dirName is the dot-directory holding mason's configuration.
const dirName = ".mason"

// Settings is the live view over the merged configuration layers.
// Reads go through viper on every call, preserving the engine's
// read-fresh-at-every-phase semantics, and it implements the engine's
// Conf interface.
type Settings struct {
	v *viper.Viper
}

// newViperInstance creates a viper instance with defaults, the MASON_
// environment prefix, and the key replacer installed.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MASON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError reports whether err is viper's missing config
// file error. Missing files are expected and never fatal.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound) || os.IsNotExist(err)
}

// Load reads configuration from all available sources with proper
// precedence and returns the live settings view. Missing config files
// are not errors; malformed ones are.
func Load() (*Settings, error) {
	v := newViperInstance()

	// Global config first (lower precedence).
	if home, err := os.UserHomeDir(); err == nil {
		if err := mergeConfigFile(v, filepath.Join(home, dirName, configFileName)); err != nil {
			return nil, err
		}
	}

	// Project config merges over it.
	if err := mergeConfigFile(v, filepath.Join(dirName, configFileName)); err != nil {
		return nil, err
	}

	s := &Settings{v: v}
	if _, err := s.Snapshot(); err != nil {
		return nil, err
	}

	return s, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	f, err := os.Open(path) //#nosec G304 -- fixed well-known config locations
	if err != nil {
		if isConfigNotFoundError(err) {
			return nil
		}
		return masonerrors.Wrapf(err, "opening config file %s", path)
	}
	defer func() { _ = f.Close() }()

	v.SetConfigType("yaml")
	if err := v.MergeConfig(f); err != nil {
		return masonerrors.Wrapf(err, "parsing config file %s", path)
	}

	return nil
}

// Set applies a single override at the highest precedence level. Used
// by the CLI to push flag values over everything else.
func (s *Settings) Set(key string, value any) {
	s.v.Set(key, value)
}

// Snapshot unmarshals and validates the current merged configuration.
// Used for validation at load time and for `mason config show`; the
// engine itself never reads through a snapshot.
func (s *Settings) Snapshot() (*Config, error) {
	var cfg Config
	if err := s.v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, masonerrors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, masonerrors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// viperDecoderOption enables decoding of duration strings like "30s"
// into time.Duration fields.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Clean implements the engine's Conf interface.
func (s *Settings) Clean() bool { return s.v.GetBool("global.clean") }

// Fetch implements the engine's Conf interface.
func (s *Settings) Fetch() bool { return s.v.GetBool("global.fetch") }

// Build implements the engine's Conf interface.
func (s *Settings) Build() bool { return s.v.GetBool("global.build") }

// Redownload implements the engine's Conf interface.
func (s *Settings) Redownload() bool { return s.v.GetBool("global.redownload") }

// Reextract implements the engine's Conf interface.
func (s *Settings) Reextract() bool { return s.v.GetBool("global.reextract") }

// Reconfigure implements the engine's Conf interface.
func (s *Settings) Reconfigure() bool { return s.v.GetBool("global.reconfigure") }

// Rebuild implements the engine's Conf interface.
func (s *Settings) Rebuild() bool { return s.v.GetBool("global.rebuild") }

// Parallelism implements the engine's Conf interface.
func (s *Settings) Parallelism() int { return s.v.GetInt("global.parallelism") }

// TaskEnabled implements the engine's Conf interface: the first alias
// with an explicit enabled override wins, and tasks default to enabled.
func (s *Settings) TaskEnabled(names []string) bool {
	for _, n := range names {
		key := "tasks." + n + ".enabled"
		if s.v.IsSet(key) {
			return s.v.GetBool(key)
		}
	}
	return true
}

// GitBinary returns the configured git binary.
func (s *Settings) GitBinary() string { return s.v.GetString("tools.git") }

// Shallow reports whether git clones are shallow.
func (s *Settings) Shallow() bool { return s.v.GetBool("tools.shallow") }

// NoPull reports whether existing checkouts are left alone.
func (s *Settings) NoPull() bool { return s.v.GetBool("tools.no_pull") }

// ToolTimeout bounds each external tool invocation. Zero means no limit.
func (s *Settings) ToolTimeout() time.Duration { return s.v.GetDuration("tools.timeout") }

// GracePeriod returns the SIGTERM-to-SIGKILL window for interrupted tools.
func (s *Settings) GracePeriod() time.Duration { return s.v.GetDuration("tools.grace_period") }

// BuildDir returns the root directory sources are fetched into.
func (s *Settings) BuildDir() string { return s.v.GetString("paths.build") }

// PatchesDir returns the root directory of per-task patch sets.
func (s *Settings) PatchesDir() string { return s.v.GetString("paths.patches") }

// PrefixDir returns the installation prefix.
func (s *Settings) PrefixDir() string { return s.v.GetString("paths.prefix") }
