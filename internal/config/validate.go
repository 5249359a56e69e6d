package config

import (
	masonerrors "github.com/masonbuild/mason/internal/errors"
)

// Validate checks a configuration snapshot for values the build cannot
// work with. It returns the first problem found, wrapped with
// ErrConfigInvalid so callers can categorize it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return masonerrors.ErrConfigNil
	}

	if cfg.Global.Parallelism < 0 {
		return masonerrors.Wrap(masonerrors.ErrConfigInvalid, "global.parallelism cannot be negative")
	}

	if cfg.Tools.Git == "" {
		return masonerrors.Wrap(masonerrors.ErrConfigInvalid, "tools.git cannot be empty")
	}

	if cfg.Tools.Timeout < 0 {
		return masonerrors.Wrap(masonerrors.ErrConfigInvalid, "tools.timeout cannot be negative")
	}

	if cfg.Tools.GracePeriod < 0 {
		return masonerrors.Wrap(masonerrors.ErrConfigInvalid, "tools.grace_period cannot be negative")
	}

	if cfg.Paths.Build == "" {
		return masonerrors.Wrap(masonerrors.ErrConfigInvalid, "paths.build cannot be empty")
	}

	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return masonerrors.Wrap(masonerrors.ErrConfigInvalid, "log rotation values cannot be negative")
	}

	return nil
}
