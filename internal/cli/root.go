// Package cli provides the command-line interface for mason.
//
// Import rules:
//   - CAN import: any internal package, cobra, viper, zerolog, uuid, yaml
//   - MUST NOT be imported by: anything except cmd/mason
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/masonbuild/mason/internal/config"
	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/logging"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// app carries the state shared by all subcommands: flags, the merged
// configuration, and the root logger, initialized once in the root
// command's PersistentPreRunE.
type app struct {
	flags    *GlobalFlags
	settings *config.Settings
	logger   zerolog.Logger
}

// newRootCmd creates the root command. Subcommands reach the shared
// app state through the closure rather than package globals.
func newRootCmd(a *app, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mason",
		Short: "mason - third-party component build orchestrator",
		Long: `mason fetches, patches, builds and installs the third-party components
a larger project depends on. Components run as tasks with a shared
clean/fetch/build lifecycle, and a build in flight can be interrupted
cleanly with Ctrl-C.`,
		Version: formatVersion(info),
		// Run displays help when invoked without a subcommand, which
		// still exercises PersistentPreRunE for flag validation.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !IsValidOutputFormat(a.flags.Output) {
				return masonerrors.Wrapf(masonerrors.ErrInvalidOutputFormat,
					"%q must be one of %v", a.flags.Output, ValidOutputFormats())
			}

			settings, err := config.Load()
			if err != nil {
				return err
			}
			a.settings = settings

			cfg, err := settings.Snapshot()
			if err != nil {
				return err
			}

			a.logger = logging.Setup(logging.Options{
				Verbose:    a.flags.Verbose,
				Quiet:      a.flags.Quiet,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAgeDays,
			})

			return nil
		},
		// We print our own error messages.
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, a.flags)

	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	a := &app{flags: &GlobalFlags{}}
	cmd := newRootCmd(a, info)
	return cmd.ExecuteContext(ctx)
}
