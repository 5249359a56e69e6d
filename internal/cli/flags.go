package cli

import (
	"github.com/spf13/cobra"

	"github.com/masonbuild/mason/internal/config"
	masonerrors "github.com/masonbuild/mason/internal/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a failed or interrupted build.
	ExitError = 1
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables trace-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// AddGlobalFlags adds global flags to the root command. These are
// available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// ValidOutputFormats returns the accepted --output values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is accepted.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// buildFlagKeys maps build command flags to their configuration keys.
// Only flags the user actually set override the configuration layers
// below them.
var buildFlagKeys = map[string]string{ //nolint:gochecknoglobals // static flag-to-key table
	"clean":       "global.clean",
	"redownload":  "global.redownload",
	"reextract":   "global.reextract",
	"reconfigure": "global.reconfigure",
	"rebuild":     "global.rebuild",
}

// addBuildFlags registers the per-build switches on the build command.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clean", false, "run the clean phase before fetching")
	cmd.Flags().Bool("redownload", false, "delete checkouts and fetch from scratch (implies --clean)")
	cmd.Flags().Bool("reextract", false, "re-extract downloaded archives (implies --clean)")
	cmd.Flags().Bool("reconfigure", false, "re-run configuration (implies --clean)")
	cmd.Flags().Bool("rebuild", false, "rebuild from scratch (implies --clean)")
	cmd.Flags().Bool("no-fetch", false, "skip the fetch phase")
	cmd.Flags().Bool("no-build", false, "skip the build and install phase")
}

// applyBuildFlags pushes flags the user set into the settings, the top
// of the precedence stack. The individual clean switches imply the
// clean phase itself.
func applyBuildFlags(cmd *cobra.Command, settings *config.Settings) error {
	for flag, key := range buildFlagKeys {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		value, err := cmd.Flags().GetBool(flag)
		if err != nil {
			return masonerrors.Wrapf(masonerrors.ErrConfigInvalid, "flag --%s: %v", flag, err)
		}
		settings.Set(key, value)
		if value && key != "global.clean" {
			settings.Set("global.clean", true)
		}
	}

	if cmd.Flags().Changed("no-fetch") {
		noFetch, err := cmd.Flags().GetBool("no-fetch")
		if err != nil {
			return masonerrors.Wrapf(masonerrors.ErrConfigInvalid, "flag --no-fetch: %v", err)
		}
		settings.Set("global.fetch", !noFetch)
	}

	if cmd.Flags().Changed("no-build") {
		noBuild, err := cmd.Flags().GetBool("no-build")
		if err != nil {
			return masonerrors.Wrapf(masonerrors.ErrConfigInvalid, "flag --no-build: %v", err)
		}
		settings.Set("global.build", !noBuild)
	}

	return nil
}
