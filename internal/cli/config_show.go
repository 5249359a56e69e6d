package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	masonerrors "github.com/masonbuild/mason/internal/errors"
)

// newConfigCmd creates the config command group.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect mason's configuration",
	}

	cmd.AddCommand(newConfigShowCmd(a))

	return cmd
}

// newConfigShowCmd creates config show: print the fully merged
// configuration, defaults included.
func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show prints the configuration that results from merging all layers:
built-in defaults, the global file, the project file, environment
variables and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, a)
		},
	}
}

func runConfigShow(cmd *cobra.Command, a *app) error {
	cfg, err := a.settings.Snapshot()
	if err != nil {
		return err
	}

	if a.flags.Output == OutputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return masonerrors.Wrapf(masonerrors.ErrConfigInvalid, "rendering config: %v", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
