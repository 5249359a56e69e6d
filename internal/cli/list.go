package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/masonbuild/mason/internal/task"
	"github.com/masonbuild/mason/internal/tasks"
)

// taskInfo is the JSON shape of one listed task.
type taskInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Enabled bool     `json:"enabled"`
}

// newListCmd creates the list command: show the known tasks, optionally
// filtered by patterns.
func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [patterns...]",
		Short: "List known tasks",
		Long: `List prints every task mason knows how to build, with its aliases and
whether it is enabled by the current configuration. Patterns filter the
list the same way they select tasks for a build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, args)
		},
	}
}

func runList(cmd *cobra.Command, a *app, patterns []string) error {
	coord := task.NewCoordinator(a.logger)
	tasks.RegisterAll(coord, a.settings)

	selected, err := selectListed(coord, patterns)
	if err != nil {
		return err
	}

	infos := make([]taskInfo, 0, len(selected))
	for _, t := range selected {
		infos = append(infos, taskInfo{
			Name:    t.Name(),
			Aliases: t.Names()[1:],
			Enabled: t.Enabled(),
		})
	}

	if a.flags.Output == OutputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, info := range infos {
		line := info.Name
		if len(info.Aliases) > 0 {
			line += " (" + strings.Join(info.Aliases, ", ") + ")"
		}
		if !info.Enabled {
			line += " [disabled]"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	return nil
}

// selectListed resolves patterns against the registry, keeping
// registration order and deduplicating tasks matched more than once.
func selectListed(coord *task.Coordinator, patterns []string) ([]*task.Task, error) {
	if len(patterns) == 0 {
		return coord.Tasks(), nil
	}

	seen := make(map[string]struct{})
	var selected []*task.Task
	for _, pattern := range patterns {
		matched, err := coord.Find(pattern)
		if err != nil {
			return nil, err
		}
		for _, t := range matched {
			if _, ok := seen[t.Name()]; ok {
				continue
			}
			seen[t.Name()] = struct{}{}
			selected = append(selected, t)
		}
	}

	return selected, nil
}
