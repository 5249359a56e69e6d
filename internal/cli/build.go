package cli

import (
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/signal"
	"github.com/masonbuild/mason/internal/task"
	"github.com/masonbuild/mason/internal/tasks"
	"github.com/masonbuild/mason/internal/tools"
)

// newBuildCmd creates the build command: run the task lifecycle for
// every task matching the given patterns, or for all tasks.
func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [patterns...]",
		Short: "Fetch, build and install components",
		Long: `Build runs the clean/fetch/build lifecycle for every enabled task whose
name matches one of the given patterns. Patterns match task names and
aliases case-insensitively, with - and _ interchangeable, and may use *
as a wildcard. Without patterns, every enabled task is built.

Ctrl-C interrupts the build: running tools are asked to stop and no
further phases start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, args)
		},
	}

	addBuildFlags(cmd)

	return cmd
}

func runBuild(cmd *cobra.Command, a *app, patterns []string) error {
	if err := applyBuildFlags(cmd, a.settings); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()

	settings := a.settings
	coord := task.NewCoordinator(logger, task.WithPatcher(
		func(taskName string, prebuilt bool, sourceRoot string) task.Tool {
			return tools.NewPatcher(settings.PatchesDir(), settings.GitBinary(),
				taskName, prebuilt, sourceRoot)
		}))

	tasks.RegisterAll(coord, settings)

	h := signal.NewHandler(cmd.Context(), func() {
		logger.Warn().Msg("interrupt received, stopping build")
		coord.InterruptAll()
	})
	defer h.Stop()

	started := time.Now()
	err := coord.RunAll(h.Context(), patterns)
	elapsed := time.Since(started)

	logStats(logger, coord.Stats())

	switch {
	case err == nil:
		logger.Info().Dur("elapsed", elapsed).Msg("build finished")
		return nil
	case stderrors.Is(err, masonerrors.ErrInterrupted):
		logger.Warn().Dur("elapsed", elapsed).Msg("build interrupted")
		return err
	default:
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("build failed")
		return err
	}
}

// logStats emits the per-phase timing summary collected during the run.
func logStats(logger zerolog.Logger, stats *task.Stats) {
	for _, timing := range stats.Timings() {
		logger.Debug().
			Str("task", timing.Task).
			Str("phase", timing.Phase).
			Dur("took", timing.Duration).
			Msg("phase timing")
	}
}
