package tasks

import (
	"context"
	"path/filepath"

	"github.com/masonbuild/mason/internal/config"
	"github.com/masonbuild/mason/internal/task"
)

// RegisterAll registers every known component with the coordinator.
// Registration order is execution order for a full build.
func RegisterAll(coord *task.Coordinator, settings *config.Settings) {
	task.New(coord, settings, newLibffi(settings), "libffi")
	task.New(coord, settings, newBoostDI(settings),
		"boost-di", "boostdi", "boost_di")
}

// newLibffi builds the libffi component. The checkout carries
// ready-made headers and libraries, so installing is copying them
// under the prefix; its patch set lives in the regular per-task patch
// directory, not the prebuilt one.
func newLibffi(settings *config.Settings) *component {
	return &component{
		settings: settings,
		dir:      "libffi",
		url:      "https://github.com/python/cpython-bin-deps",
		branch:   "libffi",
		install:  installLibffi,
	}
}

func installLibffi(ctx context.Context, t *task.Task, sourceDir, prefixDir string) error {
	if err := copyTree(ctx, t, sourceDir, filepath.Join(prefixDir, "include"),
		hasExt(".h")); err != nil {
		return err
	}

	return copyTree(ctx, t, sourceDir, filepath.Join(prefixDir, "lib"),
		hasExt(".a", ".lib", ".so", ".dll", ".dylib"))
}

// newBoostDI builds the boost-di component, a header-only library:
// install copies the headers under the prefix.
func newBoostDI(settings *config.Settings) *component {
	return &component{
		settings: settings,
		dir:      "boost-di",
		url:      "https://github.com/boost-ext/di",
		branch:   "cpp14",
		install:  installBoostDI,
	}
}

func installBoostDI(ctx context.Context, t *task.Task, sourceDir, prefixDir string) error {
	return copyTree(ctx, t, filepath.Join(sourceDir, "include"),
		filepath.Join(prefixDir, "include"), hasExt(".hpp"))
}
