// Package tasks defines the third-party components mason knows how to
// build and registers them with a coordinator.
//
// Each component is a set of engine hooks over the shared tools: fetch
// is a git clone-or-pull into the build directory, clean removes the
// checkout when a redownload was requested, and install copies the
// component's artifacts under the configured prefix.
//
// Import rules:
//   - CAN import: internal/config, internal/errors, internal/fsops, internal/task, internal/tools, std lib
//   - MUST NOT import: internal/cli
package tasks

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/masonbuild/mason/internal/config"
	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/fsops"
	"github.com/masonbuild/mason/internal/task"
	"github.com/masonbuild/mason/internal/tools"
)

// installFunc installs a fetched component under the prefix. sourceDir
// is the checkout, prefixDir the installation root.
type installFunc func(ctx context.Context, t *task.Task, sourceDir, prefixDir string) error

// component adapts one git-fetched third-party component to the
// engine's hooks.
type component struct {
	settings *config.Settings

	dir      string // checkout directory name under the build root
	url      string
	branch   string
	prebuilt bool

	install installFunc
}

var _ task.Hooks = (*component)(nil)

// SourcePath returns the component's checkout directory.
func (c *component) SourcePath() string {
	return filepath.Join(c.settings.BuildDir(), c.dir)
}

// Prebuilt reports whether the component ships prebuilt binaries.
func (c *component) Prebuilt() bool {
	return c.prebuilt
}

// Clean removes the checkout when a redownload was requested, so the
// next fetch starts from nothing.
func (c *component) Clean(ctx context.Context, t *task.Task, flags task.CleanFlags) error {
	if !flags.Redownload {
		return nil
	}

	cx := t.Cx(ctx)
	cx.Debug().Str("path", c.SourcePath()).Msg("redownload requested, deleting checkout")
	return fsops.DeleteDirectory(cx, c.SourcePath(), fsops.Optional)
}

// Fetch clones or pulls the component's repository.
func (c *component) Fetch(ctx context.Context, t *task.Task) error {
	op := tools.GitCloneOrPull
	if c.settings.NoPull() {
		op = tools.GitClone
	}

	g := tools.NewGit(op).
		Binary(c.settings.GitBinary()).
		URL(c.url).
		Branch(c.branch).
		Output(c.SourcePath()).
		Shallow(c.settings.Shallow()).
		WipeFirst(c.settings.Redownload() || c.settings.Reextract()).
		Timeout(c.settings.ToolTimeout()).
		Grace(c.settings.GracePeriod())

	return t.RunTool(ctx, g)
}

// BuildAndInstall runs the component's install step.
func (c *component) BuildAndInstall(ctx context.Context, t *task.Task) error {
	if c.install == nil {
		return nil
	}
	return c.install(ctx, t, c.SourcePath(), c.settings.PrefixDir())
}

// copyTree copies every file under sourceDir matching match into the
// corresponding directory under destDir, skipping files that are
// already up to date.
func copyTree(ctx context.Context, t *task.Task, sourceDir, destDir string, match func(name string) bool) error {
	cx := t.Cx(ctx)

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if interrupted := t.CheckInterrupted(ctx); interrupted != nil {
			return interrupted
		}
		if d.IsDir() || !match(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		return fsops.CopyFileToDirIfBetter(cx, path, filepath.Join(destDir, filepath.Dir(rel)), fsops.NoFlags)
	})
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, masonerrors.ErrInterrupted),
		stderrors.Is(err, masonerrors.ErrFileOperation):
		return err
	default:
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "copying %s to %s: %v", sourceDir, destDir, err)
	}
}

func hasExt(exts ...string) func(name string) bool {
	return func(name string) bool {
		ext := filepath.Ext(name)
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}
