package tools

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/fsops"
	"github.com/masonbuild/mason/internal/logging"
)

// GitOp selects the git sub-operation.
type GitOp int

const (
	// GitClone clones the repository, skipping when a checkout exists.
	GitClone GitOp = iota + 1
	// GitPull pulls into an existing checkout.
	GitPull
	// GitCloneOrPull clones when no checkout exists and pulls
	// otherwise, keyed on the presence of the .git directory.
	GitCloneOrPull
)

// Git fetches a repository into a destination directory. Configure it
// with the builder methods, then hand it to the engine's RunTool.
type Git struct {
	op     GitOp
	binary string

	url    string
	branch string
	output string

	shallow   bool
	wipeFirst bool

	timeout time.Duration
	grace   time.Duration

	mu          sync.Mutex
	proc        *Process
	interrupted bool
}

// NewGit creates a git tool performing the given operation with the
// "git" binary from PATH.
func NewGit(op GitOp) *Git {
	return &Git{
		op:      op,
		binary:  "git",
		shallow: true,
		grace:   5 * time.Second,
	}
}

// Binary overrides the git binary.
func (g *Git) Binary(binary string) *Git {
	g.binary = binary
	return g
}

// URL sets the repository to fetch. Required.
func (g *Git) URL(url string) *Git {
	g.url = url
	return g
}

// Branch sets the branch to clone or pull.
func (g *Git) Branch(branch string) *Git {
	g.branch = branch
	return g
}

// Output sets the destination directory. Required.
func (g *Git) Output(dir string) *Git {
	g.output = dir
	return g
}

// Shallow controls whether clones are depth-1.
func (g *Git) Shallow(shallow bool) *Git {
	g.shallow = shallow
	return g
}

// WipeFirst deletes the destination before fetching; callers set it
// from the redownload/reextract switches.
func (g *Git) WipeFirst(wipe bool) *Git {
	g.wipeFirst = wipe
	return g
}

// Timeout bounds each git invocation. Zero means no limit.
func (g *Git) Timeout(d time.Duration) *Git {
	g.timeout = d
	return g
}

// Grace sets the SIGTERM-to-SIGKILL grace period for interruption.
func (g *Git) Grace(d time.Duration) *Git {
	g.grace = d
	return g
}

// Name implements the Tool contract.
func (g *Git) Name() string {
	return "git"
}

// Run validates the configuration, optionally wipes the destination,
// then performs the configured operation.
func (g *Git) Run(ctx context.Context, cx *logging.Context) error {
	if g.url == "" || g.output == "" {
		return masonerrors.Wrap(masonerrors.ErrToolMisconfigured, "git missing parameters")
	}

	if g.wipeFirst {
		cx.Trace().Str("path", g.output).Msg("deleting directory controlled by git")
		if err := fsops.DeleteDirectory(cx, g.output, fsops.Optional); err != nil {
			return err
		}
	}

	switch g.op {
	case GitClone:
		_, err := g.doClone(ctx, cx)
		return err

	case GitPull:
		return g.doPull(ctx, cx)

	case GitCloneOrPull:
		cloned, err := g.doClone(ctx, cx)
		if err != nil || cloned {
			return err
		}
		return g.doPull(ctx, cx)

	default:
		return masonerrors.Wrapf(masonerrors.ErrToolMisconfigured, "git unknown op %d", g.op)
	}
}

// Interrupt forwards to whichever git process is currently running.
func (g *Git) Interrupt() {
	g.mu.Lock()
	g.interrupted = true
	proc := g.proc
	g.mu.Unlock()

	if proc != nil {
		proc.Interrupt()
	}
}

// doClone clones the repository. It reports false without error when a
// checkout already exists, so clone-or-pull can fall through to pull.
func (g *Git) doClone(ctx context.Context, cx *logging.Context) (bool, error) {
	dotGit := filepath.Join(g.output, ".git")
	if _, err := os.Stat(dotGit); err == nil {
		cx.Trace().Str("path", dotGit).Msg("not cloning, checkout exists")
		return false, nil
	}

	return true, g.runProcess(ctx, cx, NewProcess(g.binary, g.cloneArgs()...))
}

func (g *Git) doPull(ctx context.Context, cx *logging.Context) error {
	proc := NewProcess(g.binary, g.pullArgs()...).Dir(g.output)
	return g.runProcess(ctx, cx, proc)
}

func (g *Git) cloneArgs() []string {
	args := []string{"clone", "--recurse-submodules", "--quiet",
		"-c", "advice.detachedHead=false"}

	if g.shallow {
		args = append(args, "--depth", "1")
	}
	if g.branch != "" {
		args = append(args, "--branch", g.branch)
	}

	return append(args, g.url, g.output)
}

func (g *Git) pullArgs() []string {
	args := []string{"pull", "--recurse-submodules", "--quiet", g.url}

	if g.branch != "" {
		args = append(args, g.branch)
	}

	return args
}

func (g *Git) runProcess(ctx context.Context, cx *logging.Context, proc *Process) error {
	proc.StderrLevel(zerolog.TraceLevel).Timeout(g.timeout).Grace(g.grace)

	g.mu.Lock()
	if g.interrupted {
		g.mu.Unlock()
		return masonerrors.ErrInterrupted
	}
	g.proc = proc
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.proc = nil
		g.mu.Unlock()
	}()

	return proc.Run(ctx, cx)
}
