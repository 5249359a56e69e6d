package tools

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/logging"
)

// Patcher applies a task's local patch set to its source tree, in
// lexical order, after fetch. Patches live under
// <patchesRoot>/<task> — or <patchesRoot>/<task>/prebuilt for tasks
// that download prebuilt binaries — and already-applied patches are
// detected and skipped, so re-running a fetch is idempotent.
type Patcher struct {
	patchesRoot string
	gitBinary   string

	task     string
	prebuilt bool
	root     string

	mu          sync.Mutex
	proc        *Process
	interrupted bool
}

// NewPatcher creates a patcher for one task's source tree.
func NewPatcher(patchesRoot, gitBinary, taskName string, prebuilt bool, sourceRoot string) *Patcher {
	return &Patcher{
		patchesRoot: patchesRoot,
		gitBinary:   gitBinary,
		task:        taskName,
		prebuilt:    prebuilt,
		root:        sourceRoot,
	}
}

// Name implements the Tool contract.
func (p *Patcher) Name() string {
	return "patcher"
}

// Run applies every patch in the task's patch directory. A missing
// directory means the task simply has no patches.
func (p *Patcher) Run(ctx context.Context, cx *logging.Context) error {
	dir := p.patchDir()

	patches, err := listPatches(dir)
	if err != nil {
		return err
	}

	if len(patches) == 0 {
		cx.Trace().Str("dir", dir).Msg("no patches")
		return nil
	}

	cx.Debug().Int("count", len(patches)).Str("dir", dir).Msg("applying patches")

	for _, patch := range patches {
		if err := p.apply(ctx, cx, patch); err != nil {
			return err
		}
	}

	return nil
}

// Interrupt forwards to whichever git process is currently running.
func (p *Patcher) Interrupt() {
	p.mu.Lock()
	p.interrupted = true
	proc := p.proc
	p.mu.Unlock()

	if proc != nil {
		proc.Interrupt()
	}
}

// patchDir returns the directory holding this task's patch set.
func (p *Patcher) patchDir() string {
	dir := filepath.Join(p.patchesRoot, p.task)
	if p.prebuilt {
		dir = filepath.Join(dir, "prebuilt")
	}
	return dir
}

// listPatches returns the *.patch files in dir in lexical order, which
// is why patch sets use a NN- prefix. A missing dir yields no patches.
func listPatches(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, masonerrors.Wrapf(masonerrors.ErrFileOperation, "reading patch dir %s: %v", dir, err)
	}

	var patches []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".patch" {
			patches = append(patches, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(patches)
	return patches, nil
}

// apply applies one patch file, skipping it when it is already in.
func (p *Patcher) apply(ctx context.Context, cx *logging.Context, patch string) error {
	// A patch that reverses cleanly is already applied.
	check := NewProcess(p.gitBinary, "apply", "--reverse", "--check", patch).
		Dir(p.root).StderrLevel(zerolog.TraceLevel)

	if err := p.runProcess(ctx, cx, check); err == nil {
		cx.Debug().Str("patch", filepath.Base(patch)).Msg("patch already applied")
		return nil
	} else if stderrors.Is(err, masonerrors.ErrInterrupted) {
		return err
	}

	cx.Info().Str("patch", filepath.Base(patch)).Msg("applying patch")

	apply := NewProcess(p.gitBinary, "apply", "--whitespace", "nowarn", patch).
		Dir(p.root)

	if err := p.runProcess(ctx, cx, apply); err != nil {
		if stderrors.Is(err, masonerrors.ErrInterrupted) {
			return err
		}
		return masonerrors.Wrapf(masonerrors.ErrToolFailed, "applying %s: %v", patch, err)
	}

	return nil
}

func (p *Patcher) runProcess(ctx context.Context, cx *logging.Context, proc *Process) error {
	p.mu.Lock()
	if p.interrupted {
		p.mu.Unlock()
		return masonerrors.ErrInterrupted
	}
	p.proc = proc
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.proc = nil
		p.mu.Unlock()
	}()

	return proc.Run(ctx, cx)
}
