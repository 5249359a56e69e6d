package task

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/logging"
)

// Hooks supplies the component-specific work for a task. The engine
// decides when each hook runs and with what logging context; the hooks
// decide what fetching or building actually means for one component.
//
// NopHooks can be embedded to implement only the hooks a component
// needs.
type Hooks interface {
	// Clean discards the cached artifacts selected by flags. Called
	// only when the global clean switch is on and at least one flag is
	// set.
	Clean(ctx context.Context, t *Task, flags CleanFlags) error

	// Fetch acquires the component's sources or prebuilt binaries.
	Fetch(ctx context.Context, t *Task) error

	// BuildAndInstall builds the component and installs its outputs.
	BuildAndInstall(ctx context.Context, t *Task) error

	// SourcePath returns the root of the fetched source tree, or ""
	// when the task has none. A non-empty path enables the automatic
	// patch step after fetch.
	SourcePath() string

	// Prebuilt reports whether the task downloads prebuilt binaries
	// instead of sources. Selects the patch set used by the patcher.
	Prebuilt() bool
}

// NopHooks implements Hooks with no-ops.
type NopHooks struct{}

// Clean implements Hooks.
func (NopHooks) Clean(context.Context, *Task, CleanFlags) error { return nil }

// Fetch implements Hooks.
func (NopHooks) Fetch(context.Context, *Task) error { return nil }

// BuildAndInstall implements Hooks.
func (NopHooks) BuildAndInstall(context.Context, *Task) error { return nil }

// SourcePath implements Hooks.
func (NopHooks) SourcePath() string { return "" }

// Prebuilt implements Hooks.
func (NopHooks) Prebuilt() bool { return false }

// Task drives one buildable component through its lifecycle:
// clean → fetch → build/install, each phase gated by global and
// per-task enablement and separated by interruption checks.
//
// A Task is created once at build start and registered with its
// Coordinator (the synthetic parallel composite excepted). Its
// interruption flag may be set any number of times but is never
// cleared.
type Task struct {
	names []string
	conf  Conf
	coord *Coordinator
	hooks Hooks
	cx    *logging.Context

	// Set by Interrupt, read at every checkpoint. Advisory: a phase in
	// progress only notices at its next checkpoint.
	interrupted atomic.Bool

	// Hidden tasks stay registered for interruption fan-out but are
	// invisible to pattern selection. Children of a parallel composite
	// are hidden so internal grouping is not user-addressable.
	hidden atomic.Bool

	// Tools currently executing inside RunTool, so Interrupt can reach
	// every in-flight external process.
	toolsMu sync.Mutex
	tools   map[Tool]struct{}
}

// New creates a task with the given aliases (the first is canonical)
// and registers it with the coordinator.
func New(coord *Coordinator, conf Conf, hooks Hooks, names ...string) *Task {
	if len(names) == 0 {
		panic("task: at least one name is required")
	}
	if hooks == nil {
		hooks = NopHooks{}
	}

	t := newTask(coord, conf, hooks, names)
	coord.register(t)
	return t
}

func newTask(coord *Coordinator, conf Conf, hooks Hooks, names []string) *Task {
	return &Task{
		names: names,
		conf:  conf,
		coord: coord,
		hooks: hooks,
		cx:    logging.New(names[0], coord.logger),
		tools: make(map[Tool]struct{}),
	}
}

// Name returns the task's canonical name.
func (t *Task) Name() string {
	return t.names[0]
}

// Names returns all of the task's aliases, canonical name first.
func (t *Task) Names() []string {
	return t.names
}

// Conf returns the configuration view the task reads its switches from.
// Exposed so hooks can consult the same settings the engine does.
func (t *Task) Conf() Conf {
	return t.conf
}

// Enabled reports whether the task is enabled. Read fresh from
// configuration on every call; disabled tasks short-circuit every
// phase.
func (t *Task) Enabled() bool {
	return t.conf.TaskEnabled(t.names)
}

// Interrupted reports whether the task has been asked to stop.
func (t *Task) Interrupted() bool {
	return t.interrupted.Load()
}

// Cx resolves the logging context for the calling goroutine. If the
// goroutine was started through RunningFromThread its registered
// context wins; otherwise the task's own context, created at
// construction, is returned. Never fails.
func (t *Task) Cx(ctx context.Context) *logging.Context {
	if cx, ok := logging.Lookup(ctx); ok {
		return cx
	}
	return t.cx
}

// Run executes the task's phases in order, with an interruption check
// after each one. A disabled task logs at debug level and returns
// without running any phase.
func (t *Task) Run(ctx context.Context) error {
	if !t.Enabled() {
		t.Cx(ctx).Debug().Msg("task is disabled")
		return nil
	}

	t.Cx(ctx).Info().Msg("running task")

	if err := t.cleanTask(ctx); err != nil {
		return err
	}
	if err := t.CheckInterrupted(ctx); err != nil {
		return err
	}

	if err := t.fetch(ctx); err != nil {
		return err
	}
	if err := t.CheckInterrupted(ctx); err != nil {
		return err
	}

	if err := t.buildAndInstall(ctx); err != nil {
		return err
	}

	return t.CheckInterrupted(ctx)
}

// cleanTask runs the clean hook when the global clean switch is on and
// at least one clean flag is set.
func (t *Task) cleanTask(ctx context.Context) error {
	if !t.conf.Clean() {
		return nil
	}

	if !t.Enabled() {
		t.Cx(ctx).Debug().Msg("cleaning (skipping, task disabled)")
		return nil
	}

	flags := MakeCleanFlags(t.conf)
	if flags.IsZero() {
		return nil
	}

	t.Cx(ctx).Info().Stringer("flags", flags).Msg("cleaning")

	return t.instrument("clean", func() error {
		return t.hooks.Clean(ctx, t, flags)
	})
}

// fetch runs the fetch hook and, for tasks exposing a source path, the
// automatic patch step.
func (t *Task) fetch(ctx context.Context) error {
	if !t.conf.Fetch() {
		return nil
	}

	if !t.Enabled() {
		t.Cx(ctx).Debug().Msg("fetching (skipping, task disabled)")
		return nil
	}

	t.Cx(ctx).Info().Msg("fetching")

	if err := t.instrument("fetch", func() error {
		return t.hooks.Fetch(ctx, t)
	}); err != nil {
		return err
	}

	if err := t.CheckInterrupted(ctx); err != nil {
		return err
	}

	// Post-fetch patching is layered onto every task that has a source
	// tree, so individual tasks never need to remember it.
	sourcePath := t.hooks.SourcePath()
	if sourcePath == "" || t.coord.patcher == nil {
		return nil
	}

	t.Cx(ctx).Debug().Msg("patching")

	return t.RunTool(ctx, t.coord.patcher(t.Name(), t.hooks.Prebuilt(), sourcePath))
}

// buildAndInstall runs the build/install hook.
func (t *Task) buildAndInstall(ctx context.Context) error {
	if !t.conf.Build() {
		return nil
	}

	if !t.Enabled() {
		t.Cx(ctx).Debug().Msg("build and install (skipping, task disabled)")
		return nil
	}

	t.Cx(ctx).Info().Msg("build and install")

	return t.instrument("build", func() error {
		return t.hooks.BuildAndInstall(ctx, t)
	})
}

// Interrupt sets the interruption flag and asks every currently-running
// tool to stop. Idempotent and safe to call from any goroutine,
// including concurrently with RunTool. The tool registry lock is held
// only to snapshot the set, not while the tools' interrupt handlers
// run, so a handler that logs cannot deadlock against RunTool.
func (t *Task) Interrupt() {
	t.interrupted.Store(true)

	t.toolsMu.Lock()
	running := make([]Tool, 0, len(t.tools))
	for tool := range t.tools {
		running = append(running, tool)
	}
	t.toolsMu.Unlock()

	for _, tool := range running {
		tool.Interrupt()
	}
}

// RunTool is the single choke point through which every external
// process invocation passes. The tool is registered for interruption
// fan-out for exactly the duration of the call, with interruption
// checks on both sides of the run.
func (t *Task) RunTool(ctx context.Context, tool Tool) error {
	t.toolsMu.Lock()
	t.tools[tool] = struct{}{}
	t.toolsMu.Unlock()

	defer func() {
		t.toolsMu.Lock()
		delete(t.tools, tool)
		t.toolsMu.Unlock()
	}()

	cx := t.Cx(ctx)
	cx.Debug().Str("tool", tool.Name()).Msg("running tool")

	if err := t.CheckInterrupted(ctx); err != nil {
		return err
	}

	if err := tool.Run(ctx, cx); err != nil {
		return err
	}

	return t.CheckInterrupted(ctx)
}

// CheckInterrupted returns ErrInterrupted if the task has been asked to
// stop, either through its own flag or through cancellation of ctx.
// Called at every phase boundary and around every tool invocation.
func (t *Task) CheckInterrupted(ctx context.Context) error {
	if t.interrupted.Load() || ctx.Err() != nil {
		return masonerrors.ErrInterrupted
	}
	return nil
}

// RunningFromThread runs body on the calling goroutine with a logging
// context registered under threadName; the context's registration ends
// with the call on every exit path.
//
// Two failure kinds are handled here and nowhere else: a bail-out logs
// an error and interrupts every registered task (a build-wide abort),
// and an interruption is absorbed silently (the goroutine simply
// stops). Anything else propagates to the caller; unexpected errors are
// not this layer's concern.
func (t *Task) RunningFromThread(ctx context.Context, threadName string, body func(context.Context) error) error {
	cx := t.cx.Thread(threadName)
	ctx = logging.WithContext(ctx, cx)

	err := body(ctx)

	switch {
	case err == nil:
		return nil

	case stderrors.Is(err, masonerrors.ErrBailedOut):
		cx.Error().Err(err).Msgf("%s bailed out, interrupting all tasks", t.Name())
		t.coord.InterruptAll()
		return nil

	case stderrors.Is(err, masonerrors.ErrInterrupted) || stderrors.Is(err, context.Canceled):
		return nil

	default:
		return err
	}
}

// NamedFunc is one closure in a Parallel call, named for log output.
type NamedFunc struct {
	Name string
	Fn   func(context.Context) error
}

// Parallel runs the given closures on a pool of at most threads
// workers, each wrapped in RunningFromThread with its name. When
// threads is 0 the configured parallelism limit applies, and one
// worker per closure when that is 0 too. It returns after all closures
// have completed; only errors RunningFromThread does not handle are
// returned.
func (t *Task) Parallel(ctx context.Context, fns []NamedFunc, threads int) error {
	if threads == 0 {
		threads = t.conf.Parallelism()
	}

	g, gctx := errgroupWithLimit(ctx, threads)

	for _, nf := range fns {
		t.Cx(ctx).Trace().Str("thread", nf.Name).Msg("running in parallel")

		g.Go(func() error {
			return t.RunningFromThread(gctx, nf.Name, nf.Fn)
		})
	}

	return g.Wait()
}

// instrument times a phase and records it with the coordinator's stats.
func (t *Task) instrument(phase string, fn func() error) error {
	started := time.Now()
	err := fn()
	t.coord.stats.Record(t.Name(), phase, time.Since(started))
	return err
}
