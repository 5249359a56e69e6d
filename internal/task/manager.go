package task

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	masonerrors "github.com/masonbuild/mason/internal/errors"
)

// Coordinator is the per-build registry of tasks. It owns the selection
// logic that turns user patterns into tasks, the sequential driver
// loop, and the build-wide abort broadcast. One coordinator lives for
// exactly one build run; independent builds in one process get
// independent coordinators.
type Coordinator struct {
	logger  zerolog.Logger
	patcher Patcher
	stats   *Stats

	mu    sync.Mutex
	tasks []*Task

	interruptions atomic.Int64
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPatcher supplies the factory for the tool that patches a task's
// source tree after fetch. Without it the patch step is skipped.
func WithPatcher(p Patcher) CoordinatorOption {
	return func(c *Coordinator) {
		c.patcher = p
	}
}

// NewCoordinator creates an empty coordinator. Tasks register
// themselves at construction via New.
func NewCoordinator(logger zerolog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		logger: logger,
		stats:  NewStats(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns the per-phase timing collector for this build.
func (c *Coordinator) Stats() *Stats {
	return c.stats
}

// register adds a task to the registry, in registration order. The
// synthetic parallel composite is excluded so it is never shown to the
// user.
func (c *Coordinator) register(t *Task) {
	if t.Name() == ParallelName {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, t)
}

// Tasks returns every registered task visible to selection, in
// registration order.
func (c *Coordinator) Tasks() []*Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if !t.hidden.Load() {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the visible tasks whose aliases match the pattern, in
// registration order. A malformed pattern returns ErrInvalidPattern;
// the run must abort rather than treat it as a non-match.
func (c *Coordinator) Find(pattern string) ([]*Task, error) {
	var out []*Task

	for _, t := range c.Tasks() {
		ok, err := t.NameMatches(pattern)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}

	return out, nil
}

// InterruptAll interrupts every registered task, hidden ones included,
// so a build-wide abort reaches children running inside parallel
// composites.
func (c *Coordinator) InterruptAll() {
	c.interruptions.Add(1)

	c.mu.Lock()
	snapshot := make([]*Task, len(c.tasks))
	copy(snapshot, c.tasks)
	c.mu.Unlock()

	c.logger.Debug().Int("tasks", len(snapshot)).Msg("interrupting all tasks")

	for _, t := range snapshot {
		t.Interrupt()
	}
}

// Interrupted reports whether InterruptAll has been called.
func (c *Coordinator) Interrupted() bool {
	return c.interruptions.Load() > 0
}

// Interruptions returns how many times InterruptAll has been called.
func (c *Coordinator) Interruptions() int {
	return int(c.interruptions.Load())
}

// RunAll resolves the given patterns against the registry and runs
// each selected task in turn on the calling goroutine. With no
// patterns, every visible task runs in registration order.
//
// It stops early once the build has been interrupted and reports the
// build as failed when the interruption came from a bail-out or an
// external signal rather than normal completion.
func (c *Coordinator) RunAll(ctx context.Context, patterns []string) error {
	selected, err := c.selectTasks(patterns)
	if err != nil {
		return err
	}

	for _, t := range selected {
		if c.Interrupted() {
			break
		}

		if err := t.RunningFromThread(ctx, t.Name(), t.Run); err != nil {
			return masonerrors.Wrapf(err, "task %s", t.Name())
		}
	}

	if c.Interrupted() {
		return masonerrors.Wrap(masonerrors.ErrInterrupted, "build aborted")
	}

	return nil
}

// selectTasks turns patterns into a duplicate-free task list,
// preserving registration order.
func (c *Coordinator) selectTasks(patterns []string) ([]*Task, error) {
	if len(patterns) == 0 {
		return c.Tasks(), nil
	}

	seen := make(map[string]bool)
	var out []*Task

	for _, pattern := range patterns {
		matched, err := c.Find(pattern)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return nil, masonerrors.Wrapf(masonerrors.ErrNoTasksMatched, "pattern %q", pattern)
		}

		for _, t := range matched {
			if !seen[t.Name()] {
				seen[t.Name()] = true
				out = append(out, t)
			}
		}
	}

	return out, nil
}
