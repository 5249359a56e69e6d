package task

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelName is the canonical name of the synthetic parallel
// composite. Tasks with this name are never registered with the
// coordinator.
const ParallelName = "parallel"

// ParallelTasks is a composite task whose children run concurrently,
// each on its own goroutine. The composite itself is invisible to task
// selection and cannot be disabled; its children are registered with
// the coordinator as hidden tasks so interruption fan-out reaches them
// but pattern selection does not surface them.
type ParallelTasks struct {
	*Task
	children []*Task
}

// NewParallel creates a composite over the given children. The children
// must already be registered with the same coordinator; NewParallel
// hides them from selection.
func NewParallel(coord *Coordinator, conf Conf, children ...*Task) *ParallelTasks {
	p := &ParallelTasks{
		Task:     newTask(coord, conf, NopHooks{}, []string{ParallelName}),
		children: children,
	}

	for _, c := range children {
		c.hidden.Store(true)
	}

	return p
}

// Children returns the composite's child tasks.
func (p *ParallelTasks) Children() []*Task {
	return p.children
}

// Enabled always reports true: a composite cannot itself be disabled,
// only its children can.
func (p *ParallelTasks) Enabled() bool {
	return true
}

// Run starts one goroutine per child, each wrapped in
// RunningFromThread under the child's name so its log output is
// attributed correctly, and joins them all before returning.
func (p *ParallelTasks) Run(ctx context.Context) error {
	g, gctx := errgroupWithLimit(ctx, 0)

	for _, child := range p.children {
		g.Go(func() error {
			return p.RunningFromThread(gctx, child.Name(), child.Run)
		})
	}

	return g.Wait()
}

// Interrupt forwards to every child rather than only setting the
// composite's own flag, so interruption reaches deeply nested
// composites.
func (p *ParallelTasks) Interrupt() {
	p.Task.Interrupt()

	for _, child := range p.children {
		child.Interrupt()
	}
}

// errgroupWithLimit returns an errgroup bounded to the given number of
// concurrent workers; 0 means unbounded.
func errgroupWithLimit(ctx context.Context, limit int) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return g, gctx
}
