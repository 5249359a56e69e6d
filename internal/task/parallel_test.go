package task_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/task"
)

func TestParallelTasks_RunsAllChildren(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()

	var running atomic.Int32
	var peak atomic.Int32

	hooks := make([]*concurrencyProbe, 4)
	children := make([]*task.Task, 4)
	for i, name := range []string{"a", "b", "c", "d"} {
		hooks[i] = &concurrencyProbe{running: &running, peak: &peak}
		children[i] = task.New(coord, conf, hooks[i], name)
	}

	p := task.NewParallel(coord, conf, children...)
	require.NoError(t, p.Run(context.Background()))

	for i, h := range hooks {
		assert.Equal(t, int32(1), h.fetches.Load(), "child %d did not run", i)
	}

	// All goroutines have been joined: nothing is still running.
	assert.Equal(t, int32(0), running.Load())
	assert.Equal(t, len(children), len(p.Children()))
}

func TestParallelTasks_AlwaysEnabled(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := &fakeConf{fetch: true, disabled: map[string]bool{task.ParallelName: true}}

	p := task.NewParallel(coord, conf)
	assert.True(t, p.Enabled(), "a composite cannot be disabled")
}

func TestParallelTasks_InterruptBeforeRun(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()

	hooks := []*hookRecorder{{}, {}}
	a := task.New(coord, conf, hooks[0], "a")
	b := task.New(coord, conf, hooks[1], "b")
	p := task.NewParallel(coord, conf, a, b)

	p.Interrupt()

	assert.True(t, a.Interrupted())
	assert.True(t, b.Interrupted())

	// Running after the interrupt: every child notices at its first
	// checkpoint and no fetch hook runs.
	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, hooks[0].Calls())
	assert.Empty(t, hooks[1].Calls())
}

func TestParallelTasks_ChildrenHiddenFromSelection(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()

	visible := task.New(coord, conf, nil, "visible")
	child := task.New(coord, conf, nil, "secret")
	task.NewParallel(coord, conf, child)

	names := []string{}
	for _, tk := range coord.Tasks() {
		names = append(names, tk.Name())
	}
	assert.Equal(t, []string{"visible"}, names)
	_ = visible

	matched, err := coord.Find("*")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "visible", matched[0].Name())
}

func TestParallelTasks_BailOutInChild(t *testing.T) {
	t.Parallel()

	// A tool bails out inside one parallel child: InterruptAll runs
	// exactly once and every sibling's interruption flag is set.
	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()

	bailing := &hookRecorder{fetchErr: masonerrors.Wrap(masonerrors.ErrBailedOut, "unrecoverable")}
	blocked := newBlockingTool("slow")
	sibling := &toolRunningHooks{tool: blocked}

	a := task.New(coord, conf, bailing, "a")
	b := task.New(coord, conf, sibling, "b")
	p := task.NewParallel(coord, conf, a, b)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, coord.Interruptions())
	assert.True(t, a.Interrupted())
	assert.True(t, b.Interrupted())
}

// concurrencyProbe counts concurrent fetches to verify children really
// run and are joined.
type concurrencyProbe struct {
	task.NopHooks
	running *atomic.Int32
	peak    *atomic.Int32
	fetches atomic.Int32
}

func (p *concurrencyProbe) Fetch(context.Context, *task.Task) error {
	n := p.running.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	p.fetches.Add(1)
	p.running.Add(-1)
	return nil
}

// toolRunningHooks runs a (blocking) tool during fetch, so interruption
// fan-out has something to reach.
type toolRunningHooks struct {
	task.NopHooks
	tool task.Tool
}

func (h *toolRunningHooks) Fetch(ctx context.Context, t *task.Task) error {
	return t.RunTool(ctx, h.tool)
}
