package task_test

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/masonbuild/mason/internal/logging"
	"github.com/masonbuild/mason/internal/task"
)

// fakeConf is a task.Conf with fixed switch values. Tasks are enabled
// unless one of their aliases appears in disabled.
type fakeConf struct {
	clean, fetch, build                         bool
	redownload, reextract, reconfigure, rebuild bool
	parallelism                                 int
	disabled                                    map[string]bool
}

func (f *fakeConf) Clean() bool       { return f.clean }
func (f *fakeConf) Fetch() bool       { return f.fetch }
func (f *fakeConf) Build() bool       { return f.build }
func (f *fakeConf) Redownload() bool  { return f.redownload }
func (f *fakeConf) Reextract() bool   { return f.reextract }
func (f *fakeConf) Reconfigure() bool { return f.reconfigure }
func (f *fakeConf) Rebuild() bool     { return f.rebuild }
func (f *fakeConf) Parallelism() int  { return f.parallelism }

func (f *fakeConf) TaskEnabled(names []string) bool {
	for _, n := range names {
		if f.disabled[n] {
			return false
		}
	}
	return true
}

// fetchOnlyConf mirrors the common end-to-end scenario: fetch on,
// clean and build off.
func fetchOnlyConf() *fakeConf {
	return &fakeConf{fetch: true}
}

// hookRecorder records which hooks ran and with what clean flags.
type hookRecorder struct {
	task.NopHooks

	mu         sync.Mutex
	calls      []string
	cleanFlags task.CleanFlags

	sourcePath string
	prebuilt   bool

	cleanErr, fetchErr, buildErr error
}

func (h *hookRecorder) record(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, name)
}

func (h *hookRecorder) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *hookRecorder) Clean(_ context.Context, _ *task.Task, flags task.CleanFlags) error {
	h.mu.Lock()
	h.cleanFlags = flags
	h.mu.Unlock()
	h.record("clean")
	return h.cleanErr
}

func (h *hookRecorder) Fetch(context.Context, *task.Task) error {
	h.record("fetch")
	return h.fetchErr
}

func (h *hookRecorder) BuildAndInstall(context.Context, *task.Task) error {
	h.record("build")
	return h.buildErr
}

func (h *hookRecorder) SourcePath() string { return h.sourcePath }
func (h *hookRecorder) Prebuilt() bool     { return h.prebuilt }

// fakeTool is a Tool that counts runs and interrupts, and can block
// inside Run until interrupted or released.
type fakeTool struct {
	name   string
	runErr error

	runs       atomic.Int32
	interrupts atomic.Int32

	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func newFakeTool(name string) *fakeTool {
	return &fakeTool{name: name}
}

// newBlockingTool returns a tool whose Run blocks until Interrupt (or
// releaseNow) is called. started is closed once Run has begun.
func newBlockingTool(name string) *fakeTool {
	return &fakeTool{
		name:    name,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (ft *fakeTool) Name() string { return ft.name }

func (ft *fakeTool) Run(_ context.Context, _ *logging.Context) error {
	ft.runs.Add(1)
	if ft.started != nil {
		ft.startOnce.Do(func() { close(ft.started) })
	}
	if ft.release != nil {
		<-ft.release
	}
	return ft.runErr
}

func (ft *fakeTool) Interrupt() {
	ft.interrupts.Add(1)
	ft.releaseNow()
}

func (ft *fakeTool) releaseNow() {
	if ft.release != nil {
		ft.stopOnce.Do(func() { close(ft.release) })
	}
}

// newTestCoordinator returns a coordinator whose log output is captured
// in the returned buffer.
func newTestCoordinator(opts ...task.CoordinatorOption) (*task.Coordinator, *bytes.Buffer) {
	var buf syncBuffer
	return task.NewCoordinator(zerolog.New(&buf), opts...), &buf.buf
}

// syncBuffer serializes writes so parallel children can share one log
// buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
