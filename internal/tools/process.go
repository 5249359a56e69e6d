// Package tools provides the external tools build tasks run: a shared
// process runner plus the git and patcher adapters. Every tool follows
// the same shape — validate parameters, optionally reset state, branch
// on a small set of sub-operations — and exposes Run/Interrupt/Name so
// the engine can treat them uniformly.
//
// Import rules:
//   - CAN import: internal/errors, internal/fsops, internal/logging, std lib, zerolog
//   - MUST NOT import: internal/task, internal/config, internal/cli
package tools

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/logging"
)

// execCommand abstracts process creation so tests can stub out the
// actual spawning. Production code always uses newExecCmd.
type execCmd interface {
	Start() error
	Wait() error
	StdoutPipe() (io.ReadCloser, error)
	StderrPipe() (io.ReadCloser, error)
	Signal(sig syscall.Signal) error
}

// Process runs one external command, streaming its output line by line
// to the task's logging context. Interrupt sends SIGTERM and escalates
// to SIGKILL after a grace period, the cooperative two-phase shutdown
// every tool shares.
type Process struct {
	binary string
	args   []string
	dir    string
	env    []string

	stdoutLevel zerolog.Level
	stderrLevel zerolog.Level

	timeout time.Duration
	grace   time.Duration

	mu          sync.Mutex
	cmd         execCmd
	interrupted bool

	// newCmd is replaced in tests.
	newCmd func(ctx context.Context) execCmd
}

// NewProcess creates a runner for the given binary and arguments.
// Stdout is logged at trace level and stderr at debug level unless
// overridden.
func NewProcess(binary string, args ...string) *Process {
	p := &Process{
		binary:      binary,
		args:        args,
		stdoutLevel: zerolog.TraceLevel,
		stderrLevel: zerolog.DebugLevel,
		grace:       5 * time.Second,
	}
	p.newCmd = p.newExecCmd
	return p
}

// Dir sets the working directory.
func (p *Process) Dir(dir string) *Process {
	p.dir = dir
	return p
}

// Env appends environment variables in KEY=VALUE form; the process
// inherits the parent environment either way.
func (p *Process) Env(env ...string) *Process {
	p.env = append(p.env, env...)
	return p
}

// StderrLevel overrides the level stderr lines are logged at. Tools
// whose stderr is chatty but harmless lower it to trace.
func (p *Process) StderrLevel(level zerolog.Level) *Process {
	p.stderrLevel = level
	return p
}

// Timeout bounds the whole invocation. Zero means no limit.
func (p *Process) Timeout(d time.Duration) *Process {
	p.timeout = d
	return p
}

// Grace sets how long the process gets between SIGTERM and SIGKILL.
func (p *Process) Grace(d time.Duration) *Process {
	p.grace = d
	return p
}

// String returns the command line for logging.
func (p *Process) String() string {
	return p.binary + " " + strings.Join(p.args, " ")
}

// Run starts the process and blocks until it exits, streaming output
// to cx. It returns ErrInterrupted when the process was interrupted
// and ErrCommandFailed for any other failure.
func (p *Process) Run(ctx context.Context, cx *logging.Context) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.mu.Lock()
	if p.interrupted {
		p.mu.Unlock()
		return masonerrors.ErrInterrupted
	}
	p.mu.Unlock()

	cx.Trace().Str("cmd", p.String()).Msg("spawning process")

	cmd := p.newCmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return masonerrors.Wrapf(masonerrors.ErrCommandFailed, "%s: %v", p.binary, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return masonerrors.Wrapf(masonerrors.ErrCommandFailed, "%s: %v", p.binary, err)
	}

	p.mu.Lock()
	if p.interrupted {
		p.mu.Unlock()
		return masonerrors.ErrInterrupted
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return masonerrors.Wrapf(masonerrors.ErrCommandFailed, "starting %s: %v", p.binary, err)
	}
	p.cmd = cmd
	p.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go p.streamLines(&wg, cx, stdout, p.stdoutLevel)
	go p.streamLines(&wg, cx, stderr, p.stderrLevel)
	wg.Wait()

	err = cmd.Wait()

	p.mu.Lock()
	p.cmd = nil
	interrupted := p.interrupted
	p.mu.Unlock()

	switch {
	case interrupted || stderrors.Is(ctx.Err(), context.Canceled):
		return masonerrors.ErrInterrupted
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return masonerrors.Wrapf(masonerrors.ErrCommandFailed, "%s: timed out after %s", p.String(), p.timeout)
	case err != nil:
		return masonerrors.Wrapf(masonerrors.ErrCommandFailed, "%s: %v", p.String(), err)
	default:
		return nil
	}
}

// Interrupt asks the running process to stop: SIGTERM immediately,
// SIGKILL after the grace period if it is still alive. Safe to call
// from any goroutine, before, during or after Run.
func (p *Process) Interrupt() {
	p.mu.Lock()
	p.interrupted = true
	cmd := p.cmd
	grace := p.grace
	p.mu.Unlock()

	if cmd == nil {
		return
	}

	if err := cmd.Signal(syscall.SIGTERM); err != nil {
		// Already gone, or signalling failed: go straight to SIGKILL.
		_ = cmd.Signal(syscall.SIGKILL)
		return
	}

	go func() {
		time.Sleep(grace)

		p.mu.Lock()
		still := p.cmd
		p.mu.Unlock()

		if still == cmd {
			_ = cmd.Signal(syscall.SIGKILL)
		}
	}()
}

func (p *Process) streamLines(wg *sync.WaitGroup, cx *logging.Context, r io.Reader, level zerolog.Level) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	logger := cx.Logger()
	for scanner.Scan() {
		logger.WithLevel(level).Msg(scanner.Text())
	}
}
