package task

import (
	"context"

	"github.com/masonbuild/mason/internal/logging"
)

// Tool is a unit of external work a task runs, typically a process
// invocation. Concrete tools live outside this package; the engine only
// needs to start them with the right logging context and reach them
// when the task is interrupted.
type Tool interface {
	// Name identifies the tool for logging.
	Name() string

	// Run performs the work, logging through cx. It returns an error
	// wrapped with a tool-specific sentinel on failure.
	Run(ctx context.Context, cx *logging.Context) error

	// Interrupt asks the tool to stop, typically by terminating its
	// child process. It may be called from any goroutine, at any time,
	// including concurrently with Run. Honoring it is cooperative.
	Interrupt()
}

// Patcher produces the tool that applies local patches to a task's
// source tree after fetch. prebuilt selects the patch set for tasks
// that download prebuilt binaries instead of sources.
type Patcher func(taskName string, prebuilt bool, sourceRoot string) Tool
