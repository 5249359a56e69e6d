// Package errors provides centralized error handling for mason.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be
// checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrInterrupted indicates that the current task was asked to stop
	// cooperatively. It is raised at phase boundaries and around tool
	// invocations, and is absorbed at the RunningFromThread boundary;
	// it is never reported as a build failure.
	ErrInterrupted = errors.New("interrupted")

	// ErrBailedOut indicates an unrecoverable failure that must abort
	// the entire build, not just the current task. The RunningFromThread
	// boundary escalates it into Coordinator.InterruptAll.
	ErrBailedOut = errors.New("bailed out")

	// ErrInvalidPattern indicates that a user-supplied task selection
	// pattern could not be compiled. The selection cannot be honored,
	// so the whole run must abort rather than silently matching nothing.
	ErrInvalidPattern = errors.New("invalid task name pattern")

	// ErrToolMisconfigured indicates that a tool was invoked without a
	// required parameter (e.g. a git tool with no URL or destination).
	ErrToolMisconfigured = errors.New("tool misconfigured")

	// ErrToolFailed indicates that an external tool ran but did not
	// succeed (non-zero exit, patch apply failure, etc.).
	ErrToolFailed = errors.New("tool failed")

	// ErrCommandFailed indicates that a spawned command failed to start
	// or exited with a non-zero status.
	ErrCommandFailed = errors.New("command failed")

	// ErrFileOperation indicates that a filesystem operation (touch,
	// copy, delete) failed.
	ErrFileOperation = errors.New("file operation failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrNoTasksMatched indicates that a task selection pattern was
	// valid but matched no registered task.
	ErrNoTasksMatched = errors.New("no tasks matched")
)
