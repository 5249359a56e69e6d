// Package task provides the task execution and concurrency engine for
// mason: the per-task lifecycle state machine (clean → fetch →
// build/install), cooperative interruption, the parallel composite and
// worker-pool runner, and the name matching used to select tasks.
//
// Import rules:
//   - CAN import: internal/errors, internal/logging, std lib, zerolog, x/sync
//   - MUST NOT import: internal/tools, internal/config, internal/cli
package task

// Conf supplies the switches the engine reads at phase boundaries.
//
// Implementations must re-read the underlying configuration on every
// call rather than snapshotting at run start; configuration is
// effectively immutable for the duration of one build, so fresh reads
// keep phase decisions consistent without any caching layer.
type Conf interface {
	// Clean reports whether the clean phase runs at all.
	Clean() bool
	// Fetch reports whether the fetch phase runs at all.
	Fetch() bool
	// Build reports whether the build/install phase runs at all.
	Build() bool

	// Redownload, Reextract, Reconfigure and Rebuild each contribute
	// one clean flag when Clean is on.
	Redownload() bool
	Reextract() bool
	Reconfigure() bool
	Rebuild() bool

	// Parallelism bounds how many workers a Parallel call may use when
	// the caller does not pick a limit itself. Zero means one worker
	// per closure.
	Parallelism() int

	// TaskEnabled reports whether the task with the given aliases is
	// enabled. Tasks default to enabled when no override exists.
	TaskEnabled(names []string) bool
}
