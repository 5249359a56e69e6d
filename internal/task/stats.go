package task

import (
	"sync"
	"time"
)

// PhaseTiming records how long one phase of one task took.
type PhaseTiming struct {
	Task     string
	Phase    string
	Duration time.Duration
}

// Stats collects per-task per-phase durations for the build summary.
// Safe for concurrent use; parallel children record through the same
// collector.
type Stats struct {
	mu      sync.Mutex
	timings []PhaseTiming
}

// NewStats creates an empty collector.
func NewStats() *Stats {
	return &Stats{}
}

// Record adds one timing entry.
func (s *Stats) Record(task, phase string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings = append(s.timings, PhaseTiming{Task: task, Phase: phase, Duration: d})
}

// Timings returns a copy of all recorded entries, in recording order.
func (s *Stats) Timings() []PhaseTiming {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PhaseTiming, len(s.timings))
	copy(out, s.timings)
	return out
}

// TotalFor returns the summed duration of every phase recorded for the
// given task.
func (s *Stats) TotalFor(task string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total time.Duration
	for _, pt := range s.timings {
		if pt.Task == task {
			total += pt.Duration
		}
	}
	return total
}
