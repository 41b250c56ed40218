// Package schedule decides when a new beacon is due. Observations that
// arrive during the cooldown window after a publish are dropped; dropped
// admissions are normal backpressure, not failures.
package schedule

import (
	"sync"
	"time"
)

// Scheduler owns the last-published anchor. It starts in the
// never-published state, so the first observation after process start is
// always admitted. Safe for concurrent use; the mutex serializes
// admission decisions when the transport delivers messages from its own
// goroutines.
type Scheduler struct {
	minInterval int64 // whole seconds

	mu            sync.Mutex
	published     bool
	lastPublished int64 // unix seconds of the last admitted observation
}

// New returns a Scheduler with the given minimum interval between
// beacons. Sub-second fractions of the interval are discarded.
func New(minInterval time.Duration) *Scheduler {
	return &Scheduler{minInterval: int64(minInterval / time.Second)}
}

// Admit reports whether an observation timestamped t (unix seconds) may
// be published, and if so resets the cooldown anchor to t. Each
// observation is evaluated independently; rejected observations are not
// buffered.
func (s *Scheduler) Admit(t int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.published && t-s.lastPublished < s.minInterval {
		return false
	}
	s.published = true
	s.lastPublished = t
	return true
}

// LastPublished returns the current cooldown anchor and whether any
// observation has been admitted since startup.
func (s *Scheduler) LastPublished() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPublished, s.published
}
