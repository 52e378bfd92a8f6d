// Package sink collects metric events from concurrent agents.
package sink

import (
	"sync"
	"time"

	"crowdsim/internal/core"
)

// Sink is a concurrency-safe append-only store for metric events. A single
// mutex guards appends, keeping the critical section to one slice append.
//
// Drain semantics: Drain holds the same mutex while it takes its snapshot, so
// a Record racing a drain blocks until the drain completes and its event is
// retained for the next snapshot. No event is ever dropped or delivered
// twice.
type Sink struct {
	mu        sync.Mutex
	events    []core.Event
	total     int
	failed    int
	startTime time.Time
	endTime   time.Time
}

// New creates an empty Sink.
func New() *Sink {
	return &Sink{
		events:    make([]core.Event, 0, 1024),
		startTime: time.Now(),
	}
}

// Record appends an event. Safe to call from arbitrarily many agents.
func (s *Sink) Record(e core.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.total++
	switch ev := e.(type) {
	case core.RequestOutcome:
		if !ev.Success {
			s.failed++
		}
	case core.SearchOutcome:
		if !ev.Success {
			s.failed++
		}
	case core.AgentFatal:
		s.failed++
	}
	s.mu.Unlock()
}

// Report implements core.Reporter.
func (s *Sink) Report(e core.Event) { s.Record(e) }

// Drain returns all events recorded so far and resets the buffer. Events
// recorded after the drain cutoff land in the next snapshot.
func (s *Sink) Drain() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = make([]core.Event, 0, 1024)
	return out
}

// Snapshot returns a copy of the current events without resetting.
func (s *Sink) Snapshot() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Counts returns running totals across the lifetime of the sink, including
// events already drained.
func (s *Sink) Counts() (total, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.failed
}

// Close marks the end of the collection window.
func (s *Sink) Close() {
	s.mu.Lock()
	s.endTime = time.Now()
	s.mu.Unlock()
}

// Duration returns the collection window length: start to Close if closed,
// start to now otherwise.
func (s *Sink) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.endTime.IsZero() {
		return s.endTime.Sub(s.startTime)
	}
	return time.Since(s.startTime)
}
