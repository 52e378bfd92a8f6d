package sink

import (
	"sync"
	"testing"
	"time"

	"crowdsim/internal/core"
)

func TestRecordAndDrain(t *testing.T) {
	s := New()
	s.Record(core.RequestOutcome{AgentID: 1, Task: "homepage", Success: true})
	s.Record(core.SearchOutcome{AgentID: 1, Term: "schule", Success: true})

	events := s.Drain()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if len(s.Drain()) != 0 {
		t.Error("second drain should be empty")
	}
}

func TestConcurrentRecord_ExactMultiset(t *testing.T) {
	const agents = 500
	const perAgent = 1000

	s := New()
	var wg sync.WaitGroup
	for a := 0; a < agents; a++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perAgent; i++ {
				s.Record(core.RequestOutcome{AgentID: id, StatusCode: i, Success: true})
			}
		}(a)
	}
	wg.Wait()

	events := s.Drain()
	if len(events) != agents*perAgent {
		t.Fatalf("expected %d events, got %d", agents*perAgent, len(events))
	}

	// Every (agent, sequence) pair must appear exactly once.
	seen := make(map[[2]int]bool, len(events))
	for _, e := range events {
		r, ok := e.(core.RequestOutcome)
		if !ok {
			t.Fatalf("unexpected event type %T", e)
		}
		key := [2]int{r.AgentID, r.StatusCode}
		if seen[key] {
			t.Fatalf("duplicate event delivery for agent %d seq %d", r.AgentID, r.StatusCode)
		}
		seen[key] = true
	}
}

func TestRecordDuringDrain_NoCorruption(t *testing.T) {
	s := New()

	const producers = 8
	const perProducer = 5000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s.Record(core.RequestOutcome{AgentID: id, StatusCode: i})
			}
		}(p)
	}

	// Drain repeatedly while producers are running; every event must show
	// up in exactly one snapshot.
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	var collected []core.Event
	for {
		collected = append(collected, s.Drain()...)
		select {
		case <-done:
			collected = append(collected, s.Drain()...)
			if len(collected) != producers*perProducer {
				t.Errorf("expected %d events across snapshots, got %d", producers*perProducer, len(collected))
			}
			return
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestCounts(t *testing.T) {
	s := New()
	s.Record(core.RequestOutcome{Success: true})
	s.Record(core.RequestOutcome{Success: false})
	s.Record(core.SearchOutcome{Success: false})
	s.Record(core.AgentFatal{Reason: "missing base url"})

	s.Drain()
	// Counts survive draining.
	total, failed := s.Counts()
	if total != 4 {
		t.Errorf("expected total 4, got %d", total)
	}
	if failed != 3 {
		t.Errorf("expected 3 failed, got %d", failed)
	}
}

func TestDuration(t *testing.T) {
	s := New()
	if s.Duration() < 0 {
		t.Error("running duration should not be negative")
	}
	s.Close()
	d1 := s.Duration()
	time.Sleep(5 * time.Millisecond)
	if d2 := s.Duration(); d2 != d1 {
		t.Errorf("duration should be fixed after Close: %v != %v", d1, d2)
	}
}
