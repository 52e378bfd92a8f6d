// Package aggregate turns a set of metric events into summary statistics.
package aggregate

import (
	"sort"
	"time"

	"crowdsim/internal/core"
)

// Summary contains aggregated run results. It is always a fresh computation
// from the event set; nothing here is mutated in place.
type Summary struct {
	TotalRequests  int                     `json:"totalRequests"`
	SuccessCount   int                     `json:"successCount"`
	FailureCount   int                     `json:"failureCount"`
	SuccessRate    float64                 `json:"successRate"` // fraction in [0,1]
	RequestsPerSec float64                 `json:"requestsPerSec"`
	TestDuration   time.Duration           `json:"testDuration"`
	FatalAgents    int                     `json:"fatalAgents"`
	Latency        LatencyStats            `json:"latency"`
	Tasks          map[string]*TaskStats   `json:"tasks"`
	Searches       map[string]*SearchStats `json:"searches"`
}

// LatencyStats contains latency statistics for one group of events.
type LatencyStats struct {
	Min  time.Duration `json:"min"`
	Max  time.Duration `json:"max"`
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
}

// TaskStats contains per-task statistics.
type TaskStats struct {
	Count   int          `json:"count"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Latency LatencyStats `json:"latency"`
}

// SearchStats contains per-search-term statistics.
type SearchStats struct {
	Count        int          `json:"count"`
	Success      int          `json:"success"`
	Failed       int          `json:"failed"`
	TotalResults int          `json:"totalResults"`
	Latency      LatencyStats `json:"latency"`
}

// Percentile returns sorted[floor(k*n)] with the index clamped to n-1, and 0
// for an empty slice. The slice must be sorted ascending; k is a fraction
// (0.95 for p95).
func Percentile(sorted []time.Duration, k float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	i := int(k * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return sorted[i]
}

// ComputeLatency calculates latency statistics from a slice of durations.
func ComputeLatency(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return LatencyStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: total / time.Duration(len(sorted)),
		P50:  Percentile(sorted, 0.50),
		P95:  Percentile(sorted, 0.95),
		P99:  Percentile(sorted, 0.99),
	}
}

// Compute aggregates an event set into a Summary. Pure function: calling it
// twice on the same snapshot yields identical output, and no state is carried
// between invocations.
func Compute(events []core.Event, testDuration time.Duration) *Summary {
	s := &Summary{
		TestDuration: testDuration,
		Tasks:        make(map[string]*TaskStats),
		Searches:     make(map[string]*SearchStats),
	}

	allLatencies := make([]time.Duration, 0, len(events))
	taskLatencies := make(map[string][]time.Duration)
	searchLatencies := make(map[string][]time.Duration)

	for _, e := range events {
		switch ev := e.(type) {
		case core.RequestOutcome:
			s.TotalRequests++
			ts, ok := s.Tasks[ev.Task]
			if !ok {
				ts = &TaskStats{}
				s.Tasks[ev.Task] = ts
			}
			ts.Count++
			if ev.Success {
				s.SuccessCount++
				ts.Success++
			} else {
				s.FailureCount++
				ts.Failed++
			}
			allLatencies = append(allLatencies, ev.Latency)
			taskLatencies[ev.Task] = append(taskLatencies[ev.Task], ev.Latency)

		case core.SearchOutcome:
			s.TotalRequests++
			ss, ok := s.Searches[ev.Term]
			if !ok {
				ss = &SearchStats{}
				s.Searches[ev.Term] = ss
			}
			ss.Count++
			ss.TotalResults += ev.ResultCount
			if ev.Success {
				s.SuccessCount++
				ss.Success++
			} else {
				s.FailureCount++
				ss.Failed++
			}
			allLatencies = append(allLatencies, ev.Latency)
			searchLatencies[ev.Term] = append(searchLatencies[ev.Term], ev.Latency)

		case core.AgentFatal:
			s.FatalAgents++
		}
	}

	if s.TotalRequests > 0 {
		s.SuccessRate = float64(s.SuccessCount) / float64(s.TotalRequests)
	}
	if testDuration > 0 {
		s.RequestsPerSec = float64(s.TotalRequests) / testDuration.Seconds()
	}

	s.Latency = ComputeLatency(allLatencies)
	for task, latencies := range taskLatencies {
		s.Tasks[task].Latency = ComputeLatency(latencies)
	}
	for term, latencies := range searchLatencies {
		s.Searches[term].Latency = ComputeLatency(latencies)
	}

	return s
}
