package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Thresholds defines pass/fail criteria for a run.
type Thresholds struct {
	RequestDuration *DurationThresholds `yaml:"request_duration"`
	RequestFailed   *FailureThresholds  `yaml:"request_failed"`
}

// DurationThresholds defines latency limits. Zero values are not checked.
type DurationThresholds struct {
	Mean time.Duration `yaml:"mean"`
	P50  time.Duration `yaml:"p50"`
	P95  time.Duration `yaml:"p95"`
	P99  time.Duration `yaml:"p99"`
}

// FailureThresholds defines the failure rate limit as a percentage string,
// e.g. "1%".
type FailureThresholds struct {
	Rate string `yaml:"rate"`
}

// ThresholdResult is the outcome of a single threshold check.
type ThresholdResult struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
}

// ThresholdResults contains all threshold check results.
type ThresholdResults struct {
	Passed  bool              `json:"passed"`
	Results []ThresholdResult `json:"results"`
}

// Check evaluates all thresholds against a computed summary.
func (t *Thresholds) Check(s *Summary) *ThresholdResults {
	if t == nil {
		return &ThresholdResults{Passed: true}
	}

	results := &ThresholdResults{
		Passed:  true,
		Results: make([]ThresholdResult, 0),
	}

	if t.RequestDuration != nil {
		results.checkDurations(t.RequestDuration, s.Latency)
	}
	if t.RequestFailed != nil && t.RequestFailed.Rate != "" {
		results.checkFailureRate(t.RequestFailed, s)
	}

	return results
}

func (r *ThresholdResults) checkDurations(t *DurationThresholds, actual LatencyStats) {
	checks := []struct {
		name      string
		threshold time.Duration
		actual    time.Duration
	}{
		{"request_duration.mean", t.Mean, actual.Mean},
		{"request_duration.p50", t.P50, actual.P50},
		{"request_duration.p95", t.P95, actual.P95},
		{"request_duration.p99", t.P99, actual.P99},
	}

	for _, c := range checks {
		if c.threshold == 0 {
			continue
		}
		passed := c.actual < c.threshold
		if !passed {
			r.Passed = false
		}
		r.Results = append(r.Results, ThresholdResult{
			Name:      c.name,
			Passed:    passed,
			Threshold: FormatDuration(c.threshold),
			Actual:    FormatDuration(c.actual),
		})
	}
}

func (r *ThresholdResults) checkFailureRate(t *FailureThresholds, s *Summary) {
	limit, err := parsePercentage(t.Rate)
	if err != nil {
		return
	}

	actual := (1 - s.SuccessRate) * 100
	passed := actual < limit
	if !passed {
		r.Passed = false
	}

	r.Results = append(r.Results, ThresholdResult{
		Name:      "request_failed.rate",
		Passed:    passed,
		Threshold: t.Rate,
		Actual:    fmt.Sprintf("%.2f%%", actual),
	})
}

func parsePercentage(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("invalid percentage format: %s", s)
	}
	return strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
}

// Violations returns only the failed threshold results.
func (r *ThresholdResults) Violations() []ThresholdResult {
	out := make([]ThresholdResult, 0)
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}
