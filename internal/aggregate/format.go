package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatText writes a summary in human-readable form.
func FormatText(w io.Writer, s *Summary, thresholds *ThresholdResults) {
	if s.TotalRequests == 0 && s.FatalAgents == 0 {
		fmt.Fprintln(w, "No events collected")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "crowdsim - Visitor Simulation Results")
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Duration:       %v\n", s.TestDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Total Requests: %s\n", formatNumber(s.TotalRequests))
	fmt.Fprintf(w, "Success Rate:   %.1f%% (%s / %s)\n",
		s.SuccessRate*100, formatNumber(s.SuccessCount), formatNumber(s.TotalRequests))
	fmt.Fprintf(w, "Requests/sec:   %.1f\n", s.RequestsPerSec)
	if s.FatalAgents > 0 {
		fmt.Fprintf(w, "Fatal Agents:   %d\n", s.FatalAgents)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Response Times:")
	fmt.Fprintf(w, "  Min:    %s\n", FormatDuration(s.Latency.Min))
	fmt.Fprintf(w, "  Mean:   %s\n", FormatDuration(s.Latency.Mean))
	fmt.Fprintf(w, "  P50:    %s\n", FormatDuration(s.Latency.P50))
	fmt.Fprintf(w, "  P95:    %s\n", FormatDuration(s.Latency.P95))
	fmt.Fprintf(w, "  P99:    %s\n", FormatDuration(s.Latency.P99))
	fmt.Fprintf(w, "  Max:    %s\n", FormatDuration(s.Latency.Max))

	if len(s.Tasks) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "By Task:")
		for _, task := range sortedKeys(s.Tasks) {
			ts := s.Tasks[task]
			fmt.Fprintf(w, "  %-15s %s reqs   mean=%s  p95=%s  p99=%s\n",
				task, formatNumber(ts.Count),
				FormatDuration(ts.Latency.Mean),
				FormatDuration(ts.Latency.P95),
				FormatDuration(ts.Latency.P99))
		}
	}

	if len(s.Searches) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "By Search Term:")
		for _, term := range sortedKeys(s.Searches) {
			ss := s.Searches[term]
			fmt.Fprintf(w, "  %-15s %s searches   results=%s  mean=%s  p95=%s\n",
				term, formatNumber(ss.Count), formatNumber(ss.TotalResults),
				FormatDuration(ss.Latency.Mean),
				FormatDuration(ss.Latency.P95))
		}
	}

	if thresholds != nil && len(thresholds.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Thresholds:")
		for _, result := range thresholds.Results {
			symbol := "✓"
			if !result.Passed {
				symbol = "✗"
			}
			fmt.Fprintf(w, "  %s %s < %s (actual: %s)\n",
				symbol, result.Name, result.Threshold, result.Actual)
		}
	}
}

type jsonLatency struct {
	Min  string `json:"min"`
	Max  string `json:"max"`
	Mean string `json:"mean"`
	P50  string `json:"p50"`
	P95  string `json:"p95"`
	P99  string `json:"p99"`
}

func toJSONLatency(l LatencyStats) jsonLatency {
	return jsonLatency{
		Min:  FormatDuration(l.Min),
		Max:  FormatDuration(l.Max),
		Mean: FormatDuration(l.Mean),
		P50:  FormatDuration(l.P50),
		P95:  FormatDuration(l.P95),
		P99:  FormatDuration(l.P99),
	}
}

type jsonTask struct {
	Count   int         `json:"count"`
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Latency jsonLatency `json:"latency"`
}

type jsonSearch struct {
	Count        int         `json:"count"`
	Success      int         `json:"success"`
	Failed       int         `json:"failed"`
	TotalResults int         `json:"totalResults"`
	Latency      jsonLatency `json:"latency"`
}

// FormatJSON writes a summary in JSON form.
func FormatJSON(w io.Writer, s *Summary, thresholds *ThresholdResults) error {
	output := struct {
		Duration       string                `json:"duration"`
		TotalRequests  int                   `json:"totalRequests"`
		SuccessCount   int                   `json:"successCount"`
		FailureCount   int                   `json:"failureCount"`
		SuccessRate    float64               `json:"successRate"`
		RequestsPerSec float64               `json:"requestsPerSec"`
		FatalAgents    int                   `json:"fatalAgents"`
		Latency        jsonLatency           `json:"latency"`
		Tasks          map[string]jsonTask   `json:"tasks"`
		Searches       map[string]jsonSearch `json:"searches"`
		Thresholds     *ThresholdResults     `json:"thresholds,omitempty"`
	}{
		Duration:       s.TestDuration.Round(time.Millisecond).String(),
		TotalRequests:  s.TotalRequests,
		SuccessCount:   s.SuccessCount,
		FailureCount:   s.FailureCount,
		SuccessRate:    s.SuccessRate,
		RequestsPerSec: s.RequestsPerSec,
		FatalAgents:    s.FatalAgents,
		Latency:        toJSONLatency(s.Latency),
		Tasks:          make(map[string]jsonTask, len(s.Tasks)),
		Searches:       make(map[string]jsonSearch, len(s.Searches)),
		Thresholds:     thresholds,
	}
	for task, ts := range s.Tasks {
		output.Tasks[task] = jsonTask{ts.Count, ts.Success, ts.Failed, toJSONLatency(ts.Latency)}
	}
	for term, ss := range s.Searches {
		output.Searches[term] = jsonSearch{ss.Count, ss.Success, ss.Failed, ss.TotalResults, toJSONLatency(ss.Latency)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
