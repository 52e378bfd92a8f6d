// Package export persists raw simulation events: line-oriented JSON and CSV
// files for offline analysis, and an optional SQLite event store for
// queryable history across runs.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"crowdsim/internal/core"
)

// requestRecord is the serialized form of one request event. Field names
// are part of the export format and stable across releases.
type requestRecord struct {
	Timestamp         string `json:"timestamp"`
	RequestType       string `json:"request_type"`
	Name              string `json:"name"`
	ResponseTimeMs    int64  `json:"response_time_ms"`
	ResponseSizeBytes int64  `json:"response_size_bytes"`
	Success           bool   `json:"success"`
}

// searchRecord is the serialized form of one search event.
type searchRecord struct {
	Timestamp      string `json:"timestamp"`
	SearchTerm     string `json:"search_term"`
	ResultCount    int    `json:"result_count"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Success        bool   `json:"success"`
}

func toRequestRecord(e core.RequestOutcome) requestRecord {
	return requestRecord{
		Timestamp:         e.Timestamp.Format(time.RFC3339Nano),
		RequestType:       e.Task,
		Name:              e.Endpoint,
		ResponseTimeMs:    e.Latency.Milliseconds(),
		ResponseSizeBytes: e.BodySize,
		Success:           e.Success,
	}
}

func toSearchRecord(e core.SearchOutcome) searchRecord {
	return searchRecord{
		Timestamp:      e.Timestamp.Format(time.RFC3339Nano),
		SearchTerm:     e.Term,
		ResultCount:    e.ResultCount,
		ResponseTimeMs: e.Latency.Milliseconds(),
		Success:        e.Success,
	}
}

// split partitions events into request and search records; fatal events
// have no row form and are skipped.
func split(events []core.Event) ([]requestRecord, []searchRecord) {
	var reqs []requestRecord
	var searches []searchRecord
	for _, e := range events {
		switch ev := e.(type) {
		case core.RequestOutcome:
			reqs = append(reqs, toRequestRecord(ev))
		case core.SearchOutcome:
			searches = append(searches, toSearchRecord(ev))
		}
	}
	return reqs, searches
}

// WriteJSON writes the request and search event streams as two JSON arrays.
func WriteJSON(requests, searches io.Writer, events []core.Event) error {
	reqs, srchs := split(events)
	if err := encodeJSON(requests, reqs); err != nil {
		return fmt.Errorf("writing request events: %w", err)
	}
	if err := encodeJSON(searches, srchs); err != nil {
		return fmt.Errorf("writing search events: %w", err)
	}
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var requestCSVHeader = []string{
	"timestamp", "request_type", "name", "response_time_ms", "response_size_bytes", "success",
}

var searchCSVHeader = []string{
	"timestamp", "search_term", "result_count", "response_time_ms", "success",
}

// WriteCSV writes the request and search event streams as two CSV tables.
func WriteCSV(requests, searches io.Writer, events []core.Event) error {
	reqs, srchs := split(events)

	rw := csv.NewWriter(requests)
	if err := rw.Write(requestCSVHeader); err != nil {
		return err
	}
	for _, r := range reqs {
		row := []string{
			r.Timestamp,
			r.RequestType,
			r.Name,
			strconv.FormatInt(r.ResponseTimeMs, 10),
			strconv.FormatInt(r.ResponseSizeBytes, 10),
			strconv.FormatBool(r.Success),
		}
		if err := rw.Write(row); err != nil {
			return err
		}
	}
	rw.Flush()
	if err := rw.Error(); err != nil {
		return fmt.Errorf("writing request events: %w", err)
	}

	sw := csv.NewWriter(searches)
	if err := sw.Write(searchCSVHeader); err != nil {
		return err
	}
	for _, s := range srchs {
		row := []string{
			s.Timestamp,
			s.SearchTerm,
			strconv.Itoa(s.ResultCount),
			strconv.FormatInt(s.ResponseTimeMs, 10),
			strconv.FormatBool(s.Success),
		}
		if err := sw.Write(row); err != nil {
			return err
		}
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return fmt.Errorf("writing search events: %w", err)
	}
	return nil
}

// WriteFiles writes JSON and CSV exports under dir, creating it if needed.
// File names carry the run's start timestamp so consecutive runs never
// clobber each other.
func WriteFiles(dir string, start time.Time, events []core.Event) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	stamp := start.Format("20060102-150405")

	type out struct {
		name  string
		write func(requests, searches io.Writer, events []core.Event) error
		ext   string
	}
	outs := []out{
		{"json", WriteJSON, "json"},
		{"csv", WriteCSV, "csv"},
	}

	var written []string
	for _, o := range outs {
		reqPath := filepath.Join(dir, fmt.Sprintf("requests-%s.%s", stamp, o.ext))
		srchPath := filepath.Join(dir, fmt.Sprintf("searches-%s.%s", stamp, o.ext))

		rf, err := os.Create(reqPath)
		if err != nil {
			return written, err
		}
		sf, err := os.Create(srchPath)
		if err != nil {
			rf.Close()
			return written, err
		}
		err = o.write(rf, sf, events)
		rf.Close()
		sf.Close()
		if err != nil {
			return written, err
		}
		written = append(written, reqPath, srchPath)
	}
	return written, nil
}
