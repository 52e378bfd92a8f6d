package export

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"crowdsim/internal/core"
)

// Store appends simulation events to a SQLite database so runs accumulate
// queryable history. WAL mode keeps writers from blocking readers.
type Store struct {
	db  *sql.DB
	run string
}

// OpenStore opens (or creates) the events database at path. runID labels
// every row written through this store.
func OpenStore(path, runID string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening events db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging events db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db, run: runID}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("events db migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		agent_id INTEGER NOT NULL,
		ts DATETIME NOT NULL,

		request_type TEXT,
		name TEXT,
		response_time_ms INTEGER,
		response_size_bytes INTEGER,

		search_term TEXT,
		result_count INTEGER,

		success INTEGER,
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}
	return nil
}

// Append writes a batch of events inside one transaction.
func (s *Store) Append(events []core.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning events tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO events (
			run_id, kind, agent_id, ts,
			request_type, name, response_time_ms, response_size_bytes,
			search_term, result_count, success, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing events insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		var args []any
		switch ev := e.(type) {
		case core.RequestOutcome:
			args = []any{
				s.run, "request", ev.AgentID, ev.Timestamp.Format(time.RFC3339Nano),
				ev.Task, ev.Endpoint, ev.Latency.Milliseconds(), ev.BodySize,
				nil, nil, ev.Success, nil,
			}
		case core.SearchOutcome:
			args = []any{
				s.run, "search", ev.AgentID, ev.Timestamp.Format(time.RFC3339Nano),
				nil, nil, ev.Latency.Milliseconds(), nil,
				ev.Term, ev.ResultCount, ev.Success, nil,
			}
		case core.AgentFatal:
			args = []any{
				s.run, "fatal", ev.AgentID, ev.Timestamp.Format(time.RFC3339Nano),
				nil, nil, nil, nil,
				nil, nil, nil, ev.Reason,
			}
		default:
			continue
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}
	return tx.Commit()
}

// CountByKind returns per-kind event counts for this store's run.
func (s *Store) CountByKind() (map[string]int, error) {
	rows, err := s.db.Query(
		"SELECT kind, COUNT(*) FROM events WHERE run_id = ? GROUP BY kind", s.run)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}
