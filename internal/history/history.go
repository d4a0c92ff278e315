// Package history keeps a local ledger of translation runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrEmptyOperation is returned when a run is recorded without an operation name.
var ErrEmptyOperation = errors.New("run has no operation")

// Status is the outcome of a recorded run.
type Status string

// Run outcomes.
const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// timeLayout is fixed-width so stored UTC timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    op          TEXT NOT NULL,
    input       TEXT NOT NULL DEFAULT '',
    outputs     TEXT NOT NULL DEFAULT '[]',
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    started_at  TEXT NOT NULL,
    finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_started ON runs(started_at);
`

// Run is one translation attempt.
type Run struct {
	ID         string
	Op         string
	Input      string
	Outputs    []string
	Status     Status
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store records runs in a SQLite database in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the ledger at path, creating its parent directory.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores run and returns it with its ID filled in. A zero StartedAt
// or FinishedAt is set to the current time.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.Op == "" {
		return run, fmt.Errorf("history: %w", ErrEmptyOperation)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
		if run.Error != "" {
			run.Status = StatusFailed
		}
	}
	outputs := run.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	encoded, err := json.Marshal(outputs)
	if err != nil {
		return run, fmt.Errorf("history: encode outputs: %w", err)
	}

	const q = `
		INSERT INTO runs (id, op, input, outputs, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q,
		run.ID, run.Op, run.Input, string(encoded), string(run.Status), run.Error,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
	); err != nil {
		return run, fmt.Errorf("history: record run %s: %w", run.ID, err)
	}
	return run, nil
}

// Recent returns at most n runs, newest first. A non-positive n returns all runs.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = -1 // SQLite: no limit
	}
	const q = `
		SELECT id, op, input, outputs, status, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			outputs, status   string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Op, &r.Input, &outputs, &status, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("history: parse start of %s: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("history: parse finish of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(outputs), &r.Outputs); err != nil {
			return nil, fmt.Errorf("history: decode outputs of %s: %w", r.ID, err)
		}
		r.Status = Status(status)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
