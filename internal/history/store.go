// Package history keeps a queryable index of plan execution attempts in a
// local SQLite database next to the plan documents. The index is
// best-effort observability: plan files and checkpoint logs remain the
// source of truth, and callers are expected to keep working when the
// index cannot be opened.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Entry is one recorded execution attempt.
type Entry struct {
	ID             int64  `json:"id"`
	PlanID         string `json:"plan_id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	StartedAt      string `json:"started_at"`
	EndedAt        string `json:"ended_at,omitempty"`
	Summary        string `json:"summary,omitempty"`
	StepsTotal     int    `json:"steps_total"`
	StepsCompleted int    `json:"steps_completed"`
}

// Store wraps the executions database.
type Store struct {
	db *sql.DB
}

// Open creates the plans directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func Open(projectRoot string) (*Store, error) {
	dir := filepath.Join(projectRoot, ".pi", "plans")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS executions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id         TEXT    NOT NULL,
			title           TEXT    NOT NULL,
			status          TEXT    NOT NULL,
			started_at      TEXT    NOT NULL,
			ended_at        TEXT,
			summary         TEXT,
			steps_total     INTEGER NOT NULL DEFAULT 0,
			steps_completed INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_exec_plan    ON executions(plan_id);
		CREATE INDEX IF NOT EXISTS idx_exec_started ON executions(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordStart inserts a new attempt in status executing and returns its
// row id for the matching RecordEnd.
func (s *Store) RecordStart(planID, title, startedAt string, stepsTotal int) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO executions (plan_id, title, status, started_at, steps_total)
		 VALUES (?, ?, 'executing', ?, ?)`,
		planID, title, startedAt, stepsTotal,
	)
	if err != nil {
		return 0, fmt.Errorf("history: record start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: record start: %w", err)
	}
	return id, nil
}

// RecordEnd finalizes an attempt started with RecordStart.
func (s *Store) RecordEnd(id int64, status, endedAt, summary string, stepsCompleted int) error {
	_, err := s.db.Exec(
		`UPDATE executions SET status = ?, ended_at = ?, summary = ?, steps_completed = ? WHERE id = ?`,
		status, endedAt, summary, stepsCompleted, id,
	)
	if err != nil {
		return fmt.Errorf("history: record end: %w", err)
	}
	return nil
}

// Recent returns the latest attempts, newest first. A non-positive limit
// means 20.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, plan_id, title, status, started_at, ended_at, summary, steps_total, steps_completed
		 FROM executions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ForPlan returns every attempt recorded for one plan, newest first.
func (s *Store) ForPlan(planID string) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, plan_id, title, status, started_at, ended_at, summary, steps_total, steps_completed
		 FROM executions WHERE plan_id = ? ORDER BY started_at DESC, id DESC`, planID)
	if err != nil {
		return nil, fmt.Errorf("history: query plan attempts: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var endedAt, summary sql.NullString
		if err := rows.Scan(&e.ID, &e.PlanID, &e.Title, &e.Status, &e.StartedAt,
			&endedAt, &summary, &e.StepsTotal, &e.StepsCompleted); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		e.EndedAt = endedAt.String
		e.Summary = summary.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return entries, nil
}
