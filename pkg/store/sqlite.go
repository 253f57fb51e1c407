package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/provenia-labs/proofrun/pkg/orchestrator"
)

// SQLite is an AttemptStore backed by a SQLite database. Suitable for
// single-node audit trails; the trace, failure log, and budget snapshot are
// stored as JSON alongside queryable status columns.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an existing database handle and migrates it.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS attempts (
        attempt_id  TEXT PRIMARY KEY,
        status      TEXT NOT NULL,
        reason      TEXT NOT NULL,
        error_kind  TEXT NOT NULL DEFAULT '',
        goal_id     TEXT NOT NULL,
        steps       INTEGER NOT NULL,
        rounds      INTEGER NOT NULL,
        result      JSON NOT NULL,
        started_at  DATETIME NOT NULL,
        finished_at DATETIME NOT NULL
    );`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("sqlite store: migrate: %w", err)
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, res *orchestrator.Result) error {
	if err := validateForSave(res); err != nil {
		return err
	}
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("sqlite store: marshal attempt %s: %w", res.AttemptID, err)
	}
	query := `
        INSERT INTO attempts (attempt_id, status, reason, error_kind, goal_id, steps, rounds, result, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(attempt_id) DO UPDATE SET
            status = excluded.status,
            reason = excluded.reason,
            error_kind = excluded.error_kind,
            steps = excluded.steps,
            rounds = excluded.rounds,
            result = excluded.result,
            finished_at = excluded.finished_at
    `
	_, err = s.db.ExecContext(ctx, query,
		res.AttemptID, string(res.Status), res.Reason, res.ErrorKind,
		res.Trace.Goal.ID, res.Trace.Len(), res.Rounds, string(blob),
		res.StartedAt, res.FinishedAt)
	if err != nil {
		return fmt.Errorf("sqlite store: save attempt %s: %w", res.AttemptID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, attemptID string) (*orchestrator.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT result FROM attempts WHERE attempt_id = ?`, attemptID)
	var blob string
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sqlite store: get attempt %s: %w", attemptID, err)
	}
	return unmarshalResult(blob)
}

func (s *SQLite) List(ctx context.Context, limit int) ([]*orchestrator.Result, error) {
	query := `SELECT result FROM attempts ORDER BY finished_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*orchestrator.Result
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("sqlite store: scan: %w", err)
		}
		res, err := unmarshalResult(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

func unmarshalResult(blob string) (*orchestrator.Result, error) {
	var res orchestrator.Result
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("store: unmarshal result: %w", err)
	}
	return &res, nil
}
