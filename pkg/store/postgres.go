package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/provenia-labs/proofrun/pkg/orchestrator"
)

// Postgres is an AttemptStore backed by PostgreSQL, for callers that share
// an audit trail across processes.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an existing database handle. Schema creation is left to
// the deployment's migrations; see Migrate for the reference DDL.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the attempts table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS attempts (
        attempt_id  TEXT PRIMARY KEY,
        status      TEXT NOT NULL,
        reason      TEXT NOT NULL,
        error_kind  TEXT NOT NULL DEFAULT '',
        goal_id     TEXT NOT NULL,
        steps       INTEGER NOT NULL,
        rounds      INTEGER NOT NULL,
        result      JSONB NOT NULL,
        started_at  TIMESTAMPTZ NOT NULL,
        finished_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("postgres store: migrate: %w", err)
	}
	return nil
}

func (s *Postgres) Save(ctx context.Context, res *orchestrator.Result) error {
	if err := validateForSave(res); err != nil {
		return err
	}
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("postgres store: marshal attempt %s: %w", res.AttemptID, err)
	}
	query := `
        INSERT INTO attempts (attempt_id, status, reason, error_kind, goal_id, steps, rounds, result, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (attempt_id) DO UPDATE SET
            status = EXCLUDED.status,
            reason = EXCLUDED.reason,
            error_kind = EXCLUDED.error_kind,
            steps = EXCLUDED.steps,
            rounds = EXCLUDED.rounds,
            result = EXCLUDED.result,
            finished_at = EXCLUDED.finished_at
    `
	_, err = s.db.ExecContext(ctx, query,
		res.AttemptID, string(res.Status), res.Reason, res.ErrorKind,
		res.Trace.Goal.ID, res.Trace.Len(), res.Rounds, string(blob),
		res.StartedAt, res.FinishedAt)
	if err != nil {
		return fmt.Errorf("postgres store: save attempt %s: %w", res.AttemptID, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, attemptID string) (*orchestrator.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT result FROM attempts WHERE attempt_id = $1`, attemptID)
	var blob string
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: get attempt %s: %w", attemptID, err)
	}
	return unmarshalResult(blob)
}

func (s *Postgres) List(ctx context.Context, limit int) ([]*orchestrator.Result, error) {
	query := `SELECT result FROM attempts ORDER BY finished_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*orchestrator.Result
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("postgres store: scan: %w", err)
		}
		res, err := unmarshalResult(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
