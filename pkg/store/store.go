// Package store persists finished attempt results for audit and caller-side
// debugging. The proof loop itself never depends on a store; callers save
// the Result after Run returns.
package store

import (
	"context"
	"errors"

	"github.com/provenia-labs/proofrun/pkg/orchestrator"
)

// ErrNotFound is returned when no attempt with the given ID exists.
var ErrNotFound = errors.New("store: attempt not found")

// AttemptStore is the durable interface for attempt results.
type AttemptStore interface {
	// Save persists a terminal result. Saving a non-terminal result is an
	// error; saving the same attempt twice overwrites.
	Save(ctx context.Context, res *orchestrator.Result) error

	// Get retrieves a result by attempt ID.
	Get(ctx context.Context, attemptID string) (*orchestrator.Result, error)

	// List returns up to limit results, most recently finished first.
	List(ctx context.Context, limit int) ([]*orchestrator.Result, error)
}

func validateForSave(res *orchestrator.Result) error {
	if res == nil {
		return errors.New("store: nil result")
	}
	if res.AttemptID == "" {
		return errors.New("store: result has empty attempt id")
	}
	if !res.Status.Terminal() {
		return errors.New("store: refusing to save non-terminal result")
	}
	return nil
}
