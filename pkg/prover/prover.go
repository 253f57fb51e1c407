// Package prover defines the capability contract for candidate step
// generation. The orchestrator consumes implementations by reference; they
// are stateless from its point of view and never receive mutable access to
// attempt-owned state.
package prover

import (
	"context"
	"errors"
	"fmt"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// ErrNoCandidate signals the provider has exhausted its options for the
// current trace prefix. Recoverable: the orchestrator backtracks.
var ErrNoCandidate = errors.New("prover: no candidate available")

// Error is an exceptional provider failure. Non-retryable by default: the
// orchestrator takes the terminal ERROR path.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("prover failure in %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Candidate is one proposed next statement plus the token cost the provider
// reports having spent producing it.
type Candidate struct {
	Statement logic.Statement `json:"statement"`
	Cost      int64           `json:"cost"`
}

// Hint carries the remaining budget headroom so providers can bound their
// own spending. Advisory only; the orchestrator still enforces ceilings.
type Hint struct {
	TokensRemaining int64
	DepthRemaining  int
	MaxCandidates   int
}

// Prover produces candidate next steps for a trace prefix. Implementations
// must not mutate the trace, must honor ctx cancellation (the deadline is
// derived from the attempt's wall-clock ceiling), and may return ranked
// multiple candidates; the ranking is opaque to the caller. Output need not
// be reproducible across calls.
type Prover interface {
	Propose(ctx context.Context, trace *logic.Trace, goal logic.Statement, hint Hint) ([]Candidate, error)
}
