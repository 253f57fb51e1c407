// Package verifier defines the capability contract for symbolic correctness
// checking. Implementations decide whether a candidate statement follows
// from the accepted prefix; they must be idempotent, side-effect-free, and
// safe to invoke concurrently from independent attempts.
package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// Kind enumerates verdict outcomes.
type Kind string

const (
	// VerdictValid: no counter-example could be found within solver limits;
	// the candidate follows from the prefix.
	VerdictValid Kind = "valid"
	// VerdictInvalid: a concrete counter-example was found. The witness is
	// the system's failure record of record and is never dropped.
	VerdictInvalid Kind = "invalid"
)

// Witness is a concrete counter-example disproving a candidate.
type Witness struct {
	CandidateID string          `json:"candidate_id"`
	Assignment  map[string]bool `json:"assignment,omitempty"`
	Detail      string          `json:"detail"`
}

// Verdict is the outcome of one check. Solver faults are reported via the
// error return, not as a verdict.
type Verdict struct {
	Kind    Kind     `json:"kind"`
	Witness *Witness `json:"witness,omitempty"`
}

// Fault is a failure of the decision procedure itself (timeout, malformed
// expression). Distinct from Invalid; the orchestrator retries it once.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("solver fault in %s: %v", f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// IsFault reports whether err wraps a *Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// Verifier checks a single candidate against the accepted prefix it would
// extend. Identical (candidate, trace) inputs must yield identical verdicts.
type Verifier interface {
	Check(ctx context.Context, candidate logic.Statement, trace *logic.Trace) (Verdict, error)
}
