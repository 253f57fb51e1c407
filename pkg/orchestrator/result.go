package orchestrator

import (
	"time"

	"github.com/provenia-labs/proofrun/pkg/budget"
	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/verifier"
)

// Terminal error kinds attached to ERROR results.
const (
	ErrorKindProverFailure = "prover_failure"
	ErrorKindVerifierFault = "verifier_fault"
	ErrorKindInvalidInput  = "invalid_input"
)

// Rejection kinds in the failure log.
const (
	RejectionInvalid     = "invalid"
	RejectionSolverFault = "solver_fault"
)

// Rejection records one rejected candidate. Every Invalid or solver-fault
// verdict observed during the attempt lands here; nothing is dropped.
type Rejection struct {
	Round     int               `json:"round"`
	Candidate logic.Statement   `json:"candidate"`
	Kind      string            `json:"kind"`
	Witness   *verifier.Witness `json:"witness,omitempty"`
	Fault     string            `json:"fault,omitempty"`
	At        time.Time         `json:"at"`
}

// Result is the complete outcome of one attempt. All failures are captured
// here rather than thrown past the orchestrator boundary.
type Result struct {
	AttemptID  string          `json:"attempt_id"`
	Status     Status          `json:"status"`
	Reason     string          `json:"reason"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	Trace      *logic.Trace    `json:"trace"`
	Failures   []Rejection     `json:"failures"`
	Budget     budget.Snapshot `json:"budget"`
	Rounds     int             `json:"rounds"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}
