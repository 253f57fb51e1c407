// Package orchestrator drives the generate/verify/backtrack loop of one
// proof attempt, enforcing the risk budget and producing a terminal status,
// the sealed trace, and the full witness/failure log.
package orchestrator

// Status enumerates the attempt lifecycle. Transitions are driven
// exclusively by the orchestrator; a terminal status never changes.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusGenerating   Status = "GENERATING"
	StatusVerifying    Status = "VERIFYING"
	StatusProven       Status = "PROVEN"
	StatusRefuted      Status = "REFUTED"
	StatusHaltedBudget Status = "HALTED_BUDGET"
	StatusError        Status = "ERROR"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusProven, StatusRefuted, StatusHaltedBudget, StatusError:
		return true
	}
	return false
}
