package orchestrator

import (
	"fmt"

	"github.com/provenia-labs/proofrun/pkg/budget"
	"github.com/provenia-labs/proofrun/pkg/logic"
)

// DischargeFunc decides whether the accumulated trace proves the goal. It is
// injectable configuration; see DischargeByGoalMatch for the default.
type DischargeFunc func(trace *logic.Trace, goal logic.Statement) bool

// DefaultBacktrackThreshold is the number of consecutive failed rounds on
// the same trace prefix before the attempt escalates to REFUTED.
const DefaultBacktrackThreshold = 3

// Config parametrizes one attempt.
type Config struct {
	Budget budget.Config

	// BacktrackThreshold caps consecutive failed rounds per prefix.
	// Zero means DefaultBacktrackThreshold.
	BacktrackThreshold int

	// MaxCandidatesPerRound caps how many ranked candidates are requested
	// from the prover per round. Zero lets the provider decide.
	MaxCandidatesPerRound int

	// Discharge decides when the goal is proven. Nil means
	// DischargeByGoalMatch.
	Discharge DischargeFunc
}

func (c Config) withDefaults() Config {
	if c.BacktrackThreshold == 0 {
		c.BacktrackThreshold = DefaultBacktrackThreshold
	}
	if c.Discharge == nil {
		c.Discharge = DischargeByGoalMatch
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Budget.Validate(); err != nil {
		return err
	}
	if c.BacktrackThreshold < 0 {
		return fmt.Errorf("orchestrator config: backtrack threshold must not be negative, got %d", c.BacktrackThreshold)
	}
	if c.MaxCandidatesPerRound < 0 {
		return fmt.Errorf("orchestrator config: max candidates per round must not be negative, got %d", c.MaxCandidatesPerRound)
	}
	return nil
}
