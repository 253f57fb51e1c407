package logic

import "fmt"

// Step wraps one accepted statement together with its position in the chain
// and the seals binding it to the full prefix. Steps are append-only: once a
// step enters a trace it is never mutated or removed.
type Step struct {
	Index     int       `json:"index"`
	Statement Statement `json:"statement"`
	PrevSeal  string    `json:"prev_seal"`
	Seal      string    `json:"seal"`
}

// Trace is the ordered sequence of accepted steps for one attempt, plus the
// goal it works toward. It is the sole record of what has been proven so far.
type Trace struct {
	Goal  Statement `json:"goal"`
	Steps []Step    `json:"steps"`
}

// NewTrace starts an empty trace for the given goal.
func NewTrace(goal Statement) (*Trace, error) {
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("trace goal: %w", err)
	}
	if goal.Provenance != ProvenanceGoal {
		return nil, fmt.Errorf("trace goal %s: provenance must be %q, got %q", goal.ID, ProvenanceGoal, goal.Provenance)
	}
	return &Trace{Goal: goal}, nil
}

// Len returns the number of accepted steps.
func (t *Trace) Len() int { return len(t.Steps) }

// Head returns the last accepted step, or false if the trace is empty.
func (t *Trace) Head() (Step, bool) {
	if len(t.Steps) == 0 {
		return Step{}, false
	}
	return t.Steps[len(t.Steps)-1], true
}

// Append adds a sealed step. The step's index and prev_seal must continue the
// chain exactly; the statement must validate. Seal correctness itself is the
// seal package's concern.
func (t *Trace) Append(step Step) error {
	if err := step.Statement.Validate(); err != nil {
		return fmt.Errorf("trace append: %w", err)
	}
	if step.Index != len(t.Steps) {
		return fmt.Errorf("trace append: index %d, want %d", step.Index, len(t.Steps))
	}
	if head, ok := t.Head(); ok && step.PrevSeal != head.Seal {
		return fmt.Errorf("trace append: step %d prev_seal does not match head seal", step.Index)
	}
	if step.Seal == "" {
		return fmt.Errorf("trace append: step %d has empty seal", step.Index)
	}
	t.Steps = append(t.Steps, step)
	return nil
}

// Statements returns the accepted statements in order. The returned slice is
// a copy; mutating it does not touch the trace.
func (t *Trace) Statements() []Statement {
	out := make([]Statement, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Statement
	}
	return out
}

// Clone returns a deep copy. Verifier and prover implementations receive the
// live trace by reference and must not mutate it; callers that need a
// mutable snapshot clone first.
func (t *Trace) Clone() *Trace {
	steps := make([]Step, len(t.Steps))
	copy(steps, t.Steps)
	return &Trace{Goal: t.Goal, Steps: steps}
}
