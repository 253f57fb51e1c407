// Package logic defines the immutable data model for one proof attempt:
// statements, accepted steps, and the ordered trace that binds them.
package logic

import (
	"fmt"
	"strings"
)

// Provenance tags where a statement came from.
type Provenance string

const (
	ProvenanceGoal       Provenance = "goal"
	ProvenanceDerived    Provenance = "derived"
	ProvenanceAssumption Provenance = "assumption"
)

// Statement is a single logical assertion. The Expr payload is opaque to the
// core; only the solver adapter chosen by the caller interprets it.
// Statements are value types and never mutated after construction.
type Statement struct {
	ID         string     `json:"id"`
	Expr       string     `json:"expr"`
	Provenance Provenance `json:"provenance"`
}

// NewStatement constructs a validated statement.
func NewStatement(id, expr string, prov Provenance) (Statement, error) {
	s := Statement{ID: id, Expr: expr, Provenance: prov}
	if err := s.Validate(); err != nil {
		return Statement{}, err
	}
	return s, nil
}

// Validate checks the statement fields.
func (s Statement) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("statement: empty id")
	}
	if strings.TrimSpace(s.Expr) == "" {
		return fmt.Errorf("statement %s: empty expression", s.ID)
	}
	switch s.Provenance {
	case ProvenanceGoal, ProvenanceDerived, ProvenanceAssumption:
		return nil
	default:
		return fmt.Errorf("statement %s: unknown provenance %q", s.ID, s.Provenance)
	}
}

// Equal reports structural equality: every field must match.
func (s Statement) Equal(other Statement) bool {
	return s.ID == other.ID && s.Expr == other.Expr && s.Provenance == other.Provenance
}

func (s Statement) String() string {
	return fmt.Sprintf("%s[%s]: %s", s.ID, s.Provenance, s.Expr)
}
