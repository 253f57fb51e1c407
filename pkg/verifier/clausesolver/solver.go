// Package clausesolver is an in-process Verifier adapter for propositional
// clause expressions. Validity is decided by the standard UNSAT check on the
// negation: a candidate follows from the prefix iff prefix ∧ ¬candidate has
// no model; any model found is surfaced as the witness.
package clausesolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/verifier"
)

// MaxVars bounds the variable universe one check may touch. Beyond it the
// decision procedure reports a fault rather than an unbounded search.
const MaxVars = 64

// Solver implements verifier.Verifier over the clause grammar in parse.go.
// Stateless: safe for concurrent use across attempts.
type Solver struct{}

// New returns a clause solver.
func New() *Solver { return &Solver{} }

// Check decides the verdict for a candidate against the trace prefix.
// Derived candidates must be entailed: candidate CNF is entailed iff every
// one of its clauses is, and each clause is tested by asserting its negation
// as unit literals and searching for a model. Assumption candidates only
// need to be consistent with the prefix.
func (s *Solver) Check(ctx context.Context, candidate logic.Statement, trace *logic.Trace) (verifier.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return verifier.Verdict{}, &verifier.Fault{Op: "clausesolver.check", Err: err}
	}

	prefix, err := s.prefixClauses(trace)
	if err != nil {
		return verifier.Verdict{}, err
	}
	candClauses, err := Parse(candidate.Expr)
	if err != nil {
		return verifier.Verdict{}, &verifier.Fault{Op: "clausesolver.parse", Err: err}
	}

	if candidate.Provenance == logic.ProvenanceAssumption {
		return s.checkConsistent(candidate, prefix, candClauses)
	}

	for i, clause := range candClauses {
		problem := make([]Clause, 0, len(prefix)+len(clause))
		problem = append(problem, prefix...)
		for _, lit := range clause {
			problem = append(problem, Clause{{Var: lit.Var, Neg: !lit.Neg}})
		}
		if err := checkBounds(problem); err != nil {
			return verifier.Verdict{}, err
		}
		if model, sat := solve(problem); sat {
			return verifier.Verdict{
				Kind: verifier.VerdictInvalid,
				Witness: &verifier.Witness{
					CandidateID: candidate.ID,
					Assignment:  model,
					Detail:      fmt.Sprintf("counter-model falsifies clause %d of %q", i, candidate.Expr),
				},
			}, nil
		}
	}
	return verifier.Verdict{Kind: verifier.VerdictValid}, nil
}

// checkConsistent admits an assumption iff prefix ∧ assumption has a model.
func (s *Solver) checkConsistent(candidate logic.Statement, prefix, candClauses []Clause) (verifier.Verdict, error) {
	problem := make([]Clause, 0, len(prefix)+len(candClauses))
	problem = append(problem, prefix...)
	problem = append(problem, candClauses...)
	if err := checkBounds(problem); err != nil {
		return verifier.Verdict{}, err
	}
	if _, sat := solve(problem); sat {
		return verifier.Verdict{Kind: verifier.VerdictValid}, nil
	}
	return verifier.Verdict{
		Kind: verifier.VerdictInvalid,
		Witness: &verifier.Witness{
			CandidateID: candidate.ID,
			Detail:      fmt.Sprintf("assumption %q contradicts the accepted prefix", candidate.Expr),
		},
	}, nil
}

func (s *Solver) prefixClauses(trace *logic.Trace) ([]Clause, error) {
	var out []Clause
	for _, st := range trace.Statements() {
		clauses, err := Parse(st.Expr)
		if err != nil {
			return nil, &verifier.Fault{Op: "clausesolver.prefix", Err: err}
		}
		out = append(out, clauses...)
	}
	return out, nil
}

func checkBounds(problem []Clause) error {
	seen := map[string]struct{}{}
	for _, clause := range problem {
		for _, lit := range clause {
			seen[lit.Var] = struct{}{}
		}
	}
	if len(seen) > MaxVars {
		return &verifier.Fault{Op: "clausesolver.bounds",
			Err: fmt.Errorf("%d variables exceeds limit %d", len(seen), MaxVars)}
	}
	return nil
}

// solve runs DPLL with unit propagation. Variable order is lexicographic so
// identical inputs always walk the identical search tree: the adapter stays
// idempotent.
func solve(problem []Clause) (map[string]bool, bool) {
	vars := map[string]struct{}{}
	for _, clause := range problem {
		for _, lit := range clause {
			vars[lit.Var] = struct{}{}
		}
	}
	order := make([]string, 0, len(vars))
	for v := range vars {
		order = append(order, v)
	}
	sort.Strings(order)

	return dpll(problem, order, map[string]bool{})
}

func dpll(problem []Clause, order []string, assign map[string]bool) (map[string]bool, bool) {
	// Unit propagation to fixpoint.
	for {
		unit, ok, conflict := findUnit(problem, assign)
		if conflict {
			return nil, false
		}
		if !ok {
			break
		}
		assign[unit.Var] = !unit.Neg
	}

	status := evaluate(problem, assign)
	switch status {
	case allSatisfied:
		model := make(map[string]bool, len(assign))
		for k, v := range assign {
			model[k] = v
		}
		return model, true
	case hasConflict:
		return nil, false
	}

	v, ok := nextUnassigned(order, assign)
	if !ok {
		return nil, false
	}
	for _, value := range []bool{true, false} {
		branch := make(map[string]bool, len(assign)+1)
		for k, val := range assign {
			branch[k] = val
		}
		branch[v] = value
		if model, sat := dpll(problem, order, branch); sat {
			return model, true
		}
	}
	return nil, false
}

type evalStatus int

const (
	allSatisfied evalStatus = iota
	hasConflict
	undecided
)

func evaluate(problem []Clause, assign map[string]bool) evalStatus {
	result := allSatisfied
	for _, clause := range problem {
		satisfied, open := false, false
		for _, lit := range clause {
			val, bound := assign[lit.Var]
			if !bound {
				open = true
				continue
			}
			if val != lit.Neg {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		if !open {
			return hasConflict
		}
		result = undecided
	}
	return result
}

// findUnit locates a clause with exactly one unbound literal and no
// satisfied literal. conflict reports a fully-bound falsified clause.
func findUnit(problem []Clause, assign map[string]bool) (Literal, bool, bool) {
	for _, clause := range problem {
		var open []Literal
		satisfied := false
		for _, lit := range clause {
			val, bound := assign[lit.Var]
			if !bound {
				open = append(open, lit)
				continue
			}
			if val != lit.Neg {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		if len(open) == 0 {
			return Literal{}, false, true
		}
		if len(open) == 1 {
			return open[0], true, false
		}
	}
	return Literal{}, false, false
}

func nextUnassigned(order []string, assign map[string]bool) (string, bool) {
	for _, v := range order {
		if _, bound := assign[v]; !bound {
			return v, true
		}
	}
	return "", false
}
