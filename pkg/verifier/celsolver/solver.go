// Package celsolver is an in-process Verifier adapter for statements whose
// expressions are CEL boolean predicates over a declared set of boolean
// variables. Validity is decided by exhaustive model search: the candidate
// follows from the prefix iff no assignment satisfies prefix ∧ ¬candidate.
package celsolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/verifier"
)

// MaxVars bounds the exhaustive search; 2^20 evaluations is the ceiling
// before the adapter reports a fault instead.
const MaxVars = 20

// Solver implements verifier.Verifier for CEL expressions. Compiled programs
// are cached per expression; the cache is guarded so independent attempts
// can share one solver.
type Solver struct {
	env  *cel.Env
	vars []string

	mu    sync.Mutex
	progs map[string]cel.Program
}

// New builds a solver over the given boolean variable universe.
func New(vars []string) (*Solver, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("celsolver: empty variable universe")
	}
	if len(vars) > MaxVars {
		return nil, fmt.Errorf("celsolver: %d variables exceeds limit %d", len(vars), MaxVars)
	}
	opts := make([]cel.EnvOption, 0, len(vars))
	for _, v := range vars {
		opts = append(opts, cel.Variable(v, cel.BoolType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("celsolver: env: %w", err)
	}

	sorted := make([]string, len(vars))
	copy(sorted, vars)
	sort.Strings(sorted)
	return &Solver{env: env, vars: sorted, progs: map[string]cel.Program{}}, nil
}

// Check decides whether candidate follows from the trace prefix.
func (s *Solver) Check(ctx context.Context, candidate logic.Statement, trace *logic.Trace) (verifier.Verdict, error) {
	prefix := trace.Statements()
	programs := make([]cel.Program, 0, len(prefix)+1)
	for _, st := range prefix {
		prog, err := s.program(st.Expr)
		if err != nil {
			return verifier.Verdict{}, err
		}
		programs = append(programs, prog)
	}
	candProg, err := s.program(candidate.Expr)
	if err != nil {
		return verifier.Verdict{}, err
	}

	// Assumptions only need a model consistent with the prefix; derived
	// statements must hold under every model of the prefix.
	wantConsistency := candidate.Provenance == logic.ProvenanceAssumption

	assignment := map[string]any{}
	total := 1 << len(s.vars)
	for mask := 0; mask < total; mask++ {
		if err := ctx.Err(); err != nil {
			return verifier.Verdict{}, &verifier.Fault{Op: "celsolver.check", Err: err}
		}
		for i, v := range s.vars {
			assignment[v] = mask&(1<<i) != 0
		}

		prefixHolds := true
		for _, prog := range programs {
			ok, err := evalBool(prog, assignment)
			if err != nil {
				return verifier.Verdict{}, err
			}
			if !ok {
				prefixHolds = false
				break
			}
		}
		if !prefixHolds {
			continue
		}

		ok, err := evalBool(candProg, assignment)
		if err != nil {
			return verifier.Verdict{}, err
		}
		if wantConsistency && ok {
			return verifier.Verdict{Kind: verifier.VerdictValid}, nil
		}
		if !wantConsistency && !ok {
			witness := make(map[string]bool, len(s.vars))
			for _, v := range s.vars {
				witness[v] = assignment[v].(bool)
			}
			return verifier.Verdict{
				Kind: verifier.VerdictInvalid,
				Witness: &verifier.Witness{
					CandidateID: candidate.ID,
					Assignment:  witness,
					Detail:      fmt.Sprintf("assignment satisfies prefix but falsifies %q", candidate.Expr),
				},
			}, nil
		}
	}
	if wantConsistency {
		return verifier.Verdict{
			Kind: verifier.VerdictInvalid,
			Witness: &verifier.Witness{
				CandidateID: candidate.ID,
				Detail:      fmt.Sprintf("assumption %q contradicts the accepted prefix", candidate.Expr),
			},
		}, nil
	}
	return verifier.Verdict{Kind: verifier.VerdictValid}, nil
}

func (s *Solver) program(expr string) (cel.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prog, ok := s.progs[expr]; ok {
		return prog, nil
	}
	ast, issues := s.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, &verifier.Fault{Op: "celsolver.compile", Err: issues.Err()}
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, &verifier.Fault{Op: "celsolver.compile",
			Err: fmt.Errorf("expression %q is %s, want bool", expr, ast.OutputType())}
	}
	prog, err := s.env.Program(ast)
	if err != nil {
		return nil, &verifier.Fault{Op: "celsolver.program", Err: err}
	}
	s.progs[expr] = prog
	return prog, nil
}

func evalBool(prog cel.Program, input map[string]any) (bool, error) {
	val, _, err := prog.Eval(input)
	if err != nil {
		return false, &verifier.Fault{Op: "celsolver.eval", Err: err}
	}
	b, ok := val.Value().(bool)
	if !ok {
		return false, &verifier.Fault{Op: "celsolver.eval", Err: fmt.Errorf("non-boolean result %v", val.Value())}
	}
	return b, nil
}
