package orchestrator

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// DischargeByGoalMatch is the default discharge test: the goal is proven
// once the last accepted statement's expression equals the goal expression.
func DischargeByGoalMatch(trace *logic.Trace, goal logic.Statement) bool {
	head, ok := trace.Head()
	if !ok {
		return false
	}
	return head.Statement.Expr == goal.Expr
}

// CELDischarge compiles a CEL predicate into a DischargeFunc. The predicate
// sees `depth` (int), `last_expr` (string), and `goal_expr` (string), e.g.
// `last_expr == goal_expr && depth >= 2`. A predicate that fails to evaluate
// never discharges.
func CELDischarge(expr string) (DischargeFunc, error) {
	env, err := cel.NewEnv(
		cel.Variable("depth", cel.IntType),
		cel.Variable("last_expr", cel.StringType),
		cel.Variable("goal_expr", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("discharge: env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("discharge: compile %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("discharge: predicate %q is %s, want bool", expr, ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("discharge: program: %w", err)
	}

	return func(trace *logic.Trace, goal logic.Statement) bool {
		lastExpr := ""
		if head, ok := trace.Head(); ok {
			lastExpr = head.Statement.Expr
		}
		val, _, err := prog.Eval(map[string]any{
			"depth":     trace.Len(),
			"last_expr": lastExpr,
			"goal_expr": goal.Expr,
		})
		if err != nil {
			return false
		}
		b, ok := val.Value().(bool)
		return ok && b
	}, nil
}
