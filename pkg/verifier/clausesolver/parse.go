package clausesolver

import (
	"fmt"
	"regexp"
	"strings"
)

// Literal is a possibly-negated propositional variable.
type Literal struct {
	Var string
	Neg bool
}

// Clause is a disjunction of literals.
type Clause []Literal

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse reads the clause expression grammar:
//
//	expr   := clause ("&" clause)*
//	clause := disj | lit "->" disj
//	disj   := lit ("|" lit)*
//	lit    := "!"? identifier
//
// "a -> b | c" desugars to "!a | b | c". The payload stays opaque to the
// core; only this adapter interprets it.
func Parse(expr string) ([]Clause, error) {
	var clauses []Clause
	for _, part := range strings.Split(expr, "&") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("clausesolver: empty clause in %q", expr)
		}
		clause, err := parseClause(part)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func parseClause(s string) (Clause, error) {
	if lhs, rhs, ok := strings.Cut(s, "->"); ok {
		ante, err := parseLiteral(strings.TrimSpace(lhs))
		if err != nil {
			return nil, err
		}
		rest, err := parseDisjunction(rhs)
		if err != nil {
			return nil, err
		}
		return append(Clause{{Var: ante.Var, Neg: !ante.Neg}}, rest...), nil
	}
	return parseDisjunction(s)
}

func parseDisjunction(s string) (Clause, error) {
	var clause Clause
	for _, tok := range strings.Split(s, "|") {
		lit, err := parseLiteral(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		clause = append(clause, lit)
	}
	return clause, nil
}

func parseLiteral(tok string) (Literal, error) {
	neg := false
	for strings.HasPrefix(tok, "!") {
		neg = !neg
		tok = strings.TrimSpace(strings.TrimPrefix(tok, "!"))
	}
	if !identPattern.MatchString(tok) {
		return Literal{}, fmt.Errorf("clausesolver: bad literal %q", tok)
	}
	return Literal{Var: tok, Neg: neg}, nil
}
