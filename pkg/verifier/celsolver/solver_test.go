package celsolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/seal"
	"github.com/provenia-labs/proofrun/pkg/verifier"
)

func traceWith(t *testing.T, exprs ...string) *logic.Trace {
	t.Helper()
	goal, err := logic.NewStatement("goal", "q", logic.ProvenanceGoal)
	require.NoError(t, err)
	tr, err := logic.NewTrace(goal)
	require.NoError(t, err)
	chain := seal.NewChain()
	for i, expr := range exprs {
		st, err := logic.NewStatement(string(rune('a'+i)), expr, logic.ProvenanceAssumption)
		require.NoError(t, err)
		step, err := chain.Append(st)
		require.NoError(t, err)
		require.NoError(t, tr.Append(step))
	}
	return tr
}

func derived(t *testing.T, expr string) logic.Statement {
	t.Helper()
	st, err := logic.NewStatement("cand", expr, logic.ProvenanceDerived)
	require.NoError(t, err)
	return st
}

func TestNewRejectsBadUniverse(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	big := make([]string, MaxVars+1)
	for i := range big {
		big[i] = "v" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	_, err = New(big)
	assert.Error(t, err)
}

func TestImplicationValid(t *testing.T) {
	s, err := New([]string{"p", "q"})
	require.NoError(t, err)

	tr := traceWith(t, "p", "!p || q")
	v, err := s.Check(context.Background(), derived(t, "q"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)
}

func TestInvalidYieldsWitness(t *testing.T) {
	s, err := New([]string{"p", "q"})
	require.NoError(t, err)

	tr := traceWith(t, "p")
	v, err := s.Check(context.Background(), derived(t, "q"), tr)
	require.NoError(t, err)
	require.Equal(t, verifier.VerdictInvalid, v.Kind)
	require.NotNil(t, v.Witness)
	assert.True(t, v.Witness.Assignment["p"])
	assert.False(t, v.Witness.Assignment["q"])
}

func TestRicherPredicates(t *testing.T) {
	s, err := New([]string{"p", "q", "r"})
	require.NoError(t, err)

	tr := traceWith(t, "p && q")
	v, err := s.Check(context.Background(), derived(t, "p || r"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)

	v, err = s.Check(context.Background(), derived(t, "r == p"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictInvalid, v.Kind)
}

func TestAssumptionNeedsOnlyConsistency(t *testing.T) {
	s, err := New([]string{"p", "q"})
	require.NoError(t, err)

	st, err := logic.NewStatement("assume", "p", logic.ProvenanceAssumption)
	require.NoError(t, err)
	v, err := s.Check(context.Background(), st, traceWith(t, "!p || q"))
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)
}

func TestContradictoryAssumptionRejected(t *testing.T) {
	s, err := New([]string{"p", "q"})
	require.NoError(t, err)

	st, err := logic.NewStatement("assume", "!q", logic.ProvenanceAssumption)
	require.NoError(t, err)
	v, err := s.Check(context.Background(), st, traceWith(t, "p", "!p || q"))
	require.NoError(t, err)
	require.Equal(t, verifier.VerdictInvalid, v.Kind)
	require.NotNil(t, v.Witness)
	assert.Contains(t, v.Witness.Detail, "contradicts")
}

func TestCompileErrorIsFault(t *testing.T) {
	s, err := New([]string{"p"})
	require.NoError(t, err)

	tr := traceWith(t)
	_, cerr := s.Check(context.Background(), derived(t, "p &&"), tr)
	assert.True(t, verifier.IsFault(cerr))

	// Non-boolean output is also a fault, not a verdict.
	_, cerr = s.Check(context.Background(), derived(t, "1 + 2"), tr)
	assert.True(t, verifier.IsFault(cerr))
}

func TestCheckIsIdempotent(t *testing.T) {
	s, err := New([]string{"p", "q"})
	require.NoError(t, err)
	tr := traceWith(t, "p")
	cand := derived(t, "q")

	first, err := s.Check(context.Background(), cand, tr)
	require.NoError(t, err)
	second, err := s.Check(context.Background(), cand, tr)
	require.NoError(t, err)
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Witness.Assignment, second.Witness.Assignment)
}
