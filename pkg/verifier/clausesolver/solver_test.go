package clausesolver

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

func TestParse(t *testing.T) {
	clauses, err := Parse("p -> q | r & !s")
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, Clause{{Var: "p", Neg: true}, {Var: "q"}, {Var: "r"}}, clauses[0])
	assert.Equal(t, Clause{{Var: "s", Neg: true}}, clauses[1])

	_, err = Parse("p | | q")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
	_, err = Parse("p & ")
	assert.Error(t, err)
}

func TestModusPonensIsValid(t *testing.T) {
	tr := traceWith(t, "p", "p -> q")
	v, err := New().Check(context.Background(), derived(t, "q"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)
}

func TestNonSequiturIsInvalidWithWitness(t *testing.T) {
	tr := traceWith(t, "p")
	v, err := New().Check(context.Background(), derived(t, "q"), tr)
	require.NoError(t, err)
	require.Equal(t, verifier.VerdictInvalid, v.Kind)
	require.NotNil(t, v.Witness)
	assert.Equal(t, "cand", v.Witness.CandidateID)
	// The counter-model keeps the prefix true and falsifies the candidate.
	assert.False(t, v.Witness.Assignment["q"])
}

func TestTautologyValidFromEmptyPrefix(t *testing.T) {
	tr := traceWith(t)
	v, err := New().Check(context.Background(), derived(t, "p | !p"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)
}

func TestConjunctionEntailment(t *testing.T) {
	tr := traceWith(t, "p", "q")
	v, err := New().Check(context.Background(), derived(t, "p & q"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)

	v, err = New().Check(context.Background(), derived(t, "p & r"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictInvalid, v.Kind)
}

func TestChainedImplications(t *testing.T) {
	tr := traceWith(t, "p", "p -> q", "q -> r")
	v, err := New().Check(context.Background(), derived(t, "r"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)
}

func assumption(t *testing.T, expr string) logic.Statement {
	t.Helper()
	st, err := logic.NewStatement("assume", expr, logic.ProvenanceAssumption)
	require.NoError(t, err)
	return st
}

func TestAssumptionNeedsOnlyConsistency(t *testing.T) {
	tr := traceWith(t, "p -> q")
	v, err := New().Check(context.Background(), assumption(t, "p"), tr)
	require.NoError(t, err)
	assert.Equal(t, verifier.VerdictValid, v.Kind)
}

func TestContradictoryAssumptionRejected(t *testing.T) {
	tr := traceWith(t, "p", "p -> q")
	v, err := New().Check(context.Background(), assumption(t, "!q"), tr)
	require.NoError(t, err)
	require.Equal(t, verifier.VerdictInvalid, v.Kind)
	require.NotNil(t, v.Witness)
	assert.Contains(t, v.Witness.Detail, "contradicts")
}

func TestMalformedExpressionIsFault(t *testing.T) {
	tr := traceWith(t, "p")
	_, err := New().Check(context.Background(), derived(t, "p ->"), tr)
	require.Error(t, err)
	assert.True(t, verifier.IsFault(err))
}

func TestMalformedPrefixIsFault(t *testing.T) {
	tr := traceWith(t)
	bad, err := logic.NewStatement("bad", "p@", logic.ProvenanceAssumption)
	require.NoError(t, err)
	chain := seal.NewChain()
	step, err := chain.Append(bad)
	require.NoError(t, err)
	require.NoError(t, tr.Append(step))

	_, cerr := New().Check(context.Background(), derived(t, "p"), tr)
	assert.True(t, verifier.IsFault(cerr))
}

func TestCheckIsIdempotent(t *testing.T) {
	tr := traceWith(t, "p -> q")
	cand := derived(t, "q")
	s := New()

	first, err := s.Check(context.Background(), cand, tr)
	require.NoError(t, err)
	second, err := s.Check(context.Background(), cand, tr)
	require.NoError(t, err)

	assert.Equal(t, first.Kind, second.Kind)
	require.NotNil(t, first.Witness)
	assert.Equal(t, first.Witness.Assignment, second.Witness.Assignment)
}

func TestCancelledContextIsFault(t *testing.T) {
	tr := traceWith(t, "p")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Check(ctx, derived(t, "p"), tr)
	assert.True(t, verifier.IsFault(err))
}
