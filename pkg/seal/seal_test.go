package seal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

func buildTrace(t *testing.T, exprs ...string) *logic.Trace {
	t.Helper()
	goal, err := logic.NewStatement("goal", "p", logic.ProvenanceGoal)
	require.NoError(t, err)
	tr, err := logic.NewTrace(goal)
	require.NoError(t, err)

	chain := NewChain()
	for i, expr := range exprs {
		st, err := logic.NewStatement(stID(i), expr, logic.ProvenanceDerived)
		require.NoError(t, err)
		step, err := chain.Append(st)
		require.NoError(t, err)
		require.NoError(t, tr.Append(step))
	}
	return tr
}

func stID(i int) string {
	return string(rune('a'+i)) + "-step"
}

func TestComputeIsDeterministic(t *testing.T) {
	st, _ := logic.NewStatement("s0", "p & q", logic.ProvenanceDerived)

	d1, err := Compute(0, st, Genesis)
	require.NoError(t, err)
	d2, err := Compute(0, st, Genesis)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64) // sha256 hex
}

func TestComputeSensitivity(t *testing.T) {
	st, _ := logic.NewStatement("s0", "p", logic.ProvenanceDerived)
	base, _ := Compute(0, st, Genesis)

	other, _ := Compute(1, st, Genesis)
	assert.NotEqual(t, base, other, "index must be bound into the seal")

	mutated := st
	mutated.Expr = "q"
	other, _ = Compute(0, mutated, Genesis)
	assert.NotEqual(t, base, other, "statement must be bound into the seal")

	other, _ = Compute(0, st, "not-genesis")
	assert.NotEqual(t, base, other, "previous seal must be bound into the seal")
}

func TestChainAppendLinks(t *testing.T) {
	chain := NewChain()
	assert.Equal(t, Genesis, chain.Head())

	st0, _ := logic.NewStatement("s0", "p", logic.ProvenanceDerived)
	step0, err := chain.Append(st0)
	require.NoError(t, err)
	assert.Equal(t, 0, step0.Index)
	assert.Equal(t, Genesis, step0.PrevSeal)
	assert.Equal(t, step0.Seal, chain.Head())

	st1, _ := logic.NewStatement("s1", "q", logic.ProvenanceDerived)
	step1, err := chain.Append(st1)
	require.NoError(t, err)
	assert.Equal(t, step0.Seal, step1.PrevSeal)
	assert.Equal(t, 2, chain.Len())
}

func TestVerifyChainRoundTrip(t *testing.T) {
	tr := buildTrace(t, "p", "p -> q", "q")
	require.NoError(t, VerifyChain(tr))

	report := Verify(tr)
	assert.True(t, report.Verified)
	assert.Zero(t, report.IssueCount)
	assert.Len(t, report.Checks, 4)
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	tr := buildTrace(t, "p", "q", "r")

	tampered := tr.Clone()
	tampered.Steps[1].Statement.Expr = "not-q"

	err := VerifyChain(tampered)
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err))

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, "seal", ie.Field)

	report := Verify(tampered)
	assert.False(t, report.Verified)
}

func TestVerifyChainDetectsBrokenLink(t *testing.T) {
	tr := buildTrace(t, "p", "q")
	tampered := tr.Clone()
	tampered.Steps[1].PrevSeal = "forged"

	var ie *IntegrityError
	require.ErrorAs(t, VerifyChain(tampered), &ie)
	assert.Equal(t, "prev_seal", ie.Field)
}

func TestVerifyEmptyTrace(t *testing.T) {
	goal, _ := logic.NewStatement("goal", "p", logic.ProvenanceGoal)
	tr, _ := logic.NewTrace(goal)
	require.NoError(t, VerifyChain(tr))
	assert.True(t, Verify(tr).Verified)
}
