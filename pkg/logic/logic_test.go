package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementValidate(t *testing.T) {
	_, err := NewStatement("", "p", ProvenanceGoal)
	assert.Error(t, err)

	_, err = NewStatement("s1", "  ", ProvenanceDerived)
	assert.Error(t, err)

	_, err = NewStatement("s1", "p", Provenance("oracle"))
	assert.Error(t, err)

	s, err := NewStatement("s1", "p & q", ProvenanceAssumption)
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
}

func TestStatementEqualIsStructural(t *testing.T) {
	a, _ := NewStatement("s1", "p", ProvenanceDerived)
	b, _ := NewStatement("s1", "p", ProvenanceDerived)
	c, _ := NewStatement("s1", "p", ProvenanceAssumption)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTraceRejectsNonGoalRoot(t *testing.T) {
	st, _ := NewStatement("s1", "p", ProvenanceDerived)
	_, err := NewTrace(st)
	assert.Error(t, err)
}

func TestTraceAppendEnforcesContinuity(t *testing.T) {
	goal, _ := NewStatement("g", "p", ProvenanceGoal)
	tr, err := NewTrace(goal)
	require.NoError(t, err)

	st, _ := NewStatement("s0", "p", ProvenanceDerived)
	require.NoError(t, tr.Append(Step{Index: 0, Statement: st, PrevSeal: "genesis", Seal: "aaa"}))

	// wrong index
	err = tr.Append(Step{Index: 0, Statement: st, PrevSeal: "aaa", Seal: "bbb"})
	assert.Error(t, err)

	// broken link
	err = tr.Append(Step{Index: 1, Statement: st, PrevSeal: "zzz", Seal: "bbb"})
	assert.Error(t, err)

	// empty seal
	err = tr.Append(Step{Index: 1, Statement: st, PrevSeal: "aaa"})
	assert.Error(t, err)

	require.NoError(t, tr.Append(Step{Index: 1, Statement: st, PrevSeal: "aaa", Seal: "bbb"}))
	assert.Equal(t, 2, tr.Len())
}

func TestTraceCloneIsIndependent(t *testing.T) {
	goal, _ := NewStatement("g", "p", ProvenanceGoal)
	tr, _ := NewTrace(goal)
	st, _ := NewStatement("s0", "p", ProvenanceDerived)
	require.NoError(t, tr.Append(Step{Index: 0, Statement: st, PrevSeal: "genesis", Seal: "aaa"}))

	cp := tr.Clone()
	st2, _ := NewStatement("s1", "q", ProvenanceDerived)
	require.NoError(t, cp.Append(Step{Index: 1, Statement: st2, PrevSeal: "aaa", Seal: "bbb"}))

	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, 2, cp.Len())
}
