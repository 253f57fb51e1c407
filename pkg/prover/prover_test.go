package prover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

func cand(t *testing.T, id, expr string, cost int64) Candidate {
	t.Helper()
	st, err := logic.NewStatement(id, expr, logic.ProvenanceDerived)
	require.NoError(t, err)
	return Candidate{Statement: st, Cost: cost}
}

func emptyTrace(t *testing.T) (*logic.Trace, logic.Statement) {
	t.Helper()
	goal, err := logic.NewStatement("goal", "p", logic.ProvenanceGoal)
	require.NoError(t, err)
	tr, err := logic.NewTrace(goal)
	require.NoError(t, err)
	return tr, goal
}

func TestScriptedReplaysRoundsThenExhausts(t *testing.T) {
	tr, goal := emptyTrace(t)
	p := NewScripted(
		[]Candidate{cand(t, "c0", "p", 5)},
		[]Candidate{cand(t, "c1", "q", 3), cand(t, "c2", "r", 2)},
	)

	round, err := p.Propose(context.Background(), tr, goal, Hint{})
	require.NoError(t, err)
	require.Len(t, round, 1)
	assert.Equal(t, "c0", round[0].Statement.ID)

	round, err = p.Propose(context.Background(), tr, goal, Hint{})
	require.NoError(t, err)
	assert.Len(t, round, 2)

	_, err = p.Propose(context.Background(), tr, goal, Hint{})
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.Equal(t, 2, p.Calls())
}

func TestScriptedHonorsMaxCandidates(t *testing.T) {
	tr, goal := emptyTrace(t)
	p := NewScripted([]Candidate{cand(t, "c0", "p", 1), cand(t, "c1", "q", 1)})

	round, err := p.Propose(context.Background(), tr, goal, Hint{MaxCandidates: 1})
	require.NoError(t, err)
	assert.Len(t, round, 1)
}

func TestScriptedEmptyRoundIsNoCandidate(t *testing.T) {
	tr, goal := emptyTrace(t)
	p := NewScripted([]Candidate{})

	_, err := p.Propose(context.Background(), tr, goal, Hint{})
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestScriptedCancelledContext(t *testing.T) {
	tr, goal := emptyTrace(t)
	p := NewScripted([]Candidate{cand(t, "c0", "p", 1)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Propose(ctx, tr, goal, Hint{})

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, pe, context.Canceled)
}

func TestPacedDelegates(t *testing.T) {
	tr, goal := emptyTrace(t)
	p := NewPaced(NewScripted([]Candidate{cand(t, "c0", "p", 1)}), 100, 1)

	round, err := p.Propose(context.Background(), tr, goal, Hint{})
	require.NoError(t, err)
	assert.Len(t, round, 1)
}

func TestPacedRespectsDeadline(t *testing.T) {
	tr, goal := emptyTrace(t)
	// Limiter with zero burst can never hand out a token; the wait must fail
	// against the ctx deadline instead of hanging.
	p := NewPaced(NewScripted([]Candidate{cand(t, "c0", "p", 1)}), 0.0001, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Propose(ctx, tr, goal, Hint{})
	var pe *Error
	assert.True(t, errors.As(err, &pe))
}
