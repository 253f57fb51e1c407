package prover

import (
	"context"
	"sync"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// Scripted replays a fixed sequence of proposal rounds, then reports
// ErrNoCandidate. Used by tests and the CLI demo; exercises the
// cost-reporting and exhaustion paths without an external backend.
type Scripted struct {
	mu     sync.Mutex
	rounds [][]Candidate
	next   int
}

// NewScripted builds a scripted prover from per-round candidate lists.
func NewScripted(rounds ...[]Candidate) *Scripted {
	return &Scripted{rounds: rounds}
}

// Propose returns the next scripted round.
func (s *Scripted) Propose(ctx context.Context, trace *logic.Trace, goal logic.Statement, hint Hint) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "scripted.propose", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.rounds) {
		return nil, ErrNoCandidate
	}
	round := s.rounds[s.next]
	s.next++
	if len(round) == 0 {
		return nil, ErrNoCandidate
	}
	if hint.MaxCandidates > 0 && len(round) > hint.MaxCandidates {
		round = round[:hint.MaxCandidates]
	}
	return round, nil
}

// Calls reports how many rounds have been consumed.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
