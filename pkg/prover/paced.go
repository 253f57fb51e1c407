package prover

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// Paced wraps a Prover with a rate limiter so external generation backends
// are not called faster than their quota allows. The wait respects the ctx
// deadline, so the attempt's wall-clock ceiling still wins.
type Paced struct {
	inner   Prover
	limiter *rate.Limiter
}

// NewPaced wraps inner with the given call rate and burst.
func NewPaced(inner Prover, callsPerSecond float64, burst int) *Paced {
	return &Paced{inner: inner, limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst)}
}

// Propose waits for a rate token, then delegates.
func (p *Paced) Propose(ctx context.Context, trace *logic.Trace, goal logic.Statement, hint Hint) ([]Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &Error{Op: "paced.wait", Err: err}
	}
	return p.inner.Propose(ctx, trace, goal, hint)
}
