package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/provenia-labs/proofrun/pkg/budget"
	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/prover"
	"github.com/provenia-labs/proofrun/pkg/seal"
	"github.com/provenia-labs/proofrun/pkg/telemetry"
	"github.com/provenia-labs/proofrun/pkg/verifier"
)

// Orchestrator runs proof attempts. One Orchestrator may serve many
// attempts; every attempt owns its own trace, budget, and seal chain, so
// independent attempts can run concurrently.
type Orchestrator struct {
	prover   prover.Prover
	verifier verifier.Verifier
	cfg      Config
	sink     telemetry.Sink
	logger   *slog.Logger
	clock    func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSink routes telemetry events to the given sink.
func WithSink(sink telemetry.Sink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithClock overrides the clock for testing.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// New validates the configuration and wires the capability providers.
func New(p prover.Prover, v verifier.Verifier, cfg Config, opts ...Option) (*Orchestrator, error) {
	if p == nil {
		return nil, fmt.Errorf("orchestrator: nil prover")
	}
	if v == nil {
		return nil, fmt.Errorf("orchestrator: nil verifier")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		prover:   p,
		verifier: v,
		cfg:      cfg.withDefaults(),
		sink:     telemetry.Nop{},
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// attempt bundles the state owned by one run.
type attempt struct {
	id     string
	status Status
	trace  *logic.Trace
	chain  *seal.Chain
	bud    *budget.RiskBudget
	result *Result
}

func (a *attempt) transition(next Status) {
	if a.status.Terminal() {
		return
	}
	a.status = next
}

// Run executes one attempt from PENDING to a terminal status. It never
// panics past the boundary and never returns an error: every failure is
// captured in the Result.
func (o *Orchestrator) Run(ctx context.Context, goal logic.Statement) *Result {
	a := &attempt{
		id:     uuid.NewString(),
		status: StatusPending,
		result: &Result{StartedAt: o.clock().UTC()},
	}
	a.result.AttemptID = a.id

	if err := goal.Validate(); err != nil {
		return o.finish(ctx, a, StatusError, ErrorKindInvalidInput, fmt.Sprintf("goal rejected: %v", err))
	}
	if goal.Provenance != logic.ProvenanceGoal {
		return o.finish(ctx, a, StatusError, ErrorKindInvalidInput,
			fmt.Sprintf("goal %s carries provenance %q, want %q", goal.ID, goal.Provenance, logic.ProvenanceGoal))
	}

	trace, err := logic.NewTrace(goal)
	if err != nil {
		return o.finish(ctx, a, StatusError, ErrorKindInvalidInput, err.Error())
	}
	bud, err := budget.New(o.cfg.Budget)
	if err != nil {
		return o.finish(ctx, a, StatusError, ErrorKindInvalidInput, err.Error())
	}
	bud.WithClock(o.clock)

	a.trace = trace
	a.chain = seal.NewChain()
	a.bud = bud
	a.result.Trace = trace

	// The wall-clock ceiling doubles as the sole cancellation mechanism;
	// prover and verifier calls see it as their context deadline.
	runCtx, cancel := context.WithDeadline(ctx, bud.Deadline())
	defer cancel()

	o.emit(ctx, a, telemetry.KindAttemptStarted, map[string]any{"goal_id": goal.ID})
	a.transition(StatusGenerating)

	consecutiveFailures := 0
	for {
		// Exhaustion is checked before committing to a new round; a round
		// in flight finishes its verification, but no new one starts.
		if berr := a.bud.Check(); berr != nil {
			fields := map[string]any{}
			var be *budget.Error
			if errors.As(berr, &be) {
				fields["dimension"] = string(be.Dimension)
			}
			o.emit(ctx, a, telemetry.KindBudgetHalt, fields)
			return o.finish(ctx, a, StatusHaltedBudget, "", berr.Error())
		}

		a.result.Rounds++
		round := a.result.Rounds

		candidates, perr := o.propose(runCtx, a)
		if perr != nil {
			if errors.Is(perr, prover.ErrNoCandidate) {
				consecutiveFailures++
				if consecutiveFailures >= o.cfg.BacktrackThreshold {
					return o.finish(ctx, a, StatusRefuted, "",
						fmt.Sprintf("prover exhausted: prefix of length %d failed %d consecutive rounds", a.trace.Len(), consecutiveFailures))
				}
				continue
			}
			o.emit(ctx, a, telemetry.KindProverError, map[string]any{"error": perr.Error()})
			return o.finish(ctx, a, StatusError, ErrorKindProverFailure, fmt.Sprintf("prover failure: %v", perr))
		}

		a.transition(StatusVerifying)
		accepted, verr := o.verifyRound(ctx, runCtx, a, round, candidates)
		if verr != nil {
			return o.finish(ctx, a, StatusError, ErrorKindVerifierFault, fmt.Sprintf("verifier fault repeated: %v", verr))
		}

		if accepted {
			consecutiveFailures = 0
			if o.cfg.Discharge(a.trace, a.trace.Goal) {
				head, _ := a.trace.Head()
				return o.finish(ctx, a, StatusProven, "",
					fmt.Sprintf("goal %s discharged by step %d (%s)", a.trace.Goal.ID, head.Index, head.Statement.ID))
			}
		} else {
			consecutiveFailures++
			if consecutiveFailures >= o.cfg.BacktrackThreshold {
				return o.finish(ctx, a, StatusRefuted, "", o.refutationReason(a, consecutiveFailures))
			}
		}
		a.transition(StatusGenerating)
	}
}

// propose asks the prover for the next ranked candidates, charging their
// reported cost. The budget wall clock was checked by the caller.
func (o *Orchestrator) propose(runCtx context.Context, a *attempt) ([]prover.Candidate, error) {
	tokens, depth := a.bud.Remaining()
	hint := prover.Hint{
		TokensRemaining: tokens,
		DepthRemaining:  depth,
		MaxCandidates:   o.cfg.MaxCandidatesPerRound,
	}
	candidates, err := o.prover.Propose(runCtx, a.trace, a.trace.Goal, hint)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, prover.ErrNoCandidate
	}
	for _, c := range candidates {
		a.bud.ChargeTokens(c.Cost)
	}
	return candidates, nil
}

// verifyRound checks candidates in the prover's order and accepts the first
// valid one. A solver fault is retried once per candidate; a second fault in
// a row aborts the round with the repeated fault.
func (o *Orchestrator) verifyRound(ctx, runCtx context.Context, a *attempt, round int, candidates []prover.Candidate) (bool, error) {
	for _, cand := range candidates {
		verdict, err := o.verifier.Check(runCtx, cand.Statement, a.trace)
		if err != nil {
			o.recordFault(ctx, a, round, cand.Statement, err)
			verdict, err = o.verifier.Check(runCtx, cand.Statement, a.trace)
			if err != nil {
				o.recordFault(ctx, a, round, cand.Statement, err)
				return false, err
			}
		}

		switch verdict.Kind {
		case verifier.VerdictValid:
			step, serr := a.chain.Append(cand.Statement)
			if serr != nil {
				return false, serr
			}
			if aerr := a.trace.Append(step); aerr != nil {
				return false, aerr
			}
			a.bud.ChargeStep()
			o.emit(ctx, a, telemetry.KindVerifiedStep, map[string]any{
				"index":        step.Index,
				"statement_id": step.Statement.ID,
				"seal":         step.Seal,
			})
			return true, nil

		case verifier.VerdictInvalid:
			a.result.Failures = append(a.result.Failures, Rejection{
				Round:     round,
				Candidate: cand.Statement,
				Kind:      RejectionInvalid,
				Witness:   verdict.Witness,
				At:        o.clock().UTC(),
			})
			fields := map[string]any{"candidate_id": cand.Statement.ID}
			if verdict.Witness != nil {
				fields["witness"] = verdict.Witness.Detail
			}
			o.emit(ctx, a, telemetry.KindRejectedStep, fields)

		default:
			return false, fmt.Errorf("verifier returned unknown verdict %q", verdict.Kind)
		}
	}
	return false, nil
}

func (o *Orchestrator) recordFault(ctx context.Context, a *attempt, round int, cand logic.Statement, err error) {
	a.result.Failures = append(a.result.Failures, Rejection{
		Round:     round,
		Candidate: cand,
		Kind:      RejectionSolverFault,
		Fault:     err.Error(),
		At:        o.clock().UTC(),
	})
	o.emit(ctx, a, telemetry.KindVerifierError, map[string]any{
		"candidate_id": cand.ID,
		"error":        err.Error(),
	})
}

func (o *Orchestrator) refutationReason(a *attempt, failures int) string {
	reason := fmt.Sprintf("prefix of length %d rejected %d consecutive rounds", a.trace.Len(), failures)
	for i := len(a.result.Failures) - 1; i >= 0; i-- {
		if rej := a.result.Failures[i]; rej.Kind == RejectionInvalid && rej.Witness != nil {
			return fmt.Sprintf("%s; last witness: %s", reason, rej.Witness.Detail)
		}
	}
	return reason
}

// finish seals the terminal state into the result and emits the closing
// event. Idempotent guard: a terminal status never transitions again.
func (o *Orchestrator) finish(ctx context.Context, a *attempt, status Status, errorKind, reason string) *Result {
	a.transition(status)
	a.result.Status = a.status
	a.result.ErrorKind = errorKind
	a.result.Reason = reason
	a.result.FinishedAt = o.clock().UTC()
	if a.result.Trace == nil {
		a.result.Trace = &logic.Trace{}
	}
	if a.bud != nil {
		a.result.Budget = a.bud.Snapshot()
	}

	o.logger.LogAttrs(ctx, slog.LevelInfo, "attempt finished",
		slog.String("attempt_id", a.id),
		slog.String("status", string(a.result.Status)),
		slog.String("reason", reason),
		slog.Int("steps", a.result.Trace.Len()),
		slog.Int("rejections", len(a.result.Failures)),
	)
	o.emit(ctx, a, telemetry.KindAttemptFinished, map[string]any{
		"status": string(a.result.Status),
		"reason": reason,
	})
	return a.result
}

func (o *Orchestrator) emit(ctx context.Context, a *attempt, kind telemetry.Kind, fields map[string]any) {
	o.sink.Emit(ctx, telemetry.NewEvent(a.id, kind, fields))
}
