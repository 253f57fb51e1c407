// Package telemetry is the observable side channel of the proof loop. The
// orchestrator emits one event per state transition; sinks decide how events
// are persisted or displayed. The core never blocks on a sink outcome.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind labels one event category.
type Kind string

const (
	KindAttemptStarted  Kind = "attempt_started"
	KindVerifiedStep    Kind = "verified_step"
	KindRejectedStep    Kind = "rejected_step"
	KindBudgetHalt      Kind = "budget_halt"
	KindProverError     Kind = "prover_error"
	KindVerifierError   Kind = "verifier_error"
	KindAttemptFinished Kind = "attempt_finished"
)

// Event is one structured telemetry record.
type Event struct {
	ID        string         `json:"id"`
	AttemptID string         `json:"attempt_id"`
	Kind      Kind           `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// NewEvent builds an event with a fresh ID and UTC timestamp.
func NewEvent(attemptID string, kind Kind, fields map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		AttemptID: attemptID,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
}

// Sink receives events. Implementations must be safe for concurrent use
// from independent attempts.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

// Multi fans one event out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Emit(ctx, ev)
	}
}

// Recorder is an in-memory sink for tests and audits.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(_ context.Context, ev Event) {
	r.Events = append(r.Events, ev)
}

// Count returns how many recorded events carry the given kind.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
