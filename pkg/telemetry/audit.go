package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Audit writes events as JSON lines to a configurable writer, giving callers
// a durable append-only record of every transition in an attempt.
type Audit struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewAudit creates an audit sink writing to os.Stdout.
func NewAudit() *Audit {
	return NewAuditWithWriter(os.Stdout)
}

// NewAuditWithWriter creates an audit sink writing to the given writer.
// This allows injection for testing and custom sinks.
func NewAuditWithWriter(w io.Writer) *Audit {
	if w == nil {
		w = os.Stdout
	}
	return &Audit{writer: w}
}

func (a *Audit) Emit(_ context.Context, ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	// Best effort: the proof loop never fails because a sink does.
	_ = json.NewEncoder(a.writer).Encode(ev)
}
