package telemetry

import (
	"context"
	"log/slog"
)

// Slog logs one structured record per event. The default sink for callers
// that want events in their process logs without extra infrastructure.
type Slog struct {
	logger *slog.Logger
}

// NewSlog wraps a logger; nil falls back to slog.Default().
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

func (s *Slog) Emit(ctx context.Context, ev Event) {
	attrs := []any{
		slog.String("event_id", ev.ID),
		slog.String("attempt_id", ev.AttemptID),
		slog.Time("at", ev.Timestamp),
	}
	for k, v := range ev.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.logger.Log(ctx, slog.LevelInfo, string(ev.Kind), attrs...)
}
