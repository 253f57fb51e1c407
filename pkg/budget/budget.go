// Package budget enforces the resource ceilings of one proof attempt: token
// cost, search depth, and wall-clock time. Budget state is monotonic within
// an attempt and owned by exactly one orchestrator; it is never shared.
package budget

import (
	"fmt"
	"time"
)

// Dimension tags which ceiling a budget decision refers to.
type Dimension string

const (
	DimensionTokens Dimension = "tokens"
	DimensionDepth  Dimension = "depth"
	DimensionTime   Dimension = "time"
)

// Config fixes the ceilings for one attempt. All three must be positive.
type Config struct {
	MaxTokens int64         `json:"max_tokens" yaml:"max_tokens"`
	MaxDepth  int           `json:"max_depth" yaml:"max_depth"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// Validate checks the ceilings.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("budget config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("budget config: max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("budget config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Error is a typed budget violation, tagged with the breached dimension.
type Error struct {
	Dimension Dimension `json:"dimension"`
	Limit     int64     `json:"limit"`
	Consumed  int64     `json:"consumed"`
}

func (e *Error) Error() string {
	unit := string(e.Dimension)
	if e.Dimension == DimensionTime {
		unit = "ms"
	}
	return fmt.Sprintf("budget exceeded on %s: consumed %d, limit %d %s", e.Dimension, e.Consumed, e.Limit, unit)
}

// RiskBudget tracks consumption against the configured ceilings. Counters
// only ever grow; there is no replenish operation mid-attempt.
type RiskBudget struct {
	cfg            Config
	tokensConsumed int64
	depthReached   int
	startedAt      time.Time
	clock          func() time.Time
}

// New creates a budget for one attempt and starts its wall clock.
func New(cfg Config) (*RiskBudget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &RiskBudget{cfg: cfg, clock: time.Now}
	b.startedAt = b.clock()
	return b, nil
}

// WithClock overrides the clock for testing. Resets the attempt start to the
// injected clock's current reading.
func (b *RiskBudget) WithClock(clock func() time.Time) *RiskBudget {
	b.clock = clock
	b.startedAt = clock()
	return b
}

// ChargeTokens records token cost reported by a prover or verifier call.
func (b *RiskBudget) ChargeTokens(n int64) {
	if n > 0 {
		b.tokensConsumed += n
	}
}

// ChargeStep records one accepted step against the depth ceiling.
func (b *RiskBudget) ChargeStep() {
	b.depthReached++
}

// Elapsed returns wall-clock time since the attempt started.
func (b *RiskBudget) Elapsed() time.Duration {
	return b.clock().Sub(b.startedAt)
}

// Deadline returns the absolute wall-clock deadline for the attempt. Callers
// derive the context deadline passed into prover and verifier calls from it.
func (b *RiskBudget) Deadline() time.Time {
	return b.startedAt.Add(b.cfg.Timeout)
}

// Check returns a *Error if any ceiling is breached. Evaluated before every
// generate/verify round: a round in flight may finish its verification, but
// no new round starts once a ceiling is hit.
func (b *RiskBudget) Check() error {
	if b.tokensConsumed >= b.cfg.MaxTokens {
		return &Error{Dimension: DimensionTokens, Limit: b.cfg.MaxTokens, Consumed: b.tokensConsumed}
	}
	if b.depthReached >= b.cfg.MaxDepth {
		return &Error{Dimension: DimensionDepth, Limit: int64(b.cfg.MaxDepth), Consumed: int64(b.depthReached)}
	}
	if elapsed := b.Elapsed(); elapsed >= b.cfg.Timeout {
		return &Error{Dimension: DimensionTime, Limit: b.cfg.Timeout.Milliseconds(), Consumed: elapsed.Milliseconds()}
	}
	return nil
}

// Snapshot is a point-in-time copy of consumption for result reporting.
type Snapshot struct {
	TokensConsumed int64         `json:"tokens_consumed"`
	DepthReached   int           `json:"depth_reached"`
	Elapsed        time.Duration `json:"elapsed"`
	MaxTokens      int64         `json:"max_tokens"`
	MaxDepth       int           `json:"max_depth"`
	Timeout        time.Duration `json:"timeout"`
}

// Snapshot returns the current consumption against the fixed ceilings.
func (b *RiskBudget) Snapshot() Snapshot {
	return Snapshot{
		TokensConsumed: b.tokensConsumed,
		DepthReached:   b.depthReached,
		Elapsed:        b.Elapsed(),
		MaxTokens:      b.cfg.MaxTokens,
		MaxDepth:       b.cfg.MaxDepth,
		Timeout:        b.cfg.Timeout,
	}
}

// Remaining reports headroom per dimension, for prover budget hints.
func (b *RiskBudget) Remaining() (tokens int64, depth int) {
	tokens = b.cfg.MaxTokens - b.tokensConsumed
	if tokens < 0 {
		tokens = 0
	}
	depth = b.cfg.MaxDepth - b.depthReached
	if depth < 0 {
		depth = 0
	}
	return tokens, depth
}
