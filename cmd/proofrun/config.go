package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/provenia-labs/proofrun/pkg/budget"
	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/orchestrator"
	"github.com/provenia-labs/proofrun/pkg/prover"
)

// StatementConfig describes one statement in the attempt file.
type StatementConfig struct {
	ID   string `yaml:"id"`
	Expr string `yaml:"expr"`
	Cost int64  `yaml:"cost"`

	// Provenance is "derived" (default) or "assumption". Assumptions are
	// admitted on consistency alone; derived steps must be entailed.
	Provenance string `yaml:"provenance"`
}

func (sc StatementConfig) provenance() (logic.Provenance, error) {
	switch sc.Provenance {
	case "", "derived":
		return logic.ProvenanceDerived, nil
	case "assumption":
		return logic.ProvenanceAssumption, nil
	default:
		return "", fmt.Errorf("config: statement %q: unknown provenance %q", sc.ID, sc.Provenance)
	}
}

// AttemptConfig is the YAML shape consumed by `proofrun attempt`.
type AttemptConfig struct {
	Goal StatementConfig `yaml:"goal"`

	// Solver selects the in-process verifier backend: "clauses" or "cel".
	Solver  string   `yaml:"solver"`
	CELVars []string `yaml:"cel_vars"`

	Budget struct {
		MaxTokens int64 `yaml:"max_tokens"`
		MaxDepth  int   `yaml:"max_depth"`
		TimeoutMS int64 `yaml:"timeout_ms"`
	} `yaml:"budget"`

	BacktrackThreshold int `yaml:"backtrack_threshold"`

	// Discharge is an optional CEL predicate over {depth, last_expr,
	// goal_expr}; empty means the default goal-match test.
	Discharge string `yaml:"discharge"`

	// Steps scripts the demo prover: one candidate list per round.
	Steps [][]StatementConfig `yaml:"steps"`

	// ProverRate throttles prover calls per second; zero means unpaced.
	ProverRate float64 `yaml:"prover_rate"`

	// StorePath, when set, persists the result to a SQLite database.
	StorePath string `yaml:"store_path"`

	// AuditLog, when set, appends JSON-lines telemetry events to a file.
	AuditLog string `yaml:"audit_log"`
}

// LoadAttemptConfig reads and validates an attempt file.
func LoadAttemptConfig(path string) (*AttemptConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg AttemptConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints.
func (c *AttemptConfig) Validate() error {
	if c.Goal.ID == "" || c.Goal.Expr == "" {
		return fmt.Errorf("config: goal needs id and expr")
	}
	switch c.Solver {
	case "", "clauses":
	case "cel":
		if len(c.CELVars) == 0 {
			return fmt.Errorf("config: solver %q needs cel_vars", c.Solver)
		}
	default:
		return fmt.Errorf("config: unknown solver %q (want clauses or cel)", c.Solver)
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("config: no prover steps scripted")
	}
	for _, round := range c.Steps {
		for _, sc := range round {
			if _, err := sc.provenance(); err != nil {
				return err
			}
		}
	}
	return c.BudgetConfig().Validate()
}

// BudgetConfig converts the YAML ceilings.
func (c *AttemptConfig) BudgetConfig() budget.Config {
	return budget.Config{
		MaxTokens: c.Budget.MaxTokens,
		MaxDepth:  c.Budget.MaxDepth,
		Timeout:   time.Duration(c.Budget.TimeoutMS) * time.Millisecond,
	}
}

// GoalStatement builds the goal statement.
func (c *AttemptConfig) GoalStatement() (logic.Statement, error) {
	return logic.NewStatement(c.Goal.ID, c.Goal.Expr, logic.ProvenanceGoal)
}

// Prover builds the scripted (and optionally paced) demo prover.
func (c *AttemptConfig) Prover() (prover.Prover, error) {
	rounds := make([][]prover.Candidate, 0, len(c.Steps))
	for i, round := range c.Steps {
		cands := make([]prover.Candidate, 0, len(round))
		for _, sc := range round {
			prov, err := sc.provenance()
			if err != nil {
				return nil, err
			}
			st, err := logic.NewStatement(sc.ID, sc.Expr, prov)
			if err != nil {
				return nil, fmt.Errorf("config: steps round %d: %w", i, err)
			}
			cands = append(cands, prover.Candidate{Statement: st, Cost: sc.Cost})
		}
		rounds = append(rounds, cands)
	}
	var p prover.Prover = prover.NewScripted(rounds...)
	if c.ProverRate > 0 {
		p = prover.NewPaced(p, c.ProverRate, 1)
	}
	return p, nil
}

// OrchestratorConfig assembles the loop configuration.
func (c *AttemptConfig) OrchestratorConfig() (orchestrator.Config, error) {
	cfg := orchestrator.Config{
		Budget:             c.BudgetConfig(),
		BacktrackThreshold: c.BacktrackThreshold,
	}
	if c.Discharge != "" {
		fn, err := orchestrator.CELDischarge(c.Discharge)
		if err != nil {
			return orchestrator.Config{}, err
		}
		cfg.Discharge = fn
	}
	return cfg, nil
}
