package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/provenia-labs/proofrun/pkg/orchestrator"
	"github.com/provenia-labs/proofrun/pkg/store"
	"github.com/provenia-labs/proofrun/pkg/telemetry"
	"github.com/provenia-labs/proofrun/pkg/verifier"
	"github.com/provenia-labs/proofrun/pkg/verifier/celsolver"
	"github.com/provenia-labs/proofrun/pkg/verifier/clausesolver"
)

func runAttemptCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("attempt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "attempt config file (YAML)")
	quiet := fs.Bool("quiet", false, "suppress per-event logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *configPath == "" {
		fmt.Fprintln(stderr, "proofrun attempt: -config is required")
		return 2
	}

	cfg, err := LoadAttemptConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "proofrun attempt: %v\n", err)
		return 1
	}

	res, err := executeAttempt(cfg, stderr, *quiet)
	if err != nil {
		fmt.Fprintf(stderr, "proofrun attempt: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "proofrun attempt: encode result: %v\n", err)
		return 1
	}
	if res.Status != orchestrator.StatusProven {
		return 1
	}
	return 0
}

func executeAttempt(cfg *AttemptConfig, stderr io.Writer, quiet bool) (*orchestrator.Result, error) {
	goal, err := cfg.GoalStatement()
	if err != nil {
		return nil, err
	}
	p, err := cfg.Prover()
	if err != nil {
		return nil, err
	}
	v, err := buildVerifier(cfg)
	if err != nil {
		return nil, err
	}
	ocfg, err := cfg.OrchestratorConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	sinks := telemetry.Multi{}
	if !quiet {
		sinks = append(sinks, telemetry.NewSlog(logger))
	}
	if cfg.AuditLog != "" {
		f, err := os.OpenFile(cfg.AuditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		defer func() { _ = f.Close() }()
		sinks = append(sinks, telemetry.NewAuditWithWriter(f))
	}

	o, err := orchestrator.New(p, v, ocfg,
		orchestrator.WithSink(sinks),
		orchestrator.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	res := o.Run(context.Background(), goal)

	if cfg.StorePath != "" {
		s, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.Close() }()
		if err := s.Save(context.Background(), res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func buildVerifier(cfg *AttemptConfig) (verifier.Verifier, error) {
	switch cfg.Solver {
	case "", "clauses":
		return clausesolver.New(), nil
	case "cel":
		return celsolver.New(cfg.CELVars)
	default:
		return nil, fmt.Errorf("unknown solver %q", cfg.Solver)
	}
}
