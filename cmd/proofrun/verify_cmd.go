package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/provenia-labs/proofrun/pkg/logic"
	"github.com/provenia-labs/proofrun/pkg/seal"
)

// runVerifyCmd checks a sealed trace offline. The input is either a bare
// trace JSON or a full attempt result (with a "trace" field).
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tracePath := fs.String("trace", "", "trace or attempt result file (JSON)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *tracePath == "" {
		fmt.Fprintln(stderr, "proofrun verify: -trace is required")
		return 2
	}

	trace, err := loadTrace(*tracePath)
	if err != nil {
		fmt.Fprintf(stderr, "proofrun verify: %v\n", err)
		return 1
	}

	report := seal.Verify(trace)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "proofrun verify: encode report: %v\n", err)
		return 1
	}
	if !report.Verified {
		return 1
	}
	return 0
}

func loadTrace(path string) (*logic.Trace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var wrapped struct {
		Trace *logic.Trace `json:"trace"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Trace != nil && wrapped.Trace.Goal.ID != "" {
		return wrapped.Trace, nil
	}

	var trace logic.Trace
	if err := json.Unmarshal(raw, &trace); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if trace.Goal.ID == "" {
		return nil, fmt.Errorf("parse %s: no trace found", path)
	}
	return &trace, nil
}
