package seal

import (
	"fmt"
	"time"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// VerifyReport is the structured output of offline trace verification.
// Every field is evidence-grade; auditors consume it as-is.
type VerifyReport struct {
	GoalID     string        `json:"goal_id"`
	Verified   bool          `json:"verified"`
	Timestamp  time.Time     `json:"timestamp"`
	Checks     []CheckResult `json:"checks"`
	Summary    string        `json:"summary"`
	IssueCount int           `json:"issue_count"`
}

// CheckResult represents a single verification check.
type CheckResult struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Verify runs the full offline check battery against a trace and returns an
// ordered report. Pure computation: no network, no clock dependency beyond
// the report timestamp.
func Verify(t *logic.Trace) *VerifyReport {
	report := &VerifyReport{
		GoalID:    t.Goal.ID,
		Verified:  true,
		Timestamp: time.Now().UTC(),
	}

	report.add(checkGoal(t))
	report.add(checkIndexes(t))
	report.add(checkLinks(t))
	report.add(checkSeals(t))

	failed := 0
	for _, c := range report.Checks {
		if !c.Pass {
			failed++
		}
	}
	report.IssueCount = failed
	if failed > 0 {
		report.Verified = false
		report.Summary = fmt.Sprintf("FAIL: %d/%d checks failed", failed, len(report.Checks))
	} else {
		report.Summary = fmt.Sprintf("PASS: %d/%d checks passed", len(report.Checks), len(report.Checks))
	}
	return report
}

func (r *VerifyReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
}

func checkGoal(t *logic.Trace) CheckResult {
	if err := t.Goal.Validate(); err != nil {
		return CheckResult{Name: "goal", Pass: false, Reason: err.Error()}
	}
	if t.Goal.Provenance != logic.ProvenanceGoal {
		return CheckResult{Name: "goal", Pass: false, Reason: fmt.Sprintf("goal provenance is %q", t.Goal.Provenance)}
	}
	return CheckResult{Name: "goal", Pass: true, Detail: "goal statement valid"}
}

func checkIndexes(t *logic.Trace) CheckResult {
	for i, step := range t.Steps {
		if step.Index != i {
			return CheckResult{Name: "index_monotonicity", Pass: false,
				Reason: fmt.Sprintf("step at position %d carries index %d", i, step.Index)}
		}
	}
	return CheckResult{Name: "index_monotonicity", Pass: true,
		Detail: fmt.Sprintf("%d steps, contiguous from 0", len(t.Steps))}
}

func checkLinks(t *logic.Trace) CheckResult {
	prev := Genesis
	for i, step := range t.Steps {
		if step.PrevSeal != prev {
			return CheckResult{Name: "link_continuity", Pass: false,
				Reason: fmt.Sprintf("step %d prev_seal does not match predecessor seal", i)}
		}
		prev = step.Seal
	}
	return CheckResult{Name: "link_continuity", Pass: true, Detail: "chain links continuous from genesis"}
}

func checkSeals(t *logic.Trace) CheckResult {
	if err := VerifyChain(t); err != nil {
		return CheckResult{Name: "seal_recomputation", Pass: false, Reason: err.Error()}
	}
	return CheckResult{Name: "seal_recomputation", Pass: true,
		Detail: fmt.Sprintf("%d seals recomputed from genesis", len(t.Steps))}
}
