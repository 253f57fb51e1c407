package seal

import (
	"errors"
	"fmt"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// IntegrityError reports the first point at which a trace's stored seals
// diverge from recomputation. It is raised only by explicit verification,
// never by the proof loop, and is never auto-repaired.
type IntegrityError struct {
	Index int    // step whose seal or link failed
	Field string // "prev_seal" or "seal"
	Got   string
	Want  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("seal chain integrity violation at step %d: stored %s %q, recomputed %q",
		e.Index, e.Field, e.Got, e.Want)
}

// IsIntegrityError reports whether err wraps an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// VerifyChain recomputes every seal from the genesis value and compares it
// against the stored chain. Any mismatch is returned as *IntegrityError.
func VerifyChain(t *logic.Trace) error {
	prev := Genesis
	for i, step := range t.Steps {
		if step.Index != i {
			return &IntegrityError{Index: i, Field: "index", Got: fmt.Sprintf("%d", step.Index), Want: fmt.Sprintf("%d", i)}
		}
		if step.PrevSeal != prev {
			return &IntegrityError{Index: i, Field: "prev_seal", Got: step.PrevSeal, Want: prev}
		}
		digest, err := Compute(i, step.Statement, prev)
		if err != nil {
			return err
		}
		if step.Seal != digest {
			return &IntegrityError{Index: i, Field: "seal", Got: step.Seal, Want: digest}
		}
		prev = digest
	}
	return nil
}
