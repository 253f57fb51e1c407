// Package seal computes the tamper-evident hash chain over accepted proof
// steps. Each seal is the SHA-256 of the RFC 8785 (JCS) canonical JSON of
// {index, statement, prev_seal}, so provenance holds independently of the
// trace's in-memory representation.
package seal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/provenia-labs/proofrun/pkg/logic"
)

// Genesis is the fixed previous-seal value of step 0.
const Genesis = "proofrun:genesis:v1"

// payload is the canonical serialization input for one seal.
type payload struct {
	Index     int             `json:"index"`
	Statement logic.Statement `json:"statement"`
	PrevSeal  string          `json:"prev_seal"`
}

// Compute returns the seal digest for a step. Deterministic: identical
// inputs always produce identical digests.
func Compute(index int, st logic.Statement, prevSeal string) (string, error) {
	raw, err := json.Marshal(payload{Index: index, Statement: st, PrevSeal: prevSeal})
	if err != nil {
		return "", fmt.Errorf("seal: marshal step %d: %w", index, err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("seal: canonicalize step %d: %w", index, err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Chain tracks the head of one attempt's seal chain. It is purely additive
// and owned by exactly one attempt; there is no rewrite operation.
type Chain struct {
	head string
	next int
}

// NewChain starts a chain at the genesis value.
func NewChain() *Chain {
	return &Chain{head: Genesis}
}

// Head returns the current head seal (Genesis while the chain is empty).
func (c *Chain) Head() string { return c.head }

// Len returns the number of sealed steps.
func (c *Chain) Len() int { return c.next }

// Append seals the next statement and returns the fully-populated step.
func (c *Chain) Append(st logic.Statement) (logic.Step, error) {
	digest, err := Compute(c.next, st, c.head)
	if err != nil {
		return logic.Step{}, err
	}
	step := logic.Step{Index: c.next, Statement: st, PrevSeal: c.head, Seal: digest}
	c.head = digest
	c.next++
	return step, nil
}
