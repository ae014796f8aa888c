package dds

import (
	"encoding/json"
	"fmt"
	"sync"
)

// counterOp is the wire content of a Counter op: an increment or
// decrement to fold into the running total. Deltas commute, so applying
// them in any order (as happens during rebase, or when two clients race)
// always converges to the same total.
type counterOp struct {
	Delta int64 `json:"delta"`
}

// Counter is a distributed counter DDS: every client submits deltas, and
// the running total converges regardless of the order those deltas are
// applied in, because addition commutes.
type Counter struct {
	mu    sync.Mutex
	value int64
}

// NewCounter returns a Counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Value returns the current total.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Increment builds the op content for adding delta to the counter. It does
// not apply the delta locally; the caller applies it with Apply and submits
// the returned content through the pending-op state machine, which calls
// Apply again (through AsRebaseFunc) only when rebasing rehydrated ops.
func (c *Counter) Increment(delta int64) []byte {
	b, _ := json.Marshal(counterOp{Delta: delta})
	return b
}

// Apply folds an op's delta into the running total.
func (c *Counter) Apply(content []byte, _ any) error {
	var op counterOp
	if err := json.Unmarshal(content, &op); err != nil {
		return fmt.Errorf("dds: counter: %w", err)
	}
	c.mu.Lock()
	c.value += op.Delta
	c.mu.Unlock()
	return nil
}
