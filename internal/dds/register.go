package dds

import (
	"encoding/json"
	"fmt"
	"sync"
)

// registerOp is the wire content of a Register op: a candidate value with
// a logical clock and the writer's peer id, used to break ties the way a
// last-writer-wins register must.
type registerOp struct {
	Value  []byte `json:"value"`
	Clock  int64  `json:"clock"`
	PeerID string `json:"peerId"`
}

// Register is a last-writer-wins single-value DDS.
type Register struct {
	mu     sync.Mutex
	value  []byte
	clock  int64
	peerID string
	set    bool
}

// NewRegister returns an empty Register.
func NewRegister() *Register {
	return &Register{}
}

// Get returns the current value and whether it has ever been set.
func (r *Register) Get() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.set
}

// Set builds the op content for writing value at the given logical clock
// on behalf of peerID.
func (r *Register) Set(value []byte, clock int64, peerID string) []byte {
	b, _ := json.Marshal(registerOp{Value: value, Clock: clock, PeerID: peerID})
	return b
}

// Apply resolves a write against the current value using last-writer-wins
// with a peer id tiebreak, so every replica converges on the same winner
// regardless of delivery order.
func (r *Register) Apply(content []byte, _ any) error {
	var op registerOp
	if err := json.Unmarshal(content, &op); err != nil {
		return fmt.Errorf("dds: register: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set || op.Clock > r.clock || (op.Clock == r.clock && op.PeerID > r.peerID) {
		r.value = op.Value
		r.clock = op.Clock
		r.peerID = op.PeerID
		r.set = true
	}
	return nil
}
