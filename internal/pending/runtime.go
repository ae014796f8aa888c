package pending

// Runtime is the narrow capability interface the container/delta-client
// layer implements and hands to a StateMachine at construction. The state
// machine never owns a Runtime; it only calls out to it.
//
// Implementations must be safe to call from the single event-loop goroutine
// that also drives the StateMachine's methods — this package assumes
// single-threaded cooperative scheduling and does no locking of
// its own.
type Runtime interface {
	// Connected reports whether the delta stream is currently connected.
	Connected() bool
	// ClientID returns the client id assigned by the sequencer for the
	// current connection, and whether one has been assigned yet.
	ClientID() (id string, ok bool)
	// FlushMode returns the runtime's current flush mode.
	FlushMode() FlushMode
	// SetFlushMode changes the runtime's flush mode.
	SetFlushMode(mode FlushMode)
	// Flush forces a manual flush.
	Flush()
	// Resubmit hands an op back to the transport as if newly submitted. A
	// correct implementation calls back into StateMachine.OnSubmit with a
	// freshly assigned client sequence number before or as part of putting
	// the op on the wire.
	Resubmit(messageType string, content []byte, localMetadata any, opMetadata map[string]any)
	// CloseFn tears the container down with a fatal, unrecoverable error.
	CloseFn(err error)
}

// RebaseFunc re-applies an op to a DDS's local state without transmitting
// it, because the transmission happened in a previous session.
// It must be synchronous and side-effect-free beyond updating the target
// DDS's local state; any error it needs to surface must panic or be
// recorded out of band, since the state machine treats it as unable to
// fail.
type RebaseFunc func(content []byte, localMetadata any)
