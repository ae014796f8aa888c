// Package dds provides reference distributed data structures that plug
// into a pending.StateMachine as the target of ops flowing through the
// pending-op state machine.
//
// Each type here implements Rebaser: a single synchronous entry point
// that applies an op's content to local state. The same method serves
// both a normal local apply (content produced by this client, applied
// optimistically before the sequencer has acked it) and a rebase (content
// from a prior session, replayed after rehydration without being
// retransmitted) — the two are indistinguishable from a DDS's point of
// view, which is exactly the property pending.RebaseFunc relies on.
package dds
