// Package pending implements the per-client pending-op state machine that
// sits between a document's distributed data structures (DDSes) and the
// delta stream produced by a central sequencer.
//
// # Overview
//
// Clients submit local operations ("ops") against DDSes. Each op is queued
// here until the sequencer echoes it back with a global sequence number
// (an "ack"). The state machine tracks what has been sent, preserves batch
// (multi-op transaction) framing across reconnects, verifies that acks
// arrive in the order the client actually sent them, and replays unacked
// work either on reconnect or after rehydrating from a snapshot handed off
// by a previous process.
//
// This package owns no transport, no storage, and no DDS state: it is
// driven entirely through the Runtime and RebaseFunc collaborators
// supplied at construction, and through SequencedMessage values fed in by
// the caller as they arrive off the wire.
//
// # Quick start
//
//	sm := pending.NewStateMachine(rt, rebaseFn, nil)
//	sm.OnSubmit("op", csn, rsn, content, localMetadata, nil)
//	localAck, meta, err := sm.ProcessAck(seqMsg, true)
//	if err != nil {
//	    rt.CloseFn(err) // DataCorruptionError or RebaseTooOldError
//	}
//
// # Handoff across a process restart
//
//	blob := sm.Serialize() // nil if nothing is pending
//	// ... host persists blob, process exits, a new process starts ...
//	sm2 := pending.NewStateMachine(rt2, rebaseFn, blob)
//	_ = sm2.ReplayOnReconnect(newClientID)
package pending
