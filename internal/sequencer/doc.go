// Package sequencer is a reference implementation of the external
// delta-stream collaborator a pending.StateMachine submits ops to and
// receives acks from. It assigns every accepted op a monotonically
// increasing sequence number, durably appends it to an eventlog.Log, and
// fans the resulting SequencedMessage out to every subscriber, submitter
// included — a client only learns its own op's assigned sequence number
// by observing it come back on its own subscription, the same as every
// other client.
//
// Production deployments of this system would run the sequencer as a
// separately scaled service; this package is small enough to also embed
// directly in a single-process deployment for tests and local
// development.
package sequencer
