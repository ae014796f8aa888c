// Package deltaclient is a reference transport that implements
// pending.Runtime over the sequencer's gRPC service. It owns one
// StateMachine per document, dials the sequencer with automatic
// reconnect-with-backoff, and drives ProcessAck/ReplayOnReconnect as the
// stream and connection lifecycle demand.
//
// A Client is meant to be embedded by a host application (a CLI, a
// document editor, a test harness): the host calls SubmitLocal to send an
// op and Deliver (via the onDeliver callback passed to New) to learn when
// an ack lands, whether it matched something this client submitted, and
// what to do with rehydrated/rebased content.
package deltaclient
