// Package client provides the `docstream` command-line client.
//
// The CLI talks to the sequencer's gRPC service to submit ops to a
// document and tail its sequenced stream from a terminal. It is
// primarily intended for developers and operators exercising a document
// without a full editor integration.
//
// # Address configuration
//
// The gRPC address is read from the DOCSTREAM_GRPC environment variable
// (default 127.0.0.1:50051).
//
// Usage
//
//	docstream submit --doc doc-1 --client alice --type insert --data '{"pos":0,"text":"hi"}'
//
//	docstream tail --doc doc-1 --client alice-tail
//	docstream tail --doc doc-1 --client alice-tail --since 40
//
//	# drive the pending-op state machine end to end and report the ack
//	docstream watch --doc doc-1 --data '{"pos":0,"text":"hi"}'
package client
