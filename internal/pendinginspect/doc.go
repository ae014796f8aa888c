// Package pendinginspect provides read-only, CEL-filtered introspection
// over a pending.StateMachine's queues, for the debug CLI and for
// operators diagnosing a stuck client. It never mutates the state
// machine it inspects.
package pendinginspect
