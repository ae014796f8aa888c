// Package docregistry tracks which documents this process hosts and
// persists the pending-op handoff blob a StateMachine produces, so a
// restarted process can find and rehydrate the work a prior process left
// unacknowledged.
package docregistry
