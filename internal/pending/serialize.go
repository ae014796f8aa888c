package pending

import "encoding/json"

// serializedStateVersion is bumped whenever the wire shape of
// SerializedPendingState changes in a way older readers cannot tolerate.
const serializedStateVersion = 1

// SerializedPendingState is the handoff blob a host persists across a
// process restart so a freshly started StateMachine can rehydrate
// unacknowledged work.
type SerializedPendingState struct {
	Version  int     `json:"version"`
	ClientID string  `json:"clientId"`
	Entries  []Entry `json:"entries"`
}

// Serialize captures everything still outstanding across both queues, or
// returns nil if nothing is pending.
func (sm *StateMachine) Serialize() *SerializedPendingState {
	if sm.pendingMessageCount == 0 {
		return nil
	}
	clientID, _ := sm.runtime.ClientID()
	entries := make([]Entry, 0, len(sm.initial)+len(sm.pending))
	entries = append(entries, sm.initial...)
	entries = append(entries, sm.pending...)
	return &SerializedPendingState{
		Version:  serializedStateVersion,
		ClientID: clientID,
		Entries:  entries,
	}
}

// EncodeState marshals a SerializedPendingState for storage. state may be
// nil, in which case EncodeState returns nil with no error.
func EncodeState(state *SerializedPendingState) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

// DecodeState unmarshals a blob produced by EncodeState. An empty blob
// decodes to a nil state with no error. ErrUnknownEntry is returned if the
// blob names an entry kind this build does not recognize, which is
// expected to happen only when reading a snapshot written by a newer
// version of this package.
func DecodeState(blob []byte) (*SerializedPendingState, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var state SerializedPendingState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, err
	}
	for _, e := range state.Entries {
		switch e.Kind {
		case EntryMessage, EntryFlushModeChange, EntryFlushMarker:
		default:
			return nil, ErrUnknownEntry
		}
	}
	return &state, nil
}
