// Package v1 defines the wire types exchanged between a delta client and
// the sequencer, and the hand-authored gRPC service descriptor that
// carries them. There is no protoc-generated code here: the messages are
// plain Go structs marshaled with the JSON codec defined in
// api/docstream/v1/codec.go, in the same shape protoc-gen-go-grpc would
// otherwise produce.
package v1

// Op is a single client-submitted operation awaiting sequencing.
type Op struct {
	DocID                   string            `json:"docId"`
	MessageType             string            `json:"messageType"`
	ClientID                string            `json:"clientId"`
	ClientSequenceNumber    int64             `json:"clientSequenceNumber"`
	ReferenceSequenceNumber int64             `json:"referenceSequenceNumber"`
	Content                 []byte            `json:"content"`
	OpMetadata              map[string]string `json:"opMetadata,omitempty"`
	Batch                   *bool             `json:"batch,omitempty"`
}

// SequencedMessage is the sequencer's echo of an Op once it has been
// assigned a place in the global order.
type SequencedMessage struct {
	// MessageID is a process-wide, time-sortable id stamped by the
	// sequencer at append time, independent of (DocID, SequenceNumber);
	// it survives being copied out of one document's log for auditing or
	// cross-document correlation.
	MessageID               string            `json:"messageId"`
	Type                    string            `json:"type"`
	ClientID                string            `json:"clientId"`
	ClientSequenceNumber    int64             `json:"clientSequenceNumber"`
	SequenceNumber          int64             `json:"sequenceNumber"`
	ReferenceSequenceNumber int64             `json:"referenceSequenceNumber"`
	Metadata                map[string]string `json:"metadata,omitempty"`
	Batch                   *bool             `json:"batch,omitempty"`
	Content                 []byte            `json:"content"`
}

// SubmitRequest carries one client op to the sequencer.
type SubmitRequest struct {
	Op Op `json:"op"`
}

// SubmitResponse acknowledges receipt (not sequencing — the caller learns
// the assigned sequence number from the corresponding SequencedMessage on
// its Stream subscription, which is how the sequencer fans acks out to
// every connected client uniformly, submitter included).
type SubmitResponse struct {
	Accepted bool `json:"accepted"`
}

// StreamRequest opens (or resumes) a client's subscription to the
// sequenced message stream.
type StreamRequest struct {
	DocID    string `json:"docId"`
	ClientID string `json:"clientId"`
	// SinceSequenceNumber lets a reconnecting client ask to resume after
	// the last sequence number it observed, rather than replaying the
	// entire log.
	SinceSequenceNumber int64 `json:"sinceSequenceNumber"`
}

// BackfillCompleteType marks the synthetic message a Stream response sends
// once it has exhausted the caller's requested backfill and switched to
// live delivery. It carries no op content; a delta client waits for it
// before resubmitting anything unacked from a prior session, so any
// rehydrated entry a genuine backfilled ack could still claim is claimed
// before it is force-replayed under a new client sequence number.
const BackfillCompleteType = "$backfill-complete"
