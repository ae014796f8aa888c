package pending

// FlushMode mirrors the runtime's batching mode: Automatic flushes after
// every submitted op, Manual defers flushing until an explicit OnFlush.
type FlushMode int

const (
	// FlushModeUnspecified is the zero value and is never a valid mode to
	// record; the runtime always reports one of the two below.
	FlushModeUnspecified FlushMode = iota
	// Automatic flushes ops individually as they are submitted.
	Automatic
	// Manual defers flushing until OnFlush is called.
	Manual
)

func (m FlushMode) String() string {
	switch m {
	case Automatic:
		return "automatic"
	case Manual:
		return "manual"
	default:
		return "unspecified"
	}
}

// EntryKind tags the variant of a pending-queue Entry.
type EntryKind int

const (
	// EntryMessage is a submitted op awaiting ack.
	EntryMessage EntryKind = iota
	// EntryFlushModeChange marks a flush-mode transition in the submission
	// stream.
	EntryFlushModeChange
	// EntryFlushMarker marks an explicit manual flush boundary between two
	// adjacent batches.
	EntryFlushMarker
)

func (k EntryKind) String() string {
	switch k {
	case EntryMessage:
		return "message"
	case EntryFlushModeChange:
		return "flushMode"
	case EntryFlushMarker:
		return "flush"
	default:
		return "unknown"
	}
}

// ChunkedOpType is the sentinel message type for a fragment of a
// chunked op. Chunked-op fragments are skipped entirely by ProcessAck;
// reassembly is a transport concern handled upstream of this package.
const ChunkedOpType = "ChunkedOp"

// Entry is a tagged union over the three kinds of thing that live in the
// pending and initial queues. Only the fields relevant to Kind
// are meaningful; the zero value of the others is ignored.
type Entry struct {
	Kind EntryKind

	// Message fields (Kind == EntryMessage).
	MessageType             string
	ClientSequenceNumber    int64
	ReferenceSequenceNumber int64
	Content                 []byte
	LocalMetadata           any
	OpMetadata              map[string]any

	// FlushModeChange field (Kind == EntryFlushModeChange).
	Mode FlushMode
}

// BatchMetadata carries the "batch" hint the sequencer stamps on acks that
// belong to a multi-message batch. A nil pointer means the field was
// absent on the wire, which is a distinct state from present-false.
type BatchMetadata struct {
	Batch *bool
}

// SequencedMessage is the sequencer's echo of a submitted op, carrying the
// fields this package inspects. Fields it does not need
// (payload, trace context, ...) are the caller's concern and are not
// modeled here.
type SequencedMessage struct {
	Type                    string
	ClientID                string
	ClientSequenceNumber    int64
	SequenceNumber          int64
	ReferenceSequenceNumber int64
	Metadata                BatchMetadata
}

func sameMessage(a *SequencedMessage, b *SequencedMessage) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ClientID == b.ClientID &&
		a.ClientSequenceNumber == b.ClientSequenceNumber &&
		a.SequenceNumber == b.SequenceNumber
}
