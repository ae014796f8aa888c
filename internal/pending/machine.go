package pending

// StateMachine tracks locally submitted, not-yet-acknowledged ops for a
// single document session. See the package doc comment for the overall
// model.
//
// A StateMachine is not safe for concurrent use: it assumes the same
// single-threaded event loop that drives submission also delivers acks.
type StateMachine struct {
	runtime Runtime
	rebase  RebaseFunc

	// pending holds entries submitted this session (or rebased in from a
	// prior session) that have not yet been acked.
	pending []Entry

	// initial holds entries rehydrated from a serialized snapshot that have
	// not yet been claimed by a matching remote ack. Once claimed, entries
	// move from initial into pending.
	initial []Entry

	initialClientID    string
	hasInitialClientID bool
	// initialLeadingCsn is the client sequence number of the oldest
	// still-unclaimed Message entry in initial, or -1 once none remains.
	initialLeadingCsn int64

	// pendingMessageCount is the number of Message entries across both
	// queues combined (invariant: never negative, zero iff both queues
	// hold no Message entries).
	pendingMessageCount int

	inBatch          bool
	batchBeginMessage *SequencedMessage

	hasLastReplayClientID bool
	lastReplayClientID    string
}

// NewStateMachine constructs a StateMachine. If serialized is non-nil and
// carries entries, they seed the initial (rehydration) queue; the caller
// is expected to follow up with ReplayOnReconnect once a new client id has
// been assigned by the sequencer.
func NewStateMachine(rt Runtime, rebase RebaseFunc, serialized *SerializedPendingState) *StateMachine {
	sm := &StateMachine{
		runtime:           rt,
		rebase:            rebase,
		initialLeadingCsn: -1,
	}
	if serialized == nil || len(serialized.Entries) == 0 {
		return sm
	}
	sm.initial = append([]Entry(nil), serialized.Entries...)
	sm.initialClientID = serialized.ClientID
	sm.hasInitialClientID = true
	for _, e := range sm.initial {
		if e.Kind != EntryMessage {
			continue
		}
		sm.pendingMessageCount++
		if sm.initialLeadingCsn == -1 {
			sm.initialLeadingCsn = e.ClientSequenceNumber
		}
	}
	return sm
}

// PendingCount returns the number of unacked Message entries currently
// tracked across both queues.
func (sm *StateMachine) PendingCount() int {
	return sm.pendingMessageCount
}

// QueueEntry pairs an Entry with the name of the queue it currently lives
// in, for read-only introspection (see internal/pendinginspect).
type QueueEntry struct {
	Queue string
	Entry Entry
}

// Snapshot returns a copy of every entry across both queues, in queue
// order (initial before pending). It does not mutate the state machine.
func (sm *StateMachine) Snapshot() []QueueEntry {
	out := make([]QueueEntry, 0, len(sm.initial)+len(sm.pending))
	for _, e := range sm.initial {
		out = append(out, QueueEntry{Queue: "initial", Entry: e})
	}
	for _, e := range sm.pending {
		out = append(out, QueueEntry{Queue: "pending", Entry: e})
	}
	return out
}

// OnSubmit records a freshly submitted op.
func (sm *StateMachine) OnSubmit(messageType string, csn, rsn int64, content []byte, localMetadata any, opMetadata map[string]any) {
	sm.pending = append(sm.pending, Entry{
		Kind:                    EntryMessage,
		MessageType:             messageType,
		ClientSequenceNumber:    csn,
		ReferenceSequenceNumber: rsn,
		Content:                 content,
		LocalMetadata:           localMetadata,
		OpMetadata:              opMetadata,
	})
	sm.pendingMessageCount++
}

// OnFlushModeChanged records a flush-mode transition, collapsing it against
// the tail of the pending queue where doing so preserves batch framing
// without changing observable behavior:
//
//   - switching to Automatic when the tail is a bare flush marker replaces
//     the marker (the marker is redundant once every subsequent op flushes
//     on its own);
//   - switching to Automatic when the tail is a still-open switch to
//     Manual cancels that switch outright (nothing was ever submitted
//     under it);
//   - otherwise the transition is recorded as a new entry.
func (sm *StateMachine) OnFlushModeChanged(mode FlushMode) {
	if mode == Automatic && len(sm.pending) > 0 {
		tail := &sm.pending[len(sm.pending)-1]
		switch {
		case tail.Kind == EntryFlushMarker:
			*tail = Entry{Kind: EntryFlushModeChange, Mode: Automatic}
			return
		case tail.Kind == EntryFlushModeChange && tail.Mode == Manual:
			sm.pending = sm.pending[:len(sm.pending)-1]
			return
		}
	}
	sm.pending = append(sm.pending, Entry{Kind: EntryFlushModeChange, Mode: mode})
}

// OnFlush records an explicit manual flush boundary. It is a no-op when
// the runtime is already in Automatic mode (there is no open batch to
// close early) and a no-op when the pending queue is empty or its tail is
// not a Message (nothing has been submitted since the last boundary, so a
// marker here would have nothing to frame).
func (sm *StateMachine) OnFlush() {
	if sm.runtime.FlushMode() == Automatic {
		return
	}
	if len(sm.pending) == 0 || sm.pending[len(sm.pending)-1].Kind != EntryMessage {
		return
	}
	sm.pending = append(sm.pending, Entry{Kind: EntryFlushMarker})
}

// ProcessAck consumes one sequenced message. isLocal indicates the ack
// originated from an op this client submitted (as opposed to a message
// from another client entirely, which chunked-op reassembly aside, this
// package still inspects for rehydration purposes).
//
// It returns whether this ack matched a local pending entry, and if so
// its batch metadata, which the caller may need to correlate a batch's
// begin/end boundary against DDS-level handling.
func (sm *StateMachine) ProcessAck(msg *SequencedMessage, isLocal bool) (matchedLocal bool, meta *BatchMetadata, err error) {
	if msg.Type == ChunkedOpType {
		return false, nil, nil
	}
	if isLocal {
		return sm.processLocalAck(msg)
	}
	return sm.processRemoteAck(msg)
}

// processLocalAck implements the six-step algorithm of step 5. Batch
// enter/exit is driven entirely by the shape of the pending queue itself
// (FlushMarker/FlushModeChange bookkeeping entries), not by the ack's own
// metadata.batch flag: metadata.batch is only ever used to validate that
// the sequencer framed the batch the way the queue says it should have.
func (sm *StateMachine) processLocalAck(msg *SequencedMessage) (bool, *BatchMetadata, error) {
	// 1. Maybe enter a batch: a FlushMarker or FlushModeChange(Manual) at
	// the head means the Message right behind it opens a new batch.
	if len(sm.pending) > 0 {
		switch h := sm.pending[0]; {
		case h.Kind == EntryFlushMarker, h.Kind == EntryFlushModeChange && h.Mode == Manual:
			if sm.inBatch {
				return false, nil, &DataCorruptionError{
					Reason:                       "batch entered while already inBatch",
					ExpectedClientSequenceNumber: -1,
					ActualClientSequenceNumber:   msg.ClientSequenceNumber,
				}
			}
			beginCopy := *msg
			sm.inBatch = true
			sm.batchBeginMessage = &beginCopy
			sm.pending = sm.pending[1:]
		}
	}

	// 2. Match the head of the pending queue against this ack; it must now
	// be a Message.
	if len(sm.pending) == 0 || sm.pending[0].Kind != EntryMessage {
		return false, nil, &DataCorruptionError{
			Reason:                       "ack received with no matching Message at the head of pending",
			ExpectedClientSequenceNumber: -1,
			ActualClientSequenceNumber:   msg.ClientSequenceNumber,
		}
	}
	head := sm.pending[0]

	// 3. Client sequence number must match the head exactly; local
	// submission order and sequencer ack order must agree.
	if head.ClientSequenceNumber != msg.ClientSequenceNumber {
		return false, nil, &DataCorruptionError{
			Reason:                       "clientSequenceNumber mismatch at head of pending queue",
			ExpectedClientSequenceNumber: head.ClientSequenceNumber,
			ActualClientSequenceNumber:   msg.ClientSequenceNumber,
		}
	}

	// 4. Consume it.
	sm.pending = sm.pending[1:]
	sm.pendingMessageCount--

	// 5. Maybe exit the batch: only a FlushModeChange(Automatic) or
	// FlushMarker now at the head signals the boundary; anything else
	// (another Message, an empty queue) means the batch is still open.
	var outMeta *BatchMetadata
	exiting := false
	if sm.inBatch && len(sm.pending) > 0 {
		switch h := sm.pending[0]; {
		case h.Kind == EntryFlushModeChange && h.Mode == Automatic:
			sm.pending = sm.pending[1:]
			exiting = true
		case h.Kind == EntryFlushMarker:
			// Left in place: it opens the next batch.
			exiting = true
		}
	}

	if exiting {
		beginMeta := sm.batchBeginMessage.Metadata.Batch
		endMeta := msg.Metadata.Batch
		var corrupt bool
		if sameMessage(sm.batchBeginMessage, msg) {
			corrupt = beginMeta != nil
		} else {
			corrupt = beginMeta == nil || !*beginMeta || endMeta == nil || *endMeta
		}
		if corrupt {
			return false, nil, &DataCorruptionError{
				Reason:                       "batch begin/end metadata does not match the queue's batch framing",
				ExpectedClientSequenceNumber: head.ClientSequenceNumber,
				ActualClientSequenceNumber:   msg.ClientSequenceNumber,
			}
		}
		endCopy := msg.Metadata
		outMeta = &endCopy
		sm.inBatch = false
		sm.batchBeginMessage = nil
	} else if !sm.inBatch {
		outMeta = &msg.Metadata
	}

	// 6. Return the match.
	return true, outMeta, nil
}

// processRemoteAck implements the rehydration drain/claim algorithm. The
// drain-and-rebase loop below runs for every remote ack regardless of
// whose op it belongs to: any ack's sequence number is a valid watermark
// up to which rehydrated entries are known to have been durably ordered,
// so entries in initial catch up incrementally as other collaborators'
// ops arrive, not only this client's own. Claiming — dequeuing the one
// entry this exact ack is sequencing and reporting it as a match with its
// localMetadata, the same way a same-session local ack would be — is
// still gated to acks from the client id this process rehydrated under,
// since only that client's csns correspond to entries in initial.
func (sm *StateMachine) processRemoteAck(msg *SequencedMessage) (bool, *BatchMetadata, error) {
	if !sm.hasInitialClientID {
		return false, nil, nil
	}
	claiming := msg.ClientID == sm.initialClientID

	var matched bool
	var meta *BatchMetadata

	for len(sm.initial) > 0 {
		head := sm.initial[0]
		if head.Kind == EntryMessage && head.ReferenceSequenceNumber > msg.SequenceNumber {
			break
		}
		sm.initial = sm.initial[1:]

		if head.Kind != EntryMessage {
			sm.pending = append(sm.pending, head)
			continue
		}

		if head.ClientSequenceNumber == sm.initialLeadingCsn && msg.SequenceNumber > head.ReferenceSequenceNumber {
			return false, nil, &RebaseTooOldError{
				AckSequenceNumber:               msg.SequenceNumber,
				BaselineReferenceSequenceNumber: head.ReferenceSequenceNumber,
			}
		}

		sm.rebase(head.Content, head.LocalMetadata)
		if head.ClientSequenceNumber == sm.initialLeadingCsn {
			sm.advanceInitialLeadingCsn()
		}

		if claiming && head.ClientSequenceNumber == msg.ClientSequenceNumber {
			sm.pendingMessageCount--
			endCopy := msg.Metadata
			matched, meta = true, &endCopy
			continue
		}
		sm.pending = append(sm.pending, head)
	}
	return matched, meta, nil
}

// advanceInitialLeadingCsn recomputes the csn of the oldest unclaimed
// Message entry still in initial, or -1 if none remain.
func (sm *StateMachine) advanceInitialLeadingCsn() {
	for _, e := range sm.initial {
		if e.Kind == EntryMessage {
			sm.initialLeadingCsn = e.ClientSequenceNumber
			return
		}
	}
	sm.initialLeadingCsn = -1
	sm.hasInitialClientID = false
}

// ReplayOnReconnect resubmits every unacked op after a new connection
// (with client id clientID) has been established. It first
// folds any entries left unclaimed in the rehydration queue into pending,
// rebasing their DDS-level effects locally, then resubmits everything
// through the runtime.
//
// The replay loop is bounded by the length of the pending queue as it
// stood before replay began: Resubmit is expected to re-enter OnSubmit,
// which appends fresh entries with newly assigned client sequence
// numbers, and those must not be replayed again in the same pass.
func (sm *StateMachine) ReplayOnReconnect(clientID string) error {
	if sm.hasLastReplayClientID && sm.lastReplayClientID == clientID {
		return ErrDoubleReplay
	}
	sm.hasLastReplayClientID = true
	sm.lastReplayClientID = clientID

	for len(sm.initial) > 0 {
		e := sm.initial[0]
		sm.initial = sm.initial[1:]
		if e.Kind == EntryMessage {
			sm.rebase(e.Content, e.LocalMetadata)
		}
		sm.pending = append(sm.pending, e)
	}
	sm.initialLeadingCsn = -1
	sm.hasInitialClientID = false

	replay := sm.pending
	sm.pending = nil
	sm.pendingMessageCount = 0

	originalMode := sm.runtime.FlushMode()
	n := len(replay)
	for i := 0; i < n; i++ {
		e := replay[i]
		switch e.Kind {
		case EntryMessage:
			sm.runtime.Resubmit(e.MessageType, e.Content, e.LocalMetadata, e.OpMetadata)
		case EntryFlushModeChange:
			// Leaving Manual mode ends the batch being replayed: flush it
			// before switching, as the original submission did.
			if e.Mode == Automatic && sm.runtime.FlushMode() == Manual {
				sm.runtime.Flush()
			}
			sm.runtime.SetFlushMode(e.Mode)
		case EntryFlushMarker:
			sm.runtime.Flush()
		}
	}
	sm.runtime.SetFlushMode(originalMode)
	return nil
}
