package pending

import (
	"errors"
	"fmt"
)

// ErrDoubleReplay is returned when ReplayOnReconnect is called a second
// time for the same clientId without an intervening reconnect. The state
// machine is left unchanged; the caller decides whether to ignore it or
// escalate.
var ErrDoubleReplay = errors.New("pending: replayOnReconnect called twice for the same client id")

// ErrUnknownEntry is returned by DecodeState when a serialized entry tag
// does not match any known EntryKind. A future wire format that this
// build does not understand is the expected cause.
var ErrUnknownEntry = errors.New("pending: unknown serialized entry kind")

// DataCorruptionError reports that an ack did not match the head of the
// pending queue the way the local submission order requires. It is
// unrecoverable: the local and sequenced histories have diverged and no
// further progress can be trusted.
type DataCorruptionError struct {
	Reason string
	// ExpectedClientSequenceNumber is the csn processLocalAck was expecting
	// at the head of the pending queue.
	ExpectedClientSequenceNumber int64
	// ActualClientSequenceNumber is the csn the ack actually carried.
	ActualClientSequenceNumber int64
}

func (e *DataCorruptionError) Error() string {
	return fmt.Sprintf("pending: data corruption: %s (expected csn %d, got %d)",
		e.Reason, e.ExpectedClientSequenceNumber, e.ActualClientSequenceNumber)
}

// RebaseTooOldError reports that an ack for a rehydrated op arrived
// referencing a sequence number the rehydration baseline can no longer
// vouch for: the snapshot this process rehydrated from is stale relative
// to the sequencer's current state.
type RebaseTooOldError struct {
	// AckSequenceNumber is the global sequence number carried on the ack.
	AckSequenceNumber int64
	// BaselineReferenceSequenceNumber is the reference sequence number the
	// rehydrated entry was stamped with before the snapshot was taken.
	BaselineReferenceSequenceNumber int64
}

func (e *RebaseTooOldError) Error() string {
	return fmt.Sprintf("pending: rebase too old: ack sequenceNumber %d exceeds rehydration baseline %d",
		e.AckSequenceNumber, e.BaselineReferenceSequenceNumber)
}
