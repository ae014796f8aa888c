package sequencer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
	"github.com/rzbill/docstream/internal/eventlog"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
	"github.com/rzbill/docstream/pkg/id"
	"github.com/rzbill/docstream/pkg/log"
)

// docNamespace is the fixed eventlog namespace this package appends
// under; each document gets its own topic within it.
const docNamespace = "docstream"

// opHeader is the durable record header for one sequenced op. Content
// itself is stored as the eventlog record payload, so it is not
// duplicated here.
type opHeader struct {
	MessageID               string            `json:"messageId"`
	Type                    string            `json:"type"`
	ClientID                string            `json:"clientId"`
	ClientSequenceNumber    int64             `json:"csn"`
	ReferenceSequenceNumber int64             `json:"rsn"`
	Metadata                map[string]string `json:"metadata,omitempty"`
	Batch                   *bool             `json:"batch,omitempty"`
}

// Sequencer durably assigns sequence numbers to ops for one document and
// fans out the resulting stream to subscribers.
type Sequencer struct {
	log    *eventlog.Log
	logger log.Logger

	ids *id.Generator

	mu   sync.Mutex
	subs map[int]chan *v1.SequencedMessage
	next int
}

// Open opens (or creates) the durable log backing a document's sequenced
// stream.
func Open(db *pebblestore.DB, docID string, logger log.Logger) (*Sequencer, error) {
	l, err := eventlog.OpenLog(db, docNamespace, docID, 0)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Sequencer{log: l, logger: logger, ids: id.NewGenerator(), subs: make(map[int]chan *v1.SequencedMessage)}, nil
}

// Submit durably appends op and returns the SequencedMessage it was
// assigned, publishing that message to every current subscriber.
func (s *Sequencer) Submit(ctx context.Context, op v1.Op) (*v1.SequencedMessage, error) {
	messageID := s.ids.Next().String()
	header, err := json.Marshal(opHeader{
		MessageID:               messageID,
		Type:                    op.MessageType,
		ClientID:                op.ClientID,
		ClientSequenceNumber:    op.ClientSequenceNumber,
		ReferenceSequenceNumber: op.ReferenceSequenceNumber,
		Metadata:                op.OpMetadata,
		Batch:                   op.Batch,
	})
	if err != nil {
		return nil, err
	}

	seqs, err := s.log.Append(ctx, []eventlog.AppendRecord{{Header: header, Payload: op.Content}})
	if err != nil {
		return nil, err
	}

	msg := &v1.SequencedMessage{
		MessageID:               messageID,
		Type:                    op.MessageType,
		ClientID:                op.ClientID,
		ClientSequenceNumber:    op.ClientSequenceNumber,
		SequenceNumber:          int64(seqs[0]),
		ReferenceSequenceNumber: op.ReferenceSequenceNumber,
		Metadata:                op.OpMetadata,
		Batch:                   op.Batch,
		Content:                 op.Content,
	}
	s.logger.Debug("sequenced op",
		log.ClientID(op.ClientID),
		log.ClientSeq(op.ClientSequenceNumber),
		log.GlobalSeq(msg.SequenceNumber))
	s.publish(msg)
	return msg, nil
}

func (s *Sequencer) publish(msg *v1.SequencedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- msg:
		default:
			// A slow subscriber drops messages rather than blocking the
			// sequencer; catch-up happens through Backfill on reconnect.
		}
	}
}

// Subscribe registers a live feed of newly sequenced messages. The
// returned cancel func must be called once the caller is done to release
// the channel.
func (s *Sequencer) Subscribe() (<-chan *v1.SequencedMessage, func()) {
	s.mu.Lock()
	subID := s.next
	s.next++
	ch := make(chan *v1.SequencedMessage, 256)
	s.subs[subID] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, subID)
		s.mu.Unlock()
	}
	return ch, cancel
}

// Backfill returns every message sequenced after sinceSeq, in order, so a
// reconnecting client can catch up before switching to its live
// Subscribe feed.
func (s *Sequencer) Backfill(sinceSeq int64) []*v1.SequencedMessage {
	items, _ := s.log.Read(eventlog.ReadOptions{Start: eventlog.TokenFromSeq(uint64(sinceSeq + 1))})
	out := make([]*v1.SequencedMessage, 0, len(items))
	for _, it := range items {
		var h opHeader
		if err := json.Unmarshal(it.Header, &h); err != nil {
			s.logger.Warn("skipping unreadable log record", log.GlobalSeq(int64(it.Seq)), log.Err(err))
			continue
		}
		out = append(out, &v1.SequencedMessage{
			MessageID:               h.MessageID,
			Type:                    h.Type,
			ClientID:                h.ClientID,
			ClientSequenceNumber:    h.ClientSequenceNumber,
			SequenceNumber:          int64(it.Seq),
			ReferenceSequenceNumber: h.ReferenceSequenceNumber,
			Metadata:                h.Metadata,
			Batch:                   h.Batch,
			Content:                 it.Payload,
		})
	}
	return out
}

// WaitForActivity blocks until either a new op is sequenced or timeout
// elapses; it exists for polling-style consumers that do not use
// Subscribe.
func (s *Sequencer) WaitForActivity(timeout time.Duration) bool {
	return s.log.WaitForAppend(timeout)
}
