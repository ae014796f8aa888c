package grpcserver

import (
	"context"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
	"github.com/rzbill/docstream/internal/runtime"
)

// sequencerSvc adapts the runtime's per-document sequencers to the
// v1.SequencerServer interface.
type sequencerSvc struct {
	rt *runtime.Runtime
}

func (s *sequencerSvc) Submit(ctx context.Context, req *v1.SubmitRequest) (*v1.SubmitResponse, error) {
	seq, err := s.rt.OpenSequencer(req.Op.DocID)
	if err != nil {
		return nil, err
	}
	if _, err := seq.Submit(ctx, req.Op); err != nil {
		return nil, err
	}
	return &v1.SubmitResponse{Accepted: true}, nil
}

func (s *sequencerSvc) Stream(req *v1.StreamRequest, stream v1.Sequencer_StreamServer) error {
	seq, err := s.rt.OpenSequencer(req.DocID)
	if err != nil {
		return err
	}

	for _, msg := range seq.Backfill(req.SinceSequenceNumber) {
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	if err := stream.Send(&v1.SequencedMessage{Type: v1.BackfillCompleteType}); err != nil {
		return err
	}

	live, cancel := seq.Subscribe()
	defer cancel()
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-live:
			if !ok {
				return nil
			}
			if msg.SequenceNumber <= req.SinceSequenceNumber {
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}
