package v1

import (
	"context"

	"google.golang.org/grpc"
)

// SequencerServer is implemented by the sequencer's gRPC service.
type SequencerServer interface {
	Submit(context.Context, *SubmitRequest) (*SubmitResponse, error)
	Stream(*StreamRequest, Sequencer_StreamServer) error
}

// Sequencer_StreamServer is the server-side handle for a Stream call.
type Sequencer_StreamServer interface {
	Send(*SequencedMessage) error
	grpc.ServerStream
}

type sequencerStreamServer struct {
	grpc.ServerStream
}

func (s *sequencerStreamServer) Send(m *SequencedMessage) error {
	return s.ServerStream.SendMsg(m)
}

func _Sequencer_Submit_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmitRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SequencerServer).Submit(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/docstream.v1.Sequencer/Submit"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SequencerServer).Submit(ctx, req.(*SubmitRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _Sequencer_Stream_Handler(srv any, stream grpc.ServerStream) error {
	req := new(StreamRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(SequencerServer).Stream(req, &sequencerStreamServer{stream})
}

// SequencerServiceDesc is the hand-authored equivalent of what
// protoc-gen-go-grpc would emit for a Sequencer service with one unary
// and one server-streaming method.
var SequencerServiceDesc = grpc.ServiceDesc{
	ServiceName: "docstream.v1.Sequencer",
	HandlerType: (*SequencerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: _Sequencer_Submit_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Stream", Handler: _Sequencer_Stream_Handler, ServerStreams: true},
	},
	Metadata: "docstream/v1/sequencer.go",
}

// SequencerClient is the client-side interface for the sequencer service.
type SequencerClient interface {
	Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*SubmitResponse, error)
	Stream(ctx context.Context, in *StreamRequest, opts ...grpc.CallOption) (Sequencer_StreamClient, error)
}

// Sequencer_StreamClient is the client-side handle for a Stream call.
type Sequencer_StreamClient interface {
	Recv() (*SequencedMessage, error)
	grpc.ClientStream
}

type sequencerClient struct {
	cc grpc.ClientConnInterface
}

// NewSequencerClient wraps a gRPC connection with the sequencer's client
// stub. The connection must have been dialed with grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec))
// (or an equivalent per-call option) so requests and responses marshal
// with this package's JSON codec instead of the default protobuf one.
func NewSequencerClient(cc grpc.ClientConnInterface) SequencerClient {
	return &sequencerClient{cc: cc}
}

func (c *sequencerClient) Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*SubmitResponse, error) {
	out := new(SubmitResponse)
	if err := c.cc.Invoke(ctx, "/docstream.v1.Sequencer/Submit", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sequencerClient) Stream(ctx context.Context, in *StreamRequest, opts ...grpc.CallOption) (Sequencer_StreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &SequencerServiceDesc.Streams[0], "/docstream.v1.Sequencer/Stream", opts...)
	if err != nil {
		return nil, err
	}
	cs := &sequencerStreamClient{stream}
	if err := cs.SendMsg(in); err != nil {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return cs, nil
}

type sequencerStreamClient struct {
	grpc.ClientStream
}

func (c *sequencerStreamClient) Recv() (*SequencedMessage, error) {
	m := new(SequencedMessage)
	if err := c.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
