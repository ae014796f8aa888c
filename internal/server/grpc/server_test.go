package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
	cfgpkg "github.com/rzbill/docstream/internal/config"
	"github.com/rzbill/docstream/internal/runtime"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

const bufSize = 1 << 20

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
}

func newTestServer(t *testing.T) (*Server, *grpc.ClientConn) {
	t.Helper()
	dir := t.TempDir()
	rt, err := runtime.Open(runtime.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	srv := New(rt)
	t.Cleanup(srv.Close)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer(srv.grpc)),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(v1.Codec)),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return srv, conn
}

func TestSubmitAndStreamOverGRPC(t *testing.T) {
	_, conn := newTestServer(t)
	client := v1.NewSequencerClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Stream(ctx, &v1.StreamRequest{DocID: "doc-1", ClientID: "client-a"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if _, err := client.Submit(ctx, &v1.SubmitRequest{Op: v1.Op{
		DocID: "doc-1", MessageType: "insert", ClientID: "client-a",
		ClientSequenceNumber: 1, Content: []byte("hello"),
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	msg := recvSkippingBackfillComplete(t, stream)
	if msg.ClientID != "client-a" || msg.ClientSequenceNumber != 1 || string(msg.Content) != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.SequenceNumber == 0 {
		t.Fatalf("expected a nonzero assigned sequence number")
	}
}

// recvSkippingBackfillComplete reads past the synthetic sentinel a Stream
// response sends once backfill is exhausted, returning the next real
// message.
func recvSkippingBackfillComplete(t *testing.T, stream v1.Sequencer_StreamClient) *v1.SequencedMessage {
	t.Helper()
	for {
		msg, err := stream.Recv()
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if msg.Type == v1.BackfillCompleteType {
			continue
		}
		return msg
	}
}

func TestStreamBackfillsPriorOps(t *testing.T) {
	_, conn := newTestServer(t)
	client := v1.NewSequencerClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Submit(ctx, &v1.SubmitRequest{Op: v1.Op{
		DocID: "doc-1", MessageType: "insert", ClientID: "client-a",
		ClientSequenceNumber: 1, Content: []byte("first"),
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stream, err := client.Stream(ctx, &v1.StreamRequest{DocID: "doc-1", ClientID: "client-b"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	msg, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(msg.Content) != "first" {
		t.Fatalf("expected backfilled op, got %+v", msg)
	}
}
