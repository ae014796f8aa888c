package deltaclient

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
	"github.com/rzbill/docstream/internal/pending"
	grpcserver "github.com/rzbill/docstream/internal/server/grpc"
	"github.com/rzbill/docstream/internal/runtime"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

const bufSize = 1 << 20

// newTestServer starts a grpcserver.Server over an in-memory bufconn
// listener and returns a dialer for it, matching the pattern the server
// package's own tests use.
func newTestServer(t *testing.T) func(context.Context) (*grpc.ClientConn, error) {
	t.Helper()
	dir := t.TempDir()
	rt, err := runtime.Open(runtime.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	srv := grpcserver.New(rt)
	t.Cleanup(srv.Close)

	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.ServeListener(context.Background(), lis) }()

	return func(ctx context.Context) (*grpc.ClientConn, error) {
		return grpc.NewClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.Dial() }),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.ForceCodec(v1.Codec)),
		)
	}
}

func TestClientSubmitAndAckRoundTrip(t *testing.T) {
	dial := newTestServer(t)

	var delivered []*v1.SequencedMessage
	c := New("bufnet", "doc-1", nil, cfgpkg.Default().Reconnect, func(content []byte, localMetadata any) {}, nil, func(msg *v1.SequencedMessage, matched bool, meta *pending.BatchMetadata) {
		delivered = append(delivered, msg)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go func() { _ = c.connectAndStream(ctx, dial) }()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Connected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !c.Connected() {
		t.Fatalf("client never connected")
	}

	c.SubmitLocal("insert", []byte("hello"), nil, nil)

	deadline = time.Now().Add(2 * time.Second)
	for len(delivered) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(delivered))
	}
	if string(delivered[0].Content) != "hello" {
		t.Fatalf("unexpected content: %s", delivered[0].Content)
	}
	if c.sm.PendingCount() != 0 {
		t.Fatalf("expected pending count 0 after ack, got %d", c.sm.PendingCount())
	}
}
