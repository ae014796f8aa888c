package grpcserver

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
	"github.com/rzbill/docstream/internal/runtime"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt      *runtime.Runtime
	grpc    *grpc.Server
	lis     net.Listener
	health  *healthWatcher
	stopped chan struct{}
}

// New constructs a gRPC server and registers services. The server is
// forced onto the JSON codec (see api/docstream/v1) so its hand-authored
// message structs, rather than protoc-generated ones, travel on the wire.
func New(rt *runtime.Runtime, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(v1.Codec)}, opts...)
	s := &Server{rt: rt, grpc: grpc.NewServer(opts...), health: newHealthWatcher(rt), stopped: make(chan struct{})}
	s.grpc.RegisterService(&v1.SequencerServiceDesc, &sequencerSvc{rt: rt})
	grpc_health_v1.RegisterHealthServer(s.grpc, s.health.hs)
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, l)
}

// ServeListener serves on an already-bound listener until ctx is done,
// for callers that need an in-memory listener (bufconn) in tests.
func (s *Server) ServeListener(ctx context.Context, l net.Listener) error {
	s.lis = l

	go s.watchHealth(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		close(s.stopped)
		return nil
	case err := <-errCh:
		close(s.stopped)
		return err
	}
}

func (s *Server) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	s.health.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case <-ticker.C:
			s.health.refresh(ctx)
		}
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
