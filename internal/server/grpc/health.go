package grpcserver

import (
	"context"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rzbill/docstream/internal/runtime"
)

// healthWatcher periodically reflects Runtime.CheckHealth into the
// standard gRPC health service so load balancers and orchestrators can
// use the off-the-shelf grpc_health_v1 protocol instead of a bespoke RPC.
type healthWatcher struct {
	rt *runtime.Runtime
	hs *health.Server
}

func newHealthWatcher(rt *runtime.Runtime) *healthWatcher {
	return &healthWatcher{rt: rt, hs: health.NewServer()}
}

func (w *healthWatcher) refresh(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := w.rt.CheckHealth(ctx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	w.hs.SetServingStatus("", status)
	w.hs.SetServingStatus("docstream.v1.Sequencer", status)
}
