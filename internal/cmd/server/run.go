package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/docstream/internal/config"
	"github.com/rzbill/docstream/internal/runtime"
	grpcserver "github.com/rzbill/docstream/internal/server/grpc"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
	logpkg "github.com/rzbill/docstream/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper over os.Getenv so tests can substitute it
var getenv = func(key string) string { return os.Getenv(key) }

// Options configures the sequencer server process.
type Options struct {
	DataDir       string
	GRPCAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the gRPC sequencer server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")

	cfg := &logpkg.Config{
		Level:  getenvDefault("DOCSTREAM_LOG_LEVEL", "info"),
		Format: getenvDefault("DOCSTREAM_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{
		DataDir: storeDir, Fsync: opts.Fsync,
		Config: opts.Config, Logger: procLogger.WithComponent("runtime"),
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("starting docstream sequencer",
		logpkg.Str("grpcAddr", opts.GRPCAddr),
		logpkg.Str("dataDir", storeDir),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
	)

	gsrv := grpcserver.New(rt)
	errCh := make(chan error, 1)
	go func() { errCh <- gsrv.ListenAndServe(sctx, opts.GRPCAddr) }()

	select {
	case <-sctx.Done():
		gsrv.Close()
		return nil
	case err := <-errCh:
		return err
	}
}
