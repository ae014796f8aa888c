package runtime

import (
	"context"
	"errors"
	"sync"

	cfgpkg "github.com/rzbill/docstream/internal/config"
	"github.com/rzbill/docstream/internal/docregistry"
	"github.com/rzbill/docstream/internal/sequencer"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
	"github.com/rzbill/docstream/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  log.Logger
}

// Runtime wires storage, config, and per-document sequencers for a
// single-node sequencer host. It is the server side of the system: it
// owns the durable log every document's sequencer appends to and hands
// out sequencer handles on demand.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	logger log.Logger

	mu   sync.Mutex
	seqs map[string]*sequencer.Sequencer
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.Config.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Runtime{
		db:     db,
		config: opts.Config,
		logger: logger,
		seqs:   make(map[string]*sequencer.Sequencer),
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// EnsureDocument registers docID if it has not been seen before.
func (r *Runtime) EnsureDocument(docID string) (docregistry.Meta, error) {
	return docregistry.EnsureDocument(r.db, docID)
}

// OpenSequencer returns the sequencer for docID, opening and caching one
// on first use.
func (r *Runtime) OpenSequencer(docID string) (*sequencer.Sequencer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.seqs[docID]; ok {
		return s, nil
	}
	if _, err := docregistry.EnsureDocument(r.db, docID); err != nil {
		return nil, err
	}
	s, err := sequencer.Open(r.db, docID, r.logger.WithComponent("sequencer").WithField("docId", docID))
	if err != nil {
		return nil, err
	}
	r.seqs[docID] = s
	return s, nil
}

// SavePendingBlob and LoadPendingBlob expose the handoff store so a
// crashed-and-restarted delta client can rehydrate. The
// sequencer host stores this blob on the client's behalf when the two are
// co-located; a client running against a remote sequencer over gRPC
// persists it itself instead (see internal/deltaclient).
func (r *Runtime) SavePendingBlob(docID string, blob []byte) error {
	return docregistry.SavePendingBlob(r.db, docID, blob)
}

func (r *Runtime) LoadPendingBlob(docID string) ([]byte, error) {
	return docregistry.LoadPendingBlob(r.db, docID)
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
