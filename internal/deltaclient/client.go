package deltaclient

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
	cfgpkg "github.com/rzbill/docstream/internal/config"
	"github.com/rzbill/docstream/internal/pending"
	"github.com/rzbill/docstream/pkg/log"
)

var errNotConnected = errors.New("deltaclient: not connected")

const submitTimeout = 5 * time.Second

// DeliverFunc is invoked once per sequenced message this client observes,
// after ProcessAck has updated the pending state machine.
type DeliverFunc func(msg *v1.SequencedMessage, matchedLocal bool, meta *pending.BatchMetadata)

// Client is a reconnecting delta-stream transport for a single document.
// It satisfies pending.Runtime and drives a pending.StateMachine across
// reconnects.
type Client struct {
	addr      string
	docID     string
	logger    log.Logger
	reconnect cfgpkg.ReconnectPolicy
	onDeliver DeliverFunc

	sm *pending.StateMachine

	mu          sync.Mutex
	cli         v1.SequencerClient
	conn        *grpc.ClientConn
	connected   bool
	clientID    string
	hasClientID bool
	mode        pending.FlushMode
	nextCsn     int64
	lastSeq     int64
	outbox      []v1.Op

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// New constructs a Client for docID against the sequencer listening at
// addr, reconnecting with the jitter bounds from reconnect. If serialized
// is non-nil, the state machine rehydrates from it before the first
// connection is made.
func New(addr, docID string, logger log.Logger, reconnect cfgpkg.ReconnectPolicy, rebase pending.RebaseFunc, serialized *pending.SerializedPendingState, onDeliver DeliverFunc) *Client {
	if logger == nil {
		logger = log.NewLogger()
	}
	if reconnect.BackoffMin <= 0 {
		reconnect.BackoffMin = 200 * time.Millisecond
	}
	if reconnect.BackoffMax <= 0 {
		reconnect.BackoffMax = 10 * time.Second
	}
	c := &Client{
		addr:      addr,
		docID:     docID,
		logger:    logger.WithComponent("deltaclient"),
		reconnect: reconnect,
		onDeliver: onDeliver,
		closed:    make(chan struct{}),
	}
	c.sm = pending.NewStateMachine(c, rebase, serialized)
	return c
}

// StateMachine exposes the underlying pending state machine, mainly for
// introspection (see internal/pendinginspect) and for taking a
// serializable snapshot before shutdown.
func (c *Client) StateMachine() *pending.StateMachine { return c.sm }

// SubmitLocal assigns a fresh client sequence number to content, records
// it in the pending queue, and transmits it immediately in Automatic mode
// or buffers it for the next Flush in Manual mode.
func (c *Client) SubmitLocal(messageType string, content []byte, localMetadata any, opMetadata map[string]any) {
	c.submit(messageType, content, localMetadata, opMetadata)
}

// SetMode changes the flush mode the way the hosting application
// requests it, recording the transition in the pending queue so a
// reconnect before it takes effect replays it faithfully.
func (c *Client) SetMode(mode pending.FlushMode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	c.sm.OnFlushModeChanged(mode)
}

// ManualFlush records an explicit flush boundary and sends any ops
// buffered since the last flush.
func (c *Client) ManualFlush() {
	c.sm.OnFlush()
	c.flushOutbox()
}

func (c *Client) submit(messageType string, content []byte, localMetadata any, opMetadata map[string]any) {
	c.mu.Lock()
	csn := c.nextCsn
	c.nextCsn++
	rsn := c.lastSeq
	mode := c.mode
	c.mu.Unlock()

	c.sm.OnSubmit(messageType, csn, rsn, content, localMetadata, opMetadata)

	op := v1.Op{
		DocID:                   c.docID,
		MessageType:             messageType,
		ClientSequenceNumber:    csn,
		ReferenceSequenceNumber: rsn,
		Content:                 content,
		OpMetadata:              stringifyMetadata(opMetadata),
	}
	c.mu.Lock()
	op.ClientID = c.clientID
	c.mu.Unlock()

	if mode == pending.Manual {
		c.mu.Lock()
		c.outbox = append(c.outbox, op)
		c.mu.Unlock()
		return
	}
	if err := c.sendOp(op); err != nil {
		c.logger.Warn("submit failed, will resubmit on reconnect", log.Err(err))
	}
}

func stringifyMetadata(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (c *Client) flushOutbox() {
	c.mu.Lock()
	ops := c.outbox
	c.outbox = nil
	c.mu.Unlock()
	if len(ops) == 0 {
		return
	}
	for i := range ops {
		last := i == len(ops)-1
		flag := !last
		ops[i].Batch = &flag
		if err := c.sendOp(ops[i]); err != nil {
			c.logger.Warn("flush op failed, will resubmit on reconnect", log.Err(err))
		}
	}
}

func (c *Client) sendOp(op v1.Op) error {
	c.mu.Lock()
	cli := c.cli
	c.mu.Unlock()
	if cli == nil {
		return errNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	_, err := cli.Submit(ctx, &v1.SubmitRequest{Op: op})
	return err
}

// --- pending.Runtime ---

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) ClientID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID, c.hasClientID
}

func (c *Client) FlushMode() pending.FlushMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetFlushMode is called by the state machine during ReplayOnReconnect to
// reproduce a recorded flush-mode transition; it does not itself notify
// the pending queue (OnFlushModeChanged already ran when the transition
// was first recorded).
func (c *Client) SetFlushMode(mode pending.FlushMode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

// Flush is called by the state machine during ReplayOnReconnect to
// reproduce a recorded manual-flush boundary.
func (c *Client) Flush() {
	c.flushOutbox()
}

// Resubmit re-enters OnSubmit with a fresh client sequence number and
// transmits, exactly as a first-time SubmitLocal would.
func (c *Client) Resubmit(messageType string, content []byte, localMetadata any, opMetadata map[string]any) {
	c.submit(messageType, content, localMetadata, opMetadata)
}

// CloseFn tears the client down with a fatal error; Run returns after the
// current connection attempt unwinds.
func (c *Client) CloseFn(err error) {
	c.mu.Lock()
	if c.closeErr == nil {
		c.closeErr = err
	}
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.closed) })
	c.logger.Error("delta client closed", log.Err(err))
}

// Err returns the fatal error passed to CloseFn, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}

// --- connection lifecycle ---

func defaultDialer(addr string) func(ctx context.Context) (*grpc.ClientConn, error) {
	return func(ctx context.Context) (*grpc.ClientConn, error) {
		return grpc.NewClient(addr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.ForceCodec(v1.Codec)),
		)
	}
}

// Run dials the sequencer and streams sequenced messages until ctx is
// cancelled or CloseFn is called, reconnecting with jittered exponential
// backoff on every disconnect.
func (c *Client) Run(ctx context.Context) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	backoff := c.reconnect.BackoffMin
	dial := defaultDialer(c.addr)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return c.Err()
		default:
		}

		if err := c.connectAndStream(ctx, dial); err != nil {
			c.logger.Warn("delta stream disconnected", log.Err(err), log.DocID(c.docID))
		}
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2+1)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return c.Err()
		case <-time.After(wait):
		}
		if backoff *= 2; backoff > c.reconnect.BackoffMax {
			backoff = c.reconnect.BackoffMax
		}
	}
}

func (c *Client) connectAndStream(ctx context.Context, dial func(context.Context) (*grpc.ClientConn, error)) error {
	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	cli := v1.NewSequencerClient(conn)

	clientID := uuid.NewString()
	c.mu.Lock()
	sinceSeq := c.lastSeq
	c.mu.Unlock()

	stream, err := cli.Stream(ctx, &v1.StreamRequest{DocID: c.docID, ClientID: clientID, SinceSequenceNumber: sinceSeq})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.cli = cli
	c.clientID = clientID
	c.hasClientID = true
	c.connected = true
	c.mu.Unlock()

	// Catch-up messages sent as backfill are drained through ProcessAck
	// before ReplayOnReconnect runs, so a rehydrated entry still gets a
	// chance to be claimed by its own genuine ack rather than force-replayed
	// under a new client sequence number. ReplayOnReconnect only runs once
	// the sequencer signals it has switched to live delivery, and inbound
	// delivery is paused for the duration of that one call.
	replayed := false
	for {
		msg, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if msg.Type == v1.BackfillCompleteType {
			if !replayed {
				if err := c.sm.ReplayOnReconnect(clientID); err != nil {
					return err
				}
				replayed = true
			}
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg *v1.SequencedMessage) {
	c.mu.Lock()
	if msg.SequenceNumber > c.lastSeq {
		c.lastSeq = msg.SequenceNumber
	}
	isLocal := c.hasClientID && msg.ClientID == c.clientID
	c.mu.Unlock()

	pm := &pending.SequencedMessage{
		Type:                    msg.Type,
		ClientID:                msg.ClientID,
		ClientSequenceNumber:    msg.ClientSequenceNumber,
		SequenceNumber:          msg.SequenceNumber,
		ReferenceSequenceNumber: msg.ReferenceSequenceNumber,
		Metadata:                pending.BatchMetadata{Batch: msg.Batch},
	}

	matched, meta, err := c.sm.ProcessAck(pm, isLocal)
	if err != nil {
		c.CloseFn(err)
		return
	}
	if c.onDeliver != nil {
		c.onDeliver(msg, matched, meta)
	}
}
