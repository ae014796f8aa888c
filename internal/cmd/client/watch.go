package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
	cfgpkg "github.com/rzbill/docstream/internal/config"
	"github.com/rzbill/docstream/internal/deltaclient"
	"github.com/rzbill/docstream/internal/pending"
)

// NewWatchCommand drives a document through the pending-op state machine
// end to end: it connects with deltaclient, submits one op, waits for the
// op's own ack to come back, and prints both the delivered message and
// the pending queue snapshot at that point. It exists to exercise the
// full submit/ack/replay path from the command line, not as a general
// editing tool.
func NewWatchCommand(addr GRPCAddrFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Submit one op through the pending state machine and report its ack",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _ := cmd.Flags().GetString("doc")
			msgType, _ := cmd.Flags().GetString("type")
			data, _ := cmd.Flags().GetString("data")
			if doc == "" {
				return fmt.Errorf("--doc is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			delivered := make(chan struct {
				msg     *v1.SequencedMessage
				matched bool
			}, 1)
			cl := deltaclient.New(addr(), doc, nil, cfgpkg.Default().Reconnect,
				func([]byte, any) {},
				nil,
				func(msg *v1.SequencedMessage, matched bool, meta *pending.BatchMetadata) {
					if matched {
						select {
						case delivered <- struct {
							msg     *v1.SequencedMessage
							matched bool
						}{msg, matched}:
						default:
						}
					}
				},
			)

			runErr := make(chan error, 1)
			go func() { runErr <- cl.Run(ctx) }()

			deadline := time.Now().Add(5 * time.Second)
			for !cl.Connected() && time.Now().Before(deadline) {
				time.Sleep(20 * time.Millisecond)
			}
			if !cl.Connected() {
				return fmt.Errorf("timed out waiting to connect to %s", addr())
			}

			cl.SubmitLocal(msgType, []byte(data), nil, nil)

			select {
			case d := <-delivered:
				out, _ := json.Marshal(map[string]any{
					"acked":        true,
					"sequenceNum":  d.msg.SequenceNumber,
					"pendingCount": cl.StateMachine().PendingCount(),
				})
				fmt.Println(string(out))
			case <-ctx.Done():
				return fmt.Errorf("timed out waiting for ack")
			}
			return nil
		},
	}
	cmd.Flags().String("doc", "", "Document id")
	cmd.Flags().String("type", "message", "Op message type")
	cmd.Flags().String("data", "", "Op content")
	return cmd
}
