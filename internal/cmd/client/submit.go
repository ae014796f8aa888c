package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
)

// NewSubmitCommand submits a single op to a document and prints the
// sequencer's acceptance response. It does not wait for the ack to come
// back over Stream; pair it with `docstream tail` to observe sequencing.
func NewSubmitCommand(addr GRPCAddrFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an op to a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _ := cmd.Flags().GetString("doc")
			clientID, _ := cmd.Flags().GetString("client")
			msgType, _ := cmd.Flags().GetString("type")
			data, _ := cmd.Flags().GetString("data")
			csn, _ := cmd.Flags().GetInt64("csn")
			rsn, _ := cmd.Flags().GetInt64("rsn")

			if doc == "" {
				return fmt.Errorf("--doc is required")
			}
			if clientID == "" {
				return fmt.Errorf("--client is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			op := v1.Op{
				DocID:                   doc,
				MessageType:             msgType,
				ClientID:                clientID,
				ClientSequenceNumber:    csn,
				ReferenceSequenceNumber: rsn,
				Content:                 []byte(data),
			}
			return withSequencerClient(ctx, addr(), func(cli v1.SequencerClient) error {
				resp, err := cli.Submit(ctx, &v1.SubmitRequest{Op: op})
				if err != nil {
					return err
				}
				out, _ := json.Marshal(map[string]any{"accepted": resp.Accepted})
				fmt.Println(string(out))
				return nil
			})
		},
	}
	cmd.Flags().String("doc", "", "Document id")
	cmd.Flags().String("client", "", "Submitting client id")
	cmd.Flags().String("type", "message", "Op message type")
	cmd.Flags().String("data", "", "Op content")
	cmd.Flags().Int64("csn", 1, "Client sequence number to stamp on this op")
	cmd.Flags().Int64("rsn", 0, "Reference sequence number this op was generated against")
	return cmd
}
