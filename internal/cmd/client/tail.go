package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
)

// NewTailCommand streams a document's sequenced messages to stdout, one
// JSON line per message, starting after --since (0 replays the whole
// log).
func NewTailCommand(addr GRPCAddrFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail a document's sequenced stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _ := cmd.Flags().GetString("doc")
			clientID, _ := cmd.Flags().GetString("client")
			since, _ := cmd.Flags().GetInt64("since")

			if doc == "" {
				return fmt.Errorf("--doc is required")
			}
			if clientID == "" {
				clientID = "docstream-cli"
			}

			ctx := cmd.Context()
			return withSequencerClient(ctx, addr(), func(cli v1.SequencerClient) error {
				stream, err := cli.Stream(ctx, &v1.StreamRequest{DocID: doc, ClientID: clientID, SinceSequenceNumber: since})
				if err != nil {
					return err
				}
				for {
					msg, err := stream.Recv()
					if err != nil {
						if err == io.EOF || ctx.Err() != nil {
							return nil
						}
						return err
					}
					if msg.Type == v1.BackfillCompleteType {
						continue
					}
					printSequencedMessage(msg)
				}
			})
		},
	}
	cmd.Flags().String("doc", "", "Document id")
	cmd.Flags().String("client", "", "Client id to tail as (default: docstream-cli)")
	cmd.Flags().Int64("since", 0, "Resume after this sequence number instead of replaying from the start")
	return cmd
}

func printSequencedMessage(msg *v1.SequencedMessage) {
	fields := map[string]any{
		"seq":      msg.SequenceNumber,
		"type":     msg.Type,
		"clientId": msg.ClientID,
		"csn":      msg.ClientSequenceNumber,
		"rsn":      msg.ReferenceSequenceNumber,
	}
	if msg.Batch != nil {
		fields["batch"] = *msg.Batch
	}
	for k, v := range decodedContent(msg.Content) {
		fields[k] = v
	}
	out, _ := json.Marshal(fields)
	fmt.Println(string(out))
}
