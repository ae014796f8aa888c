package serverrun

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/docstream/internal/config"
	"github.com/rzbill/docstream/internal/docregistry"
	"github.com/rzbill/docstream/internal/pending"
	"github.com/rzbill/docstream/internal/pendinginspect"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

// inertRuntime satisfies pending.Runtime with no-ops; ls only needs a
// StateMachine to reconstruct Snapshot() from a saved blob, never to drive
// live submission or replay.
type inertRuntime struct{}

func (inertRuntime) Connected() bool             { return false }
func (inertRuntime) ClientID() (string, bool)    { return "", false }
func (inertRuntime) FlushMode() pending.FlushMode { return pending.Automatic }
func (inertRuntime) SetFlushMode(pending.FlushMode) {}
func (inertRuntime) Flush()                       {}
func (inertRuntime) Resubmit(string, []byte, any, map[string]any) {}
func (inertRuntime) CloseFn(error)                {}

// NewPendingCommand groups debug subcommands for inspecting a document's
// serialized pending-op state directly against the sequencer's data
// directory, without a live client connection — for an operator
// diagnosing a stuck client after the fact.
func NewPendingCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "pending", Short: "Inspect a document's saved pending-op state"}
	cmd.AddCommand(newPendingLsCommand())
	return cmd
}

func newPendingLsCommand() *cobra.Command {
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List entries from a document's saved pending-op handoff blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			docID, _ := cmd.Flags().GetString("doc")
			expr, _ := cmd.Flags().GetString("filter")
			if docID == "" {
				return fmt.Errorf("--doc is required")
			}
			if dataDir == "" {
				dataDir = cfgpkg.DefaultDataDir()
			}

			db, err := pebblestore.Open(pebblestore.Options{
				DataDir: filepath.Join(dataDir, "store"),
				Fsync:   pebblestore.FsyncModeNever,
			})
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			blob, err := docregistry.LoadPendingBlob(db, docID)
			if err != nil {
				return fmt.Errorf("load pending blob: %w", err)
			}
			if len(blob) == 0 {
				return nil
			}
			state, err := pending.DecodeState(blob)
			if err != nil {
				return fmt.Errorf("decode pending state: %w", err)
			}

			filter, err := pendinginspect.NewFilter(expr)
			if err != nil {
				return fmt.Errorf("invalid --filter: %w", err)
			}

			sm := pending.NewStateMachine(inertRuntime{}, func([]byte, any) {}, state)
			for _, qe := range pendinginspect.Apply(sm.Snapshot(), filter) {
				out, _ := json.Marshal(map[string]any{
					"queue":                   qe.Queue,
					"kind":                    qe.Entry.Kind.String(),
					"messageType":             qe.Entry.MessageType,
					"clientSequenceNumber":    qe.Entry.ClientSequenceNumber,
					"referenceSequenceNumber": qe.Entry.ReferenceSequenceNumber,
					"contentSize":             len(qe.Entry.Content),
				})
				fmt.Println(string(out))
			}
			return nil
		},
	}
	lsCmd.Flags().String("data-dir", "", "Data directory (defaults to the OS-specific application data directory)")
	lsCmd.Flags().String("doc", "", "Document id")
	lsCmd.Flags().String("filter", "", "CEL expression over queue/kind/messageType/clientSequenceNumber/referenceSequenceNumber/contentSize")
	return lsCmd
}
