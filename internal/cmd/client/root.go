package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the docstream client. It
// registers the submit, tail, and watch commands, each resolving the
// sequencer's address through addr.
func NewRoot(addr GRPCAddrFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "docstream",
		Short: "docstream client commands",
	}
	root.AddCommand(NewSubmitCommand(addr))
	root.AddCommand(NewTailCommand(addr))
	root.AddCommand(NewWatchCommand(addr))
	return root
}
