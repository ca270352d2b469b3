// Command linkctl is the operator tool for the link service.
//
//	linkctl url --discord 123456789012345678
//	linkctl events --db data/link.db --discord 123456789012345678
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree. Tests build their own so flag
// values never leak between runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkctl",
		Short: "Inspect the Discord ↔ GitHub link flow",
		Long: `linkctl helps operators debug the account-linking flow.

It prints the links the bot hands out and the GitHub authorization URL the
service would redirect to, and it reads the link journal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newURLCmd())
	root.AddCommand(newEventsCmd())

	return root
}
