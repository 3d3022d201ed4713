package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deckforge",
	Short: "deckforge is an interactive EDH deck-building shell",
	Long: `deckforge builds and edits Commander decks from an interactive shell
backed by a local SQLite database and Scryfall card data.

Running deckforge with no subcommand starts the shell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

// ExecuteContext runs the root command under ctx, which carries the
// interrupt signal for a clean shutdown.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
