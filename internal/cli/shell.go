package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckforge/internal/api"
	"github.com/edhtools/deckforge/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive deck-building shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(ctx context.Context) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session := shell.NewSession(os.Stdout, a.db, a.decks, a.cards, a.meta, a.cfg)

	// external writers (the editor API) invalidate the cached entries
	watcher, err := shell.NewWatcher(a.db.Path(), session.MarkStale, a.logger)
	if err != nil {
		a.logger.Warn("database watcher unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	if a.cfg.API.Enabled {
		server := api.NewServer(api.Config{Port: a.cfg.API.Port}, a.decks, a.cards, a.logger)
		server.Start()
		defer func() { _ = server.Stop(context.Background()) }()
	}

	return shell.NewREPL(session, os.Stdin).Run(ctx)
}
