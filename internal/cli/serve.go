package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckforge/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP editor API without the shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		port := servePort
		if port == 0 {
			port = a.cfg.API.Port
		}

		server := api.NewServer(api.Config{Port: port}, a.decks, a.cards, a.logger)
		server.Start()

		<-cmd.Context().Done()
		return server.Stop(context.Background())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (defaults to the configured api.port)")
	rootCmd.AddCommand(serveCmd)
}
