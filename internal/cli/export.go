package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckforge/internal/deckfile"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <deck> <path>",
	Short: "Write a deck to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var format deckfile.Format
		switch exportFormat {
		case "txt":
			format = deckfile.FormatTxt
		case "csv":
			format = deckfile.FormatCSV
		case "json":
			format = deckfile.FormatJSON
		default:
			return fmt.Errorf("format must be txt, csv or json, got %q", exportFormat)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.decks.DeckByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		entries, err := a.decks.Entries(cmd.Context(), d.ID)
		if err != nil {
			return err
		}

		if err := deckfile.ExportFile(args[1], format, d.Name, entries); err != nil {
			return err
		}
		fmt.Printf("exported %q to %s\n", d.Name, args[1])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "txt", "export format: txt, csv or json")
	rootCmd.AddCommand(exportCmd)
}
