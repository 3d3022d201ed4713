package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/deckfile"
)

var importCmd = &cobra.Command{
	Use:   "import <file.txt> <deck>",
	Short: "Create a deck from a text deck list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		name := deck.SanitizeName(args[1])
		if name == "" {
			return fmt.Errorf("invalid deck name %q", args[1])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := deckfile.ParseFile(path)
		if err != nil {
			return err
		}
		for _, lineErr := range result.Errors {
			fmt.Printf("skipped: %s\n", lineErr)
		}
		if len(result.Entries) == 0 {
			return fmt.Errorf("no card lines in %s", path)
		}

		list := make([]deck.CardQuantity, len(result.Entries))
		for i, e := range result.Entries {
			list[i] = deck.CardQuantity{Name: e.Name, Quantity: e.Quantity}
		}

		d, missing, err := a.decks.ImportDeck(cmd.Context(), name, list)
		if err != nil {
			return err
		}
		for _, n := range missing {
			fmt.Printf("not found: %s\n", n)
		}
		fmt.Printf("imported %d cards into deck %q\n", len(list)-len(missing), d.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
