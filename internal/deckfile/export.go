package deckfile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/edhtools/deckforge/internal/storage/models"
)

// Format selects an export encoding.
type Format string

const (
	FormatTxt  Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// jsonDeck is the JSON export shape.
type jsonDeck struct {
	Name  string     `json:"name"`
	Cards []jsonCard `json:"cards"`
}

type jsonCard struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Commander bool   `json:"commander"`
}

// Export writes a deck in the given format. Entries are expected in
// display order (commander first), which every format preserves.
func Export(w io.Writer, format Format, deckName string, entries []*models.DeckEntry) error {
	switch format {
	case FormatTxt:
		return exportTxt(w, entries)
	case FormatCSV:
		return exportCSV(w, entries)
	case FormatJSON:
		return exportJSON(w, deckName, entries)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ExportFile writes a deck to path, creating parent directories.
func ExportFile(path string, format Format, deckName string, entries []*models.DeckEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := Export(f, format, deckName, entries); err != nil {
		return err
	}
	return f.Close()
}

func exportTxt(w io.Writer, entries []*models.DeckEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%d %s\n", e.Quantity, e.CardName); err != nil {
			return fmt.Errorf("failed to write deck list: %w", err)
		}
	}
	return nil
}

func exportCSV(w io.Writer, entries []*models.DeckEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Quantity", "Card", "Commander"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		commander := ""
		if e.IsCommander {
			commander = "COMMANDER"
		}
		if err := cw.Write([]string{strconv.Itoa(e.Quantity), e.CardName, commander}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func exportJSON(w io.Writer, deckName string, entries []*models.DeckEntry) error {
	out := jsonDeck{Name: deckName, Cards: make([]jsonCard, 0, len(entries))}
	for _, e := range entries {
		out.Cards = append(out.Cards, jsonCard{
			Name:      e.CardName,
			Quantity:  e.Quantity,
			Commander: e.IsCommander,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode deck JSON: %w", err)
	}
	return nil
}
