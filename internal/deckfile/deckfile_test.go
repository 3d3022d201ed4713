package deckfile

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/edhtools/deckforge/internal/storage/models"
)

func TestParse(t *testing.T) {
	input := `// my goblins
1 Krenko, Mob Boss

4x Goblin Matron
2 Lightning Bolt
not a card line
0 Zero Copies
`
	result, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []Entry{
		{Quantity: 1, Name: "Krenko, Mob Boss"},
		{Quantity: 4, Name: "Goblin Matron"},
		{Quantity: 2, Name: "Lightning Bolt"},
	}
	if len(result.Entries) != len(want) {
		t.Fatalf("parsed %d entries, want %d: %+v", len(result.Entries), len(want), result.Entries)
	}
	for i, e := range want {
		if result.Entries[i] != e {
			t.Errorf("entry %d = %+v, want %+v", i, result.Entries[i], e)
		}
	}

	if len(result.Errors) != 2 {
		t.Errorf("collected %d line errors, want 2: %v", len(result.Errors), result.Errors)
	}
}

func sampleEntries() []*models.DeckEntry {
	return []*models.DeckEntry{
		{CardName: "Krenko, Mob Boss", Quantity: 1, IsCommander: true},
		{CardName: "Goblin Matron", Quantity: 4},
		{CardName: "Mountain", Quantity: 30},
	}
}

func TestExportTxt(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatTxt, "Goblins", sampleEntries()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got := buf.String()
	want := "1 Krenko, Mob Boss\n4 Goblin Matron\n30 Mountain\n"
	if got != want {
		t.Errorf("txt export = %q, want %q", got, want)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatCSV, "Goblins", sampleEntries()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv has %d lines, want header plus 3 rows: %q", len(lines), buf.String())
	}
	if lines[0] != "Quantity,Card,Commander" {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Krenko") || !strings.Contains(lines[1], "COMMANDER") {
		t.Errorf("commander row = %q", lines[1])
	}
	if strings.Contains(lines[2], "COMMANDER") {
		t.Errorf("non-commander row = %q", lines[2])
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatJSON, "Goblins", sampleEntries()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var deck struct {
		Name  string `json:"name"`
		Cards []struct {
			Name      string `json:"name"`
			Quantity  int    `json:"quantity"`
			Commander bool   `json:"commander"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(buf.Bytes(), &deck); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if deck.Name != "Goblins" || len(deck.Cards) != 3 {
		t.Fatalf("decoded %+v", deck)
	}
	if !deck.Cards[0].Commander || deck.Cards[0].Quantity != 1 {
		t.Errorf("commander card = %+v", deck.Cards[0])
	}
}

func TestTxtExportReimports(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatTxt, "Goblins", sampleEntries()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	result, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("re-import produced errors: %v", result.Errors)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("re-imported %d entries, want 3", len(result.Entries))
	}
	if result.Entries[2].Name != "Mountain" || result.Entries[2].Quantity != 30 {
		t.Errorf("entry = %+v", result.Entries[2])
	}
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, Format("yaml"), "Goblins", nil); err == nil {
		t.Fatal("unknown format exported successfully")
	}
}
