package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/edhtools/deckforge/internal/cards"
	"github.com/edhtools/deckforge/internal/config"
	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/scryfall"
	"github.com/edhtools/deckforge/internal/storage"
	"github.com/edhtools/deckforge/internal/storage/repository"
)

type fakeProvider struct {
	cards map[string]*scryfall.Card
}

func (f *fakeProvider) GetCardByName(_ context.Context, name string) (*scryfall.Card, error) {
	if c, ok := f.cards[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, scryfall.ErrNotFound
}

func (f *fakeProvider) Autocomplete(_ context.Context, partial string) ([]string, error) {
	var names []string
	for _, c := range f.cards {
		if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(partial)) {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

func (f *fakeProvider) GetCollection(_ context.Context, names []string) (*scryfall.CollectionResponse, error) {
	resp := &scryfall.CollectionResponse{Object: "list"}
	for _, name := range names {
		if c, ok := f.cards[strings.ToLower(name)]; ok {
			resp.Data = append(resp.Data, c)
		} else {
			resp.NotFound = append(resp.NotFound, scryfall.CollectionIdentifier{Name: name})
		}
	}
	return resp, nil
}

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()

	db, err := storage.Open(&storage.Config{
		Path:        ":memory:",
		BusyTimeout: time.Second,
		JournalMode: "MEMORY",
		Synchronous: "OFF",
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	provider := &fakeProvider{cards: map[string]*scryfall.Card{
		"sol ring": {
			ID: "c1", Name: "Sol Ring", TypeLine: "Artifact", ManaCost: "{1}", CMC: 1,
			Legalities: map[string]string{"commander": "legal"},
		},
		"tatyova": {
			ID: "c2", Name: "Tatyova", TypeLine: "Legendary Creature - Merfolk Druid",
			ManaCost: "{3}{G}{U}", CMC: 5,
			Legalities: map[string]string{"commander": "legal"},
		},
	}}
	cardSvc := cards.NewService(repository.NewCardRepository(db.Conn()), provider, cards.Options{})
	decks := deck.NewService(db, cardSvc)

	var out bytes.Buffer
	return NewSession(&out, db, decks, cardSvc, nil, config.DefaultConfig()), &out
}

func dispatch(t *testing.T, s *Session, lines ...string) {
	t.Helper()
	for _, line := range lines {
		s.Dispatch(context.Background(), line)
	}
}

func TestModeMachineRootOnly(t *testing.T) {
	s, out := newTestSession(t)

	dispatch(t, s, "create Allies", "select Allies")
	if !s.InDeckMode() {
		t.Fatal("select did not enter deck mode")
	}

	// deck management is rejected while a deck is selected
	out.Reset()
	dispatch(t, s, "create Another")
	if !strings.Contains(out.String(), "not supported while a deck is selected") {
		t.Errorf("create in deck mode printed %q", out.String())
	}
	out.Reset()
	dispatch(t, s, "select Allies")
	if !strings.Contains(out.String(), "not supported") {
		t.Errorf("nested select printed %q", out.String())
	}
	if !s.InDeckMode() {
		t.Error("rejected command changed the mode")
	}
}

func TestModeMachineDeckOnly(t *testing.T) {
	s, out := newTestSession(t)

	dispatch(t, s, "add Sol Ring")
	if !strings.Contains(out.String(), "no deck selected") {
		t.Errorf("add in root mode printed %q", out.String())
	}
	if s.InDeckMode() {
		t.Error("card command entered deck mode")
	}
}

func TestExitLeavesDeckModeThenSession(t *testing.T) {
	s, _ := newTestSession(t)

	dispatch(t, s, "create Allies", "select Allies", "exit")
	if s.InDeckMode() {
		t.Fatal("exit did not leave deck mode")
	}
	if s.Done() {
		t.Fatal("exit from deck mode ended the session")
	}

	dispatch(t, s, "exit")
	if !s.Done() {
		t.Fatal("exit from root mode did not end the session")
	}
}

func TestSelectMissingDeckStaysInRoot(t *testing.T) {
	s, out := newTestSession(t)

	dispatch(t, s, "select Nope")
	if s.InDeckMode() {
		t.Fatal("selecting a missing deck entered deck mode")
	}
	if !strings.Contains(out.String(), "deck not found") {
		t.Errorf("printed %q, want a deck-not-found message", out.String())
	}
}

func TestCacheFollowsMutations(t *testing.T) {
	s, _ := newTestSession(t)

	dispatch(t, s, "create Allies", "select Allies",
		"add Sol Ring 2", "set-commander Tatyova", "add Sol Ring 1")

	if len(s.entries) != 2 {
		t.Fatalf("cached %d entries, want 2", len(s.entries))
	}
	// commander sorts first
	if s.entries[0].CardName != "Tatyova" || !s.entries[0].IsCommander {
		t.Errorf("first cached entry = %+v, want the commander", s.entries[0])
	}
	if s.entries[1].Quantity != 3 {
		t.Errorf("Sol Ring cached quantity = %d, want 3", s.entries[1].Quantity)
	}

	dispatch(t, s, "remove Sol Ring 3")
	if len(s.entries) != 1 {
		t.Fatalf("cached %d entries after full removal, want 1", len(s.entries))
	}

	dispatch(t, s, "reset-commander")
	if s.entries[0].IsCommander {
		t.Error("cached commander flag survived reset-commander")
	}
}

func TestCacheRefreshWhenStale(t *testing.T) {
	s, _ := newTestSession(t)

	dispatch(t, s, "create Allies", "select Allies", "add Sol Ring 1")

	// an external writer mutates the store behind the session's back
	d := s.SelectedDeck()
	if _, err := s.decks.AddCard(context.Background(), d.ID, "Tatyova", 1); err != nil {
		t.Fatalf("external AddCard failed: %v", err)
	}
	if len(s.entries) != 1 {
		t.Fatalf("cache unexpectedly refreshed early: %d entries", len(s.entries))
	}

	s.MarkStale()
	dispatch(t, s, "list")
	if len(s.entries) != 2 {
		t.Errorf("cache holds %d entries after stale refresh, want 2", len(s.entries))
	}
}

func TestDispatchCounterAndErrors(t *testing.T) {
	s, out := newTestSession(t)

	dispatch(t, s, "", "   ", "frobnicate", "create Allies", "create Allies")
	// blank lines do not count; unknown and failed commands do
	if got := s.CommandCount(); got != 3 {
		t.Errorf("command count = %d, want 3", got)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("duplicate create printed %q", out.String())
	}
	if !strings.Contains(out.String(), "unrecognized command") {
		t.Errorf("unknown keyword printed %q", out.String())
	}
}

func TestREPLRunsUntilEOF(t *testing.T) {
	s, out := newTestSession(t)

	in := strings.NewReader("create Allies\nselect Allies\nadd Sol Ring 2\nlist\n")
	if err := NewREPL(s, in).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Sol Ring") {
		t.Errorf("list output missing the added card: %q", out.String())
	}
	if s.CommandCount() != 4 {
		t.Errorf("command count = %d, want 4", s.CommandCount())
	}
}

func TestREPLExitCommand(t *testing.T) {
	s, _ := newTestSession(t)

	in := strings.NewReader("exit\nlist\n")
	if err := NewREPL(s, in).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.CommandCount() != 1 {
		t.Errorf("commands after exit still ran: count = %d", s.CommandCount())
	}
}
