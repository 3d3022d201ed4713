package cards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edhtools/deckforge/internal/scryfall"
	"github.com/edhtools/deckforge/internal/storage"
	"github.com/edhtools/deckforge/internal/storage/repository"
)

// countingProvider records lookups and can be forced offline.
type countingProvider struct {
	cards   map[string]*scryfall.Card
	lookups int
	offline bool
}

var errOffline = errors.New("connection refused")

func (p *countingProvider) GetCardByName(_ context.Context, name string) (*scryfall.Card, error) {
	p.lookups++
	if p.offline {
		return nil, errOffline
	}
	if c, ok := p.cards[name]; ok {
		return c, nil
	}
	return nil, scryfall.ErrNotFound
}

func (p *countingProvider) Autocomplete(_ context.Context, _ string) ([]string, error) {
	if p.offline {
		return nil, errOffline
	}
	names := make([]string, 0, len(p.cards))
	for name := range p.cards {
		names = append(names, name)
	}
	return names, nil
}

func (p *countingProvider) GetCollection(_ context.Context, names []string) (*scryfall.CollectionResponse, error) {
	p.lookups++
	if p.offline {
		return nil, errOffline
	}
	resp := &scryfall.CollectionResponse{Object: "list"}
	for _, name := range names {
		if c, ok := p.cards[name]; ok {
			resp.Data = append(resp.Data, c)
		} else {
			resp.NotFound = append(resp.NotFound, scryfall.CollectionIdentifier{Name: name})
		}
	}
	return resp, nil
}

func newTestCardService(t *testing.T, opts Options) (*Service, *countingProvider) {
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

	provider := &countingProvider{cards: map[string]*scryfall.Card{
		"Sol Ring": {
			ID: "c1", Name: "Sol Ring", TypeLine: "Artifact", ManaCost: "{1}", CMC: 1,
			Legalities: map[string]string{"commander": "legal"},
			Prices:     scryfall.Prices{USD: "1.25"},
		},
		"Fellwar Stone": {
			ID: "c2", Name: "Fellwar Stone", TypeLine: "Artifact", ManaCost: "{2}", CMC: 2,
			Legalities: map[string]string{"commander": "legal"},
		},
	}}

	return NewService(repository.NewCardRepository(db.Conn()), provider, opts), provider
}

func TestGetByNameReadThrough(t *testing.T) {
	s, provider := newTestCardService(t, Options{})
	ctx := context.Background()

	card, err := s.GetByName(ctx, "Sol Ring")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if card.Name != "Sol Ring" || card.PriceUSD != 1.25 {
		t.Errorf("card = %+v", card)
	}
	if provider.lookups != 1 {
		t.Fatalf("provider lookups = %d, want 1", provider.lookups)
	}

	// fresh cache entries never hit the provider
	if _, err := s.GetByName(ctx, "Sol Ring"); err != nil {
		t.Fatalf("cached GetByName failed: %v", err)
	}
	if provider.lookups != 1 {
		t.Errorf("provider lookups after cached read = %d, want 1", provider.lookups)
	}
}

func TestGetByNameNotFound(t *testing.T) {
	s, _ := newTestCardService(t, Options{})

	if _, err := s.GetByName(context.Background(), "Not A Card"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetByNameStaleFallback(t *testing.T) {
	// a one-nanosecond threshold makes every cache entry stale
	s, provider := newTestCardService(t, Options{StaleThreshold: time.Nanosecond})
	ctx := context.Background()

	if _, err := s.GetByName(ctx, "Sol Ring"); err != nil {
		t.Fatalf("initial GetByName failed: %v", err)
	}

	provider.offline = true
	card, err := s.GetByName(ctx, "Sol Ring")
	if err != nil {
		t.Fatalf("GetByName with offline provider failed: %v", err)
	}
	if card.Name != "Sol Ring" {
		t.Errorf("stale fallback returned %+v", card)
	}

	// no cache entry and no provider is a hard failure
	if _, err := s.GetByName(ctx, "Fellwar Stone"); err == nil {
		t.Error("uncached lookup with offline provider succeeded")
	}
}

func TestGetMany(t *testing.T) {
	s, provider := newTestCardService(t, Options{})
	ctx := context.Background()

	// warm exactly one of the three names
	if _, err := s.GetByName(ctx, "Sol Ring"); err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	provider.lookups = 0

	found, missing, err := s.GetMany(ctx, []string{"Sol Ring", "Fellwar Stone", "Not A Card"})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("found %d cards, want 2", len(found))
	}
	if len(missing) != 1 || missing[0] != "Not A Card" {
		t.Errorf("missing = %v, want [Not A Card]", missing)
	}
	// one batched collection call covers both misses
	if provider.lookups != 1 {
		t.Errorf("provider lookups = %d, want 1", provider.lookups)
	}
}

func TestAutocompleteShortPartial(t *testing.T) {
	s, _ := newTestCardService(t, Options{})

	if _, err := s.Autocomplete(context.Background(), "s"); !errors.Is(err, ErrShortPartial) {
		t.Errorf("error = %v, want ErrShortPartial", err)
	}
	if _, err := s.Autocomplete(context.Background(), "so"); err != nil {
		t.Errorf("two-character partial failed: %v", err)
	}
}
