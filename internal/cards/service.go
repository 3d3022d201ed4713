// Package cards provides card resolution backed by a read-through cache:
// lookups hit the local cards table first and fall back to the Scryfall
// provider, refreshing the cache on the way out.
package cards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edhtools/deckforge/internal/scryfall"
	"github.com/edhtools/deckforge/internal/storage/models"
	"github.com/edhtools/deckforge/internal/storage/repository"
)

// MinPartialLength is the minimum prefix length for autocomplete lookups.
const MinPartialLength = 2

// ErrShortPartial is returned when an autocomplete prefix is too short.
var ErrShortPartial = errors.New("partial name too short")

// ErrNotFound is returned when a card cannot be resolved anywhere.
var ErrNotFound = scryfall.ErrNotFound

// Provider resolves cards over the network. *scryfall.Client satisfies it.
type Provider interface {
	GetCardByName(ctx context.Context, name string) (*scryfall.Card, error)
	Autocomplete(ctx context.Context, partial string) ([]string, error)
	GetCollection(ctx context.Context, names []string) (*scryfall.CollectionResponse, error)
}

// Service is the read-through card cache.
type Service struct {
	repo           repository.CardRepository
	provider       Provider
	staleThreshold time.Duration
}

// Options configures the card service.
type Options struct {
	// StaleThreshold is how old cached data may be before it is
	// refreshed from the provider. Default: 7 days.
	StaleThreshold time.Duration
}

// NewService creates a card service over the given cache and provider.
func NewService(repo repository.CardRepository, provider Provider, opts Options) *Service {
	if opts.StaleThreshold == 0 {
		opts.StaleThreshold = 7 * 24 * time.Hour
	}
	return &Service{
		repo:           repo,
		provider:       provider,
		staleThreshold: opts.StaleThreshold,
	}
}

// GetByName resolves a card by name, cache first. A stale cache entry is
// still returned when the provider is unreachable; resolution fails with
// ErrNotFound only when neither side knows the card.
func (s *Service) GetByName(ctx context.Context, name string) (*models.Card, error) {
	cached, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cached != nil && time.Since(cached.CachedAt) < s.staleThreshold {
		return cached, nil
	}

	fetched, err := s.provider.GetCardByName(ctx, name)
	if err != nil {
		if cached != nil && !errors.Is(err, scryfall.ErrNotFound) {
			// Provider unreachable; stale data beats no data.
			return cached, nil
		}
		return nil, err
	}

	card := fetched.ToModel()
	if err := s.repo.Upsert(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to cache card %q: %w", card.Name, err)
	}
	return card, nil
}

// GetMany resolves a set of names, batching the cache misses through the
// provider's collection endpoint. Names that resolve nowhere are returned
// in missing; the caller reconciles.
func (s *Service) GetMany(ctx context.Context, names []string) (found []*models.Card, missing []string, err error) {
	cached, err := s.repo.GetManyByName(ctx, names)
	if err != nil {
		return nil, nil, err
	}

	have := make(map[string]*models.Card, len(cached))
	for _, card := range cached {
		have[card.Name] = card
	}

	var misses []string
	for _, name := range names {
		if _, ok := have[name]; !ok {
			misses = append(misses, name)
		}
	}

	if len(misses) > 0 {
		resp, err := s.provider.GetCollection(ctx, misses)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve %d cards: %w", len(misses), err)
		}
		for _, sc := range resp.Data {
			card := sc.ToModel()
			if err := s.repo.Upsert(ctx, card); err != nil {
				return nil, nil, fmt.Errorf("failed to cache card %q: %w", card.Name, err)
			}
			have[card.Name] = card
			// The provider may canonicalize the name; keep the
			// requested spelling resolvable too.
			for _, requested := range misses {
				if strings.EqualFold(requested, card.Name) {
					have[requested] = card
				}
			}
		}
		for _, id := range resp.NotFound {
			missing = append(missing, id.Name)
		}
	}

	for _, name := range names {
		if card, ok := have[name]; ok {
			found = append(found, card)
		}
	}
	return found, missing, nil
}

// Autocomplete returns card names matching the partial name. Fails with
// ErrShortPartial when the prefix is below MinPartialLength.
func (s *Service) Autocomplete(ctx context.Context, partial string) ([]string, error) {
	if len(partial) < MinPartialLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrShortPartial, MinPartialLength)
	}
	return s.provider.Autocomplete(ctx, partial)
}

// SavedNames returns every card name present in the local cache.
func (s *Service) SavedNames(ctx context.Context) ([]string, error) {
	return s.repo.Names(ctx)
}
