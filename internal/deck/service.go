// Package deck implements the deck mutation engine: every domain
// operation on decks and their card entries, with the consistency
// invariants enforced through explicit transaction boundaries.
//
// Two invariants hold after any operation: an entry's quantity is
// strictly positive (a mutation that would reach zero deletes the row),
// and at most one entry per deck is the commander.
package deck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edhtools/deckforge/internal/cards"
	"github.com/edhtools/deckforge/internal/storage"
	"github.com/edhtools/deckforge/internal/storage/models"
	"github.com/edhtools/deckforge/internal/storage/repository"
)

// CardQuantity names a card and how many copies of it to import.
type CardQuantity struct {
	Name     string
	Quantity int
}

// Summary describes one deck for root-mode listings.
type Summary struct {
	Deck      *models.Deck
	Commander string // empty when none is set
	Cards     int    // total copies across entries
}

// Service is the deck mutation engine.
type Service struct {
	db      *storage.DB
	decks   repository.DeckRepository
	entries repository.DeckCardRepository
	cards   *cards.Service
	now     func() time.Time
}

// NewService creates the engine over an open database and card resolver.
func NewService(db *storage.DB, cardService *cards.Service) *Service {
	return &Service{
		db:      db,
		decks:   repository.NewDeckRepository(db.Conn()),
		entries: repository.NewDeckCardRepository(db.Conn()),
		cards:   cardService,
		now:     time.Now,
	}
}

// SanitizeName restricts a deck name to [0-9A-Za-z _+-] and trims it.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z',
			r == ' ', r == '_', r == '+', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// DeckByName looks up a deck, failing with ErrDeckNotFound.
func (s *Service) DeckByName(ctx context.Context, name string) (*models.Deck, error) {
	deck, err := s.decks.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	return deck, nil
}

// DeckByID looks up a deck by id, failing with ErrDeckNotFound.
func (s *Service) DeckByID(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("%w: id %d", ErrDeckNotFound, id)
	}
	return deck, nil
}

// Entries returns a deck's entries, commander first, then by card name.
func (s *Service) Entries(ctx context.Context, deckID int64) ([]*models.DeckEntry, error) {
	return s.entries.ListByDeck(ctx, deckID)
}

// Commander returns the commander entry of a deck, or nil when unset.
func (s *Service) Commander(ctx context.Context, deckID int64) (*models.DeckEntry, error) {
	return s.entries.Commander(ctx, deckID)
}

// ListDecks returns deck summaries, newest first. limit <= 0 means all.
func (s *Service) ListDecks(ctx context.Context, limit int) ([]*Summary, error) {
	decks, err := s.decks.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*Summary, 0, len(decks))
	for _, d := range decks {
		summary := &Summary{Deck: d}
		commander, err := s.entries.Commander(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if commander != nil {
			summary.Commander = commander.CardName
		}
		if summary.Cards, err = s.entries.CountByDeck(ctx, d.ID); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CreateDeck creates an empty deck, failing with ErrDeckExists when the
// exact name is taken.
func (s *Service) CreateDeck(ctx context.Context, name string) (*models.Deck, error) {
	name = SanitizeName(name)
	if name == "" {
		return nil, fmt.Errorf("deck name is empty after sanitization")
	}

	existing, err := s.decks.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeckExists, name)
	}

	return s.decks.Create(ctx, name, s.now())
}

// CreateDeckWithCommander creates a deck seeded with its commander.
// The card is resolved before anything is written: a failed resolution
// leaves no deck row behind, and the deck plus its commander entry are
// inserted in one transaction.
func (s *Service) CreateDeckWithCommander(ctx context.Context, name, cardName string) (*models.Deck, error) {
	name = SanitizeName(name)
	existing, err := s.decks.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeckExists, name)
	}

	card, err := s.resolveCard(ctx, cardName)
	if err != nil {
		return nil, err
	}

	var deck *models.Deck
	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var txErr error
		deck, txErr = s.decks.WithTx(tx).Create(ctx, name, s.now())
		if txErr != nil {
			return txErr
		}
		return s.entries.WithTx(tx).Insert(ctx, &models.DeckCard{
			DeckID:      deck.ID,
			CardID:      card.ID,
			Quantity:    1,
			IsCommander: true,
		})
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// RenameDeck renames old to new, failing with ErrDeckNotFound or
// ErrDeckExists.
func (s *Service) RenameDeck(ctx context.Context, oldName, newName string) (*models.Deck, error) {
	newName = SanitizeName(newName)
	deck, err := s.DeckByName(ctx, oldName)
	if err != nil {
		return nil, err
	}

	taken, err := s.decks.GetByName(ctx, newName)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeckExists, newName)
	}

	at := s.now()
	if err := s.decks.Rename(ctx, deck.ID, newName, at); err != nil {
		return nil, err
	}
	deck.Name = newName
	deck.UpdatedAt = at
	return deck, nil
}

// CopyDeck duplicates source into a new deck named dest. The copied
// entries are independent rows: later edits to dest never touch source.
func (s *Service) CopyDeck(ctx context.Context, source, dest string) (*models.Deck, error) {
	dest = SanitizeName(dest)
	src, err := s.DeckByName(ctx, source)
	if err != nil {
		return nil, err
	}

	taken, err := s.decks.GetByName(ctx, dest)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeckExists, dest)
	}

	var copied *models.Deck
	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var txErr error
		copied, txErr = s.decks.WithTx(tx).Create(ctx, dest, s.now())
		if txErr != nil {
			return txErr
		}
		return s.entries.WithTx(tx).CopyAll(ctx, src.ID, copied.ID)
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// DeleteDeck removes a deck and all of its entries in one transaction,
// without relying on storage-side cascades.
func (s *Service) DeleteDeck(ctx context.Context, name string) error {
	deck, err := s.DeckByName(ctx, name)
	if err != nil {
		return err
	}

	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.entries.WithTx(tx).DeleteByDeck(ctx, deck.ID); err != nil {
			return err
		}
		return s.decks.WithTx(tx).Delete(ctx, deck.ID)
	})
}

// AddCard adds qty copies of a card to the deck. Quantity changes to the
// commander are rejected with ErrCardIsCommander; those go through
// SetCommander/ResetCommander. Returns the post-mutation entry.
func (s *Service) AddCard(ctx context.Context, deckID int64, cardName string, qty int) (*models.DeckEntry, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	card, err := s.resolveCard(ctx, cardName)
	if err != nil {
		return nil, err
	}

	// Look up the entry by the resolved card id, not the typed name:
	// the resolver is case-insensitive and fuzzy, so a variant spelling
	// must still land on the row it resolves to.
	existing, err := s.entries.Get(ctx, deckID, card.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.IsCommander {
			return nil, fmt.Errorf("%w: %s", ErrCardIsCommander, card.Name)
		}
		newQty := existing.Quantity + qty
		err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := s.entries.WithTx(tx).UpdateQuantity(ctx, deckID, card.ID, newQty); err != nil {
				return err
			}
			return s.decks.WithTx(tx).Touch(ctx, deckID, s.now())
		})
		if err != nil {
			return nil, err
		}
		return s.entries.Entry(ctx, deckID, card.ID)
	}

	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.entries.WithTx(tx).Insert(ctx, &models.DeckCard{
			DeckID:   deckID,
			CardID:   card.ID,
			Quantity: qty,
		}); err != nil {
			return err
		}
		return s.decks.WithTx(tx).Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.entries.Entry(ctx, deckID, card.ID)
}

// RemoveCard removes up to qty copies of a card. Removing the last copy
// deletes the entry, demoting the commander if it was one. Returns the
// post-mutation entry (nil when deleted) and how many copies went away.
func (s *Service) RemoveCard(ctx context.Context, deckID int64, cardName string, qty int) (*models.DeckEntry, int, error) {
	if qty <= 0 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	existing, err := s.entries.GetByCardName(ctx, deckID, cardName)
	if err != nil {
		return nil, 0, err
	}
	if existing == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrCardNotOnDeck, cardName)
	}

	if qty >= existing.Quantity {
		removed := existing.Quantity
		err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := s.entries.WithTx(tx).Delete(ctx, deckID, existing.CardID); err != nil {
				return err
			}
			return s.decks.WithTx(tx).Touch(ctx, deckID, s.now())
		})
		if err != nil {
			return nil, 0, err
		}
		return nil, removed, nil
	}

	newQty := existing.Quantity - qty
	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.entries.WithTx(tx).UpdateQuantity(ctx, deckID, existing.CardID, newQty); err != nil {
			return err
		}
		return s.decks.WithTx(tx).Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, 0, err
	}
	entry, err := s.entries.Entry(ctx, deckID, existing.CardID)
	if err != nil {
		return nil, 0, err
	}
	return entry, qty, nil
}

// EditQuantity sets the quantity of an existing entry by delegating to
// AddCard or RemoveCard. Fails with ErrCardNotOnDeck when absent.
func (s *Service) EditQuantity(ctx context.Context, deckID int64, cardName string, newQty int) (*models.DeckEntry, error) {
	existing, err := s.entries.GetByCardName(ctx, deckID, cardName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrCardNotOnDeck, cardName)
	}

	switch {
	case newQty == existing.Quantity:
		return s.entries.Entry(ctx, deckID, existing.CardID)
	case newQty < existing.Quantity:
		entry, _, err := s.RemoveCard(ctx, deckID, cardName, existing.Quantity-newQty)
		return entry, err
	default:
		return s.AddCard(ctx, deckID, cardName, newQty-existing.Quantity)
	}
}

// SetCommander makes the named card the deck's only commander. Applied
// atomically: any existing entry for the card is discarded, every other
// commander flag is cleared, and a fresh single-copy commander entry is
// inserted. Running it twice yields the same state as once.
func (s *Service) SetCommander(ctx context.Context, deckID int64, cardName string) (*models.DeckEntry, error) {
	card, err := s.resolveCard(ctx, cardName)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		entries := s.entries.WithTx(tx)
		if err := entries.Delete(ctx, deckID, card.ID); err != nil {
			return err
		}
		if _, err := entries.ClearCommander(ctx, deckID); err != nil {
			return err
		}
		if err := entries.Insert(ctx, &models.DeckCard{
			DeckID:      deckID,
			CardID:      card.ID,
			Quantity:    1,
			IsCommander: true,
		}); err != nil {
			return err
		}
		return s.decks.WithTx(tx).Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.entries.Entry(ctx, deckID, card.ID)
}

// ResetCommander clears the commander flag without deleting any card.
// Fails with ErrNoCommander when none was set.
func (s *Service) ResetCommander(ctx context.Context, deckID int64) error {
	var cleared int64
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var txErr error
		cleared, txErr = s.entries.WithTx(tx).ClearCommander(ctx, deckID)
		if txErr != nil {
			return txErr
		}
		return s.decks.WithTx(tx).Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return err
	}
	if cleared == 0 {
		return ErrNoCommander
	}
	return nil
}

// ImportDeck creates a deck from a parsed card list. Cards are resolved
// in batch before anything is written; unresolvable names are returned
// without creating the deck only when none resolve at all, otherwise
// they are reported back and the rest is imported atomically.
func (s *Service) ImportDeck(ctx context.Context, name string, list []CardQuantity) (*models.Deck, []string, error) {
	name = SanitizeName(name)
	existing, err := s.decks.GetByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeckExists, name)
	}

	names := make([]string, 0, len(list))
	for _, cq := range list {
		names = append(names, cq.Name)
	}

	resolved, missing, err := s.cards.GetMany(ctx, names)
	if err != nil {
		return nil, nil, err
	}
	if len(resolved) == 0 {
		return nil, missing, fmt.Errorf("%w: no card in the list could be resolved", ErrCardNotFound)
	}

	byName := make(map[string]*models.Card, len(resolved))
	for _, card := range resolved {
		byName[strings.ToLower(card.Name)] = card
	}

	// Deck lists often repeat a card across sections. Merge duplicates
	// by resolved card id so each card becomes one row with the summed
	// quantity.
	quantities := make(map[string]int, len(list))
	order := make([]*models.Card, 0, len(list))
	for _, cq := range list {
		card, ok := byName[strings.ToLower(cq.Name)]
		if !ok {
			continue
		}
		if _, seen := quantities[card.ID]; !seen {
			order = append(order, card)
		}
		quantities[card.ID] += cq.Quantity
	}

	var deck *models.Deck
	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var txErr error
		deck, txErr = s.decks.WithTx(tx).Create(ctx, name, s.now())
		if txErr != nil {
			return txErr
		}
		entries := s.entries.WithTx(tx)
		for _, card := range order {
			if err := entries.Insert(ctx, &models.DeckCard{
				DeckID:   deck.ID,
				CardID:   card.ID,
				Quantity: quantities[card.ID],
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return deck, missing, nil
}

// resolveCard resolves via the card cache, translating a provider miss
// into the domain's ErrCardNotFound.
func (s *Service) resolveCard(ctx context.Context, name string) (*models.Card, error) {
	card, err := s.cards.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, cards.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, name)
		}
		return nil, err
	}
	return card, nil
}
