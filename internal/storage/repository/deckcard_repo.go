package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edhtools/deckforge/internal/storage/models"
)

// DeckCardRepository handles the deck/card association rows.
type DeckCardRepository interface {
	// Get retrieves a single entry. Returns (nil, nil) when absent.
	Get(ctx context.Context, deckID int64, cardID string) (*models.DeckCard, error)

	// GetByCardName retrieves the entry for the named card, if any.
	// Names are matched case-insensitively.
	GetByCardName(ctx context.Context, deckID int64, cardName string) (*models.DeckCard, error)

	// ListByDeck retrieves all entries of a deck joined with card data,
	// commander first, then by card name.
	ListByDeck(ctx context.Context, deckID int64) ([]*models.DeckEntry, error)

	// Entry retrieves one entry joined with card data. Returns (nil, nil) when absent.
	Entry(ctx context.Context, deckID int64, cardID string) (*models.DeckEntry, error)

	// Commander retrieves the commander entry of a deck, or (nil, nil).
	Commander(ctx context.Context, deckID int64) (*models.DeckEntry, error)

	// Insert adds a new entry.
	Insert(ctx context.Context, dc *models.DeckCard) error

	// UpdateQuantity sets the quantity of an existing entry.
	UpdateQuantity(ctx context.Context, deckID int64, cardID string, quantity int) error

	// Delete removes a single entry.
	Delete(ctx context.Context, deckID int64, cardID string) error

	// DeleteByDeck removes every entry of a deck.
	DeleteByDeck(ctx context.Context, deckID int64) error

	// ClearCommander clears the commander flag on every entry of a deck
	// and returns how many rows changed.
	ClearCommander(ctx context.Context, deckID int64) (int64, error)

	// CopyAll duplicates every entry of src into dest, preserving
	// quantity and commander flag.
	CopyAll(ctx context.Context, srcDeckID, destDeckID int64) error

	// CountByDeck returns the number of cards in a deck (sum of quantities).
	CountByDeck(ctx context.Context, deckID int64) (int, error)

	// WithTx returns a DeckCardRepository bound to the given transaction.
	WithTx(tx *sql.Tx) DeckCardRepository
}

type deckCardRepository struct {
	db DBTX
}

// NewDeckCardRepository creates a new deck card repository.
func NewDeckCardRepository(db DBTX) DeckCardRepository {
	return &deckCardRepository{db: db}
}

func (r *deckCardRepository) WithTx(tx *sql.Tx) DeckCardRepository {
	return &deckCardRepository{db: tx}
}

func (r *deckCardRepository) Get(ctx context.Context, deckID int64, cardID string) (*models.DeckCard, error) {
	dc := &models.DeckCard{}
	err := r.db.QueryRowContext(ctx,
		`SELECT deck_id, card_id, quantity, is_commander
		 FROM deck_cards WHERE deck_id = ? AND card_id = ?`,
		deckID, cardID,
	).Scan(&dc.DeckID, &dc.CardID, &dc.Quantity, &dc.IsCommander)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck card: %w", err)
	}
	return dc, nil
}

func (r *deckCardRepository) GetByCardName(ctx context.Context, deckID int64, cardName string) (*models.DeckCard, error) {
	dc := &models.DeckCard{}
	err := r.db.QueryRowContext(ctx,
		`SELECT dc.deck_id, dc.card_id, dc.quantity, dc.is_commander
		 FROM deck_cards dc
		 JOIN cards c ON c.id = dc.card_id
		 WHERE dc.deck_id = ? AND c.name = ? COLLATE NOCASE`,
		deckID, cardName,
	).Scan(&dc.DeckID, &dc.CardID, &dc.Quantity, &dc.IsCommander)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck card by name: %w", err)
	}
	return dc, nil
}

const entryColumns = `dc.deck_id, dc.card_id, c.name, dc.quantity, dc.is_commander,
	c.cmc, c.colors, c.mana_cost, c.price_usd`

func scanEntry(row interface{ Scan(...any) error }) (*models.DeckEntry, error) {
	e := &models.DeckEntry{}
	err := row.Scan(
		&e.DeckID, &e.CardID, &e.CardName, &e.Quantity, &e.IsCommander,
		&e.CMC, &e.Colors, &e.ManaCost, &e.PriceUSD,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *deckCardRepository) ListByDeck(ctx context.Context, deckID int64) ([]*models.DeckEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+`
		 FROM deck_cards dc
		 JOIN cards c ON c.id = dc.card_id
		 WHERE dc.deck_id = ?
		 ORDER BY dc.is_commander DESC, c.name ASC`,
		deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*models.DeckEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck entries: %w", err)
	}

	return entries, nil
}

func (r *deckCardRepository) Entry(ctx context.Context, deckID int64, cardID string) (*models.DeckEntry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+`
		 FROM deck_cards dc
		 JOIN cards c ON c.id = dc.card_id
		 WHERE dc.deck_id = ? AND dc.card_id = ?`,
		deckID, cardID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck entry: %w", err)
	}
	return entry, nil
}

func (r *deckCardRepository) Commander(ctx context.Context, deckID int64) (*models.DeckEntry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+`
		 FROM deck_cards dc
		 JOIN cards c ON c.id = dc.card_id
		 WHERE dc.deck_id = ? AND dc.is_commander = 1`,
		deckID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commander: %w", err)
	}
	return entry, nil
}

func (r *deckCardRepository) Insert(ctx context.Context, dc *models.DeckCard) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deck_cards (deck_id, card_id, quantity, is_commander)
		 VALUES (?, ?, ?, ?)`,
		dc.DeckID, dc.CardID, dc.Quantity, dc.IsCommander,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deck card: %w", err)
	}
	return nil
}

func (r *deckCardRepository) UpdateQuantity(ctx context.Context, deckID int64, cardID string, quantity int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE deck_cards SET quantity = ? WHERE deck_id = ? AND card_id = ?`,
		quantity, deckID, cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deck card quantity: %w", err)
	}
	return nil
}

func (r *deckCardRepository) Delete(ctx context.Context, deckID int64, cardID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM deck_cards WHERE deck_id = ? AND card_id = ?`,
		deckID, cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete deck card: %w", err)
	}
	return nil
}

func (r *deckCardRepository) DeleteByDeck(ctx context.Context, deckID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete deck cards: %w", err)
	}
	return nil
}

func (r *deckCardRepository) ClearCommander(ctx context.Context, deckID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deck_cards SET is_commander = 0 WHERE deck_id = ? AND is_commander = 1`,
		deckID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear commander: %w", err)
	}

	cleared, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared rows: %w", err)
	}
	return cleared, nil
}

func (r *deckCardRepository) CopyAll(ctx context.Context, srcDeckID, destDeckID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deck_cards (deck_id, card_id, quantity, is_commander)
		 SELECT ?, card_id, quantity, is_commander FROM deck_cards WHERE deck_id = ?`,
		destDeckID, srcDeckID,
	)
	if err != nil {
		return fmt.Errorf("failed to copy deck cards: %w", err)
	}
	return nil
}

func (r *deckCardRepository) CountByDeck(ctx context.Context, deckID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM deck_cards WHERE deck_id = ?`,
		deckID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count deck cards: %w", err)
	}
	return count, nil
}
