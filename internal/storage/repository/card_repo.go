package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edhtools/deckforge/internal/storage/models"
)

// CardRepository handles the local card reference cache.
type CardRepository interface {
	// Upsert inserts a card or refreshes it if the id already exists.
	Upsert(ctx context.Context, card *models.Card) error

	// GetByID retrieves a card by its id. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.Card, error)

	// GetByName retrieves a card by its exact name. Returns (nil, nil) when absent.
	GetByName(ctx context.Context, name string) (*models.Card, error)

	// GetManyByName retrieves the cards whose names appear in names.
	// Missing names are simply absent from the result.
	GetManyByName(ctx context.Context, names []string) ([]*models.Card, error)

	// Names returns every cached card name, ordered alphabetically.
	Names(ctx context.Context) ([]string, error)

	// WithTx returns a CardRepository bound to the given transaction.
	WithTx(tx *sql.Tx) CardRepository
}

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) WithTx(tx *sql.Tx) CardRepository {
	return &cardRepository{db: tx}
}

const cardColumns = `id, name, colors, color_identity, cmc, mana_cost,
	image_url, art_url, legal_commander, can_be_commander, price_usd, cached_at`

func (r *cardRepository) Upsert(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			colors = excluded.colors,
			color_identity = excluded.color_identity,
			cmc = excluded.cmc,
			mana_cost = excluded.mana_cost,
			image_url = excluded.image_url,
			art_url = excluded.art_url,
			legal_commander = excluded.legal_commander,
			can_be_commander = excluded.can_be_commander,
			price_usd = excluded.price_usd,
			cached_at = excluded.cached_at
	`

	_, err := r.db.ExecContext(ctx, query,
		card.ID, card.Name, card.Colors, card.ColorIdentity, card.CMC,
		card.ManaCost, card.ImageURL, card.ArtURL, card.LegalCommander,
		card.CanBeCommander, card.PriceUSD, card.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}

func (r *cardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	return r.get(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
}

func (r *cardRepository) GetByName(ctx context.Context, name string) (*models.Card, error) {
	return r.get(ctx, `SELECT `+cardColumns+` FROM cards WHERE name = ?`, name)
}

func (r *cardRepository) get(ctx context.Context, query string, arg any) (*models.Card, error) {
	card := &models.Card{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&card.ID, &card.Name, &card.Colors, &card.ColorIdentity, &card.CMC,
		&card.ManaCost, &card.ImageURL, &card.ArtURL, &card.LegalCommander,
		&card.CanBeCommander, &card.PriceUSD, &card.CachedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (r *cardRepository) GetManyByName(ctx context.Context, names []string) ([]*models.Card, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := make([]any, 0, len(names))
	for i, name := range names {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, name)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE name IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by name: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.Card
	for rows.Next() {
		card := &models.Card{}
		if err := rows.Scan(
			&card.ID, &card.Name, &card.Colors, &card.ColorIdentity, &card.CMC,
			&card.ManaCost, &card.ImageURL, &card.ArtURL, &card.LegalCommander,
			&card.CanBeCommander, &card.PriceUSD, &card.CachedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

func (r *cardRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan card name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card names: %w", err)
	}

	return names, nil
}
