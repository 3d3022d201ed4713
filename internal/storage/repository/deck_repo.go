package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edhtools/deckforge/internal/storage/models"
)

// DeckRepository handles database operations for decks.
// Lookup methods return (nil, nil) when no row matches; mapping absence
// to a domain error is the caller's concern.
type DeckRepository interface {
	// Create inserts a new deck and returns it with its assigned id.
	Create(ctx context.Context, name string, at time.Time) (*models.Deck, error)

	// GetByID retrieves a deck by its id.
	GetByID(ctx context.Context, id int64) (*models.Deck, error)

	// GetByName retrieves a deck by its exact name.
	GetByName(ctx context.Context, name string) (*models.Deck, error)

	// List retrieves decks ordered by last update, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*models.Deck, error)

	// Rename changes a deck's name and refreshes its timestamp.
	Rename(ctx context.Context, id int64, newName string, at time.Time) error

	// Touch refreshes a deck's last-modified timestamp.
	Touch(ctx context.Context, id int64, at time.Time) error

	// Delete removes a deck row. Entries must be removed separately.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a DeckRepository bound to the given transaction.
	WithTx(tx *sql.Tx) DeckRepository
}

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) WithTx(tx *sql.Tx) DeckRepository {
	return &deckRepository{db: tx}
}

func (r *deckRepository) Create(ctx context.Context, name string, at time.Time) (*models.Deck, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO decks (name, updated_at) VALUES (?, ?)`,
		name, at,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get deck id: %w", err)
	}

	return &models.Deck{ID: id, Name: name, UpdatedAt: at}, nil
}

func (r *deckRepository) GetByID(ctx context.Context, id int64) (*models.Deck, error) {
	return r.get(ctx, `SELECT id, name, updated_at FROM decks WHERE id = ?`, id)
}

func (r *deckRepository) GetByName(ctx context.Context, name string) (*models.Deck, error) {
	return r.get(ctx, `SELECT id, name, updated_at FROM decks WHERE name = ?`, name)
}

func (r *deckRepository) get(ctx context.Context, query string, arg any) (*models.Deck, error) {
	deck := &models.Deck{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&deck.ID, &deck.Name, &deck.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deck, nil
}

func (r *deckRepository) List(ctx context.Context, limit int) ([]*models.Deck, error) {
	query := `SELECT id, name, updated_at FROM decks ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		deck := &models.Deck{}
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return decks, nil
}

func (r *deckRepository) Rename(ctx context.Context, id int64, newName string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE decks SET name = ?, updated_at = ? WHERE id = ?`,
		newName, at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to rename deck: %w", err)
	}
	return nil
}

func (r *deckRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE decks SET updated_at = ? WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch deck: %w", err)
	}
	return nil
}

func (r *deckRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}
