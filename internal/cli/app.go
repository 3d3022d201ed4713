// Package cli wires the deckforge commands: the interactive shell, the
// editor API server, and the non-interactive import/export/backup and
// migration entry points.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edhtools/deckforge/internal/cards"
	"github.com/edhtools/deckforge/internal/config"
	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/meta"
	"github.com/edhtools/deckforge/internal/scryfall"
	"github.com/edhtools/deckforge/internal/storage"
	"github.com/edhtools/deckforge/internal/storage/repository"
)

// app holds the opened database and the services built over it. Every
// subcommand that touches the store goes through openApp/Close.
type app struct {
	cfg    *config.Config
	db     *storage.DB
	decks  *deck.Service
	cards  *cards.Service
	meta   *meta.Service // nil when no meta API is configured
	logger *slog.Logger
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(storage.DefaultConfig(dbPath))
	if err != nil {
		return nil, err
	}

	staleTTL, err := cfg.GetStaleTTL()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	provider := scryfall.NewClient(cfg.Scryfall.BaseURL)
	cardSvc := cards.NewService(repository.NewCardRepository(db.Conn()), provider, cards.Options{
		StaleThreshold: staleTTL,
	})
	decks := deck.NewService(db, cardSvc)

	var metaSvc *meta.Service
	if cfg.Meta.BaseURL != "" {
		metaSvc = meta.NewService(meta.NewClient(cfg.Meta.BaseURL, cfg.Meta.APIKey, cfg.Meta.ClientID))
	}

	return &app{
		cfg:    cfg,
		db:     db,
		decks:  decks,
		cards:  cardSvc,
		meta:   metaSvc,
		logger: logger,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// configuredDBPath resolves the database path without opening it, for
// commands that must run against a closed database.
func configuredDBPath() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath()
}
