// Package models defines the row types persisted by the storage layer.
package models

import "time"

// Deck is a named collection of cards.
type Deck struct {
	ID        int64
	Name      string
	UpdatedAt time.Time
}

// Card is immutable reference data resolved from the card provider.
// Rows are inserted or refreshed by the card cache and never edited
// by deck operations.
type Card struct {
	ID             string // Scryfall id
	Name           string
	Colors         string // e.g. "UR"
	ColorIdentity  string
	CMC            float64
	ManaCost       string
	ImageURL       string
	ArtURL         string
	LegalCommander bool // legal in the Commander format
	CanBeCommander bool // eligible to be a deck's commander
	PriceUSD       float64
	CachedAt       time.Time
}

// DeckCard associates a card with a deck. Quantity is always positive;
// at most one row per deck has IsCommander set.
type DeckCard struct {
	DeckID      int64
	CardID      string
	Quantity    int
	IsCommander bool
}

// DeckEntry is a DeckCard joined with the card fields the shell and the
// exporters display. The commander sorts first, then entries by card name.
type DeckEntry struct {
	DeckID      int64
	CardID      string
	CardName    string
	Quantity    int
	IsCommander bool
	CMC         float64
	Colors      string
	ManaCost    string
	PriceUSD    float64
}
