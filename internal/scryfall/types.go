package scryfall

import (
	"strconv"
	"strings"
	"time"

	"github.com/edhtools/deckforge/internal/storage/models"
)

// Card is the subset of the Scryfall card object this tool uses.
type Card struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	TypeLine      string            `json:"type_line"`
	ManaCost      string            `json:"mana_cost"`
	CMC           float64           `json:"cmc"`
	Colors        []string          `json:"colors"`
	ColorIdentity []string          `json:"color_identity"`
	ImageURIs     ImageURIs         `json:"image_uris"`
	Legalities    map[string]string `json:"legalities"`
	Prices        Prices            `json:"prices"`
}

// ImageURIs holds the card image links.
type ImageURIs struct {
	Normal  string `json:"normal"`
	ArtCrop string `json:"art_crop"`
}

// Prices holds the card price strings as Scryfall reports them.
type Prices struct {
	USD string `json:"usd"`
}

// Catalog is the response of the autocomplete endpoint.
type Catalog struct {
	Data []string `json:"data"`
}

// CollectionIdentifier identifies one card in a collection request.
type CollectionIdentifier struct {
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// CollectionRequest is the request body for /cards/collection.
type CollectionRequest struct {
	Identifiers []CollectionIdentifier `json:"identifiers"`
}

// CollectionResponse is the response from /cards/collection. NotFound
// lists the identifiers Scryfall could not resolve; the caller reconciles.
type CollectionResponse struct {
	Object   string                 `json:"object"`
	NotFound []CollectionIdentifier `json:"not_found"`
	Data     []*Card                `json:"data"`
}

// apiError is the Scryfall error object.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// ToModel converts a Scryfall card into the local cache row.
func (c *Card) ToModel() *models.Card {
	price := 0.0
	if c.Prices.USD != "" {
		if v, err := strconv.ParseFloat(c.Prices.USD, 64); err == nil {
			price = v
		}
	}

	return &models.Card{
		ID:             c.ID,
		Name:           c.Name,
		Colors:         strings.Join(c.Colors, ""),
		ColorIdentity:  strings.Join(c.ColorIdentity, ""),
		CMC:            c.CMC,
		ManaCost:       c.ManaCost,
		ImageURL:       c.ImageURIs.Normal,
		ArtURL:         c.ImageURIs.ArtCrop,
		LegalCommander: c.Legalities["commander"] == "legal",
		CanBeCommander: c.canBeCommander(),
		PriceUSD:       price,
		CachedAt:       time.Now(),
	}
}

// canBeCommander reports whether the card can lead a Commander deck:
// a legendary creature, or a card whose text grants it (planeswalkers
// with the ability carry "can be your commander" in their type-relevant
// oracle text, which Scryfall exposes through the legality map instead).
func (c *Card) canBeCommander() bool {
	return strings.Contains(c.TypeLine, "Legendary") &&
		strings.Contains(c.TypeLine, "Creature")
}
