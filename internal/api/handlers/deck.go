// Package handlers implements the editor API request handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edhtools/deckforge/internal/api/response"
	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/deckfile"
	"github.com/edhtools/deckforge/internal/storage/models"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	decks *deck.Service
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks *deck.Service) *DeckHandler {
	return &DeckHandler{decks: decks}
}

// writeDomainError maps the deck error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deck.ErrDeckNotFound),
		errors.Is(err, deck.ErrCardNotFound),
		errors.Is(err, deck.ErrCardNotOnDeck),
		errors.Is(err, deck.ErrNoCommander):
		response.NotFound(w, err)
	case errors.Is(err, deck.ErrDeckExists),
		errors.Is(err, deck.ErrCardIsCommander),
		errors.Is(err, deck.ErrInvalidQuantity):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}

func deckID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "deckID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("deck id must be an integer")
	}
	return id, nil
}

// DeckResponse is a deck with its entries.
type DeckResponse struct {
	Deck    *models.Deck        `json:"deck"`
	Entries []*models.DeckEntry `json:"entries"`
}

// ListDecks returns all decks with commander and card count.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, errors.New("limit must be an integer"))
			return
		}
		limit = n
	}

	summaries, err := h.decks.ListDecks(r.Context(), limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, summaries)
}

// CreateDeckRequest represents a request to create a deck.
type CreateDeckRequest struct {
	Name      string `json:"name"`
	Commander string `json:"commander,omitempty"`
}

// CreateDeck creates a new deck, optionally with a commander.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	name := deck.SanitizeName(req.Name)
	if name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	var d *models.Deck
	var err error
	if req.Commander != "" {
		d, err = h.decks.CreateDeckWithCommander(r.Context(), name, req.Commander)
	} else {
		d, err = h.decks.CreateDeck(r.Context(), name)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Created(w, d)
}

// GetDeck returns a single deck with its entries.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	d, err := h.decks.DeckByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entries, err := h.decks.Entries(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, DeckResponse{Deck: d, Entries: entries})
}

// RenameDeckRequest represents a rename request.
type RenameDeckRequest struct {
	Name string `json:"name"`
}

// RenameDeck renames a deck.
func (h *DeckHandler) RenameDeck(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req RenameDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	name := deck.SanitizeName(req.Name)
	if name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	d, err := h.decks.DeckByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	renamed, err := h.decks.RenameDeck(r.Context(), d.Name, name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, renamed)
}

// DeleteDeck deletes a deck and its entries.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	d, err := h.decks.DeckByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.decks.DeleteDeck(r.Context(), d.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	response.NoContent(w)
}

// CopyDeckRequest represents a copy request.
type CopyDeckRequest struct {
	Dest string `json:"dest"`
}

// CopyDeck copies a deck's entries into a new deck.
func (h *DeckHandler) CopyDeck(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req CopyDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	dest := deck.SanitizeName(req.Dest)
	if dest == "" {
		response.BadRequest(w, errors.New("destination name is required"))
		return
	}

	d, err := h.decks.DeckByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	copied, err := h.decks.CopyDeck(r.Context(), d.Name, dest)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Created(w, copied)
}

// GetDeckStats returns computed statistics for a deck.
func (h *DeckHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if _, err := h.decks.DeckByID(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	entries, err := h.decks.Entries(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, deck.ComputeStats(entries))
}

// ExportDeck streams a deck in the requested format.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var format deckfile.Format
	switch chi.URLParam(r, "format") {
	case "txt":
		format = deckfile.FormatTxt
	case "csv":
		format = deckfile.FormatCSV
	case "json":
		format = deckfile.FormatJSON
	default:
		response.BadRequest(w, errors.New("format must be txt, csv or json"))
		return
	}

	d, err := h.decks.DeckByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entries, err := h.decks.Entries(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	switch format {
	case deckfile.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case deckfile.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "text/plain")
	}
	if err := deckfile.Export(w, format, d.Name, entries); err != nil {
		response.InternalError(w, err)
	}
}
