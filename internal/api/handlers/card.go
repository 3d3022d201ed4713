package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edhtools/deckforge/internal/api/response"
	"github.com/edhtools/deckforge/internal/cards"
	"github.com/edhtools/deckforge/internal/deck"
)

// CardHandler handles card lookups and per-deck card mutations.
type CardHandler struct {
	decks *deck.Service
	cards *cards.Service
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(decks *deck.Service, cardSvc *cards.Service) *CardHandler {
	return &CardHandler{decks: decks, cards: cardSvc}
}

// GetCardByName resolves a card by exact or fuzzy name.
func (h *CardHandler) GetCardByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("card name is required"))
		return
	}

	card, err := h.cards.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, cards.ErrNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.Success(w, card)
}

// Autocomplete lists card names matching the q query parameter.
func (h *CardHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	partial := r.URL.Query().Get("q")

	names, err := h.cards.Autocomplete(r.Context(), partial)
	if err != nil {
		if errors.Is(err, cards.ErrShortPartial) {
			response.BadRequest(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.Success(w, names)
}

// CardRequest names a card and an optional quantity.
type CardRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"`
}

// AddCard adds copies of a card to a deck.
func (h *CardHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	req, err := decodeCardRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	entry, err := h.decks.AddCard(r.Context(), id, req.Name, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, entry)
}

// RemoveCard removes copies of a card from a deck.
func (h *CardHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	req, err := decodeCardRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	entry, removed, err := h.decks.RemoveCard(r.Context(), id, req.Name, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entry == nil {
		response.Success(w, map[string]any{"removed": removed})
		return
	}
	response.Success(w, entry)
}

// EditQuantity sets a card's quantity to an absolute value.
func (h *CardHandler) EditQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	req, err := decodeCardRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	entry, err := h.decks.EditQuantity(r.Context(), id, req.Name, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entry == nil {
		response.NoContent(w)
		return
	}
	response.Success(w, entry)
}

// SetCommander designates a deck's single commander.
func (h *CardHandler) SetCommander(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	req, err := decodeCardRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	entry, err := h.decks.SetCommander(r.Context(), id, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, entry)
}

// ResetCommander clears a deck's commander flag.
func (h *CardHandler) ResetCommander(w http.ResponseWriter, r *http.Request) {
	id, err := deckID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.decks.ResetCommander(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	response.NoContent(w)
}

func decodeCardRequest(r *http.Request) (*CardRequest, error) {
	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}
	if req.Name == "" {
		return nil, errors.New("card name is required")
	}
	return &req, nil
}
