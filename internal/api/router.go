package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/edhtools/deckforge/internal/api/handlers"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		deckHandler := handlers.NewDeckHandler(s.decks)
		cardHandler := handlers.NewCardHandler(s.decks, s.cards)

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.ListDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Put("/{deckID}", deckHandler.RenameDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Post("/{deckID}/copy", deckHandler.CopyDeck)
			r.Get("/{deckID}/stats", deckHandler.GetDeckStats)
			r.Get("/{deckID}/export/{format}", deckHandler.ExportDeck)

			r.Post("/{deckID}/cards", cardHandler.AddCard)
			r.Put("/{deckID}/cards", cardHandler.EditQuantity)
			r.Delete("/{deckID}/cards", cardHandler.RemoveCard)
			r.Put("/{deckID}/commander", cardHandler.SetCommander)
			r.Delete("/{deckID}/commander", cardHandler.ResetCommander)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/autocomplete", cardHandler.Autocomplete)
			r.Get("/name/{name}", cardHandler.GetCardByName)
		})
	})
}
