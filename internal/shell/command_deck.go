package shell

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/edhtools/deckforge/internal/cards"
	"github.com/edhtools/deckforge/internal/deck"
)

// SelectCmd enters deck mode for a named deck.
type SelectCmd struct {
	Name string
}

func (c *SelectCmd) Execute(ctx context.Context, s *Session) error {
	if s.InDeckMode() {
		s.printf("select is not supported while a deck is selected (exit first)")
		return nil
	}

	d, err := s.decks.DeckByName(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := s.selectDeck(ctx, d); err != nil {
		return err
	}

	total := 0
	for _, e := range s.entries {
		total += e.Quantity
	}
	s.printf("selected deck %q (%d cards)", d.Name, total)
	return nil
}

// CreateCmd creates a deck, optionally with a commander.
type CreateCmd struct {
	Name      string
	Commander string
}

func (c *CreateCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireRoot("create") {
		return nil
	}

	if c.Commander == "" {
		d, err := s.decks.CreateDeck(ctx, c.Name)
		if err != nil {
			return err
		}
		s.printf("created deck %q", d.Name)
		return nil
	}

	d, err := s.decks.CreateDeckWithCommander(ctx, c.Name, c.Commander)
	if err != nil {
		return err
	}
	commander, err := s.decks.Commander(ctx, d.ID)
	if err != nil {
		return err
	}
	s.printf("created deck %q with commander %s", d.Name, commander.CardName)
	return nil
}

// RenameCmd renames a deck.
type RenameCmd struct {
	Old string
	New string
}

func (c *RenameCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireRoot("rename") {
		return nil
	}

	d, err := s.decks.RenameDeck(ctx, c.Old, c.New)
	if err != nil {
		return err
	}
	s.printf("renamed deck %q to %q", c.Old, d.Name)
	return nil
}

// DeleteCmd deletes a deck and its entries.
type DeleteCmd struct {
	Name string
}

func (c *DeleteCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireRoot("delete") {
		return nil
	}

	if err := s.decks.DeleteDeck(ctx, c.Name); err != nil {
		return err
	}
	s.printf("deleted deck %q", c.Name)
	return nil
}

// CopyCmd copies a deck's entries into a new deck.
type CopyCmd struct {
	Source string
	Dest   string
}

func (c *CopyCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireRoot("copy") {
		return nil
	}

	d, err := s.decks.CopyDeck(ctx, c.Source, c.Dest)
	if err != nil {
		return err
	}
	s.printf("copied deck %q to %q", c.Source, d.Name)
	return nil
}

// ListCmd lists decks in root mode and the selected deck's cards in
// deck mode.
type ListCmd struct {
	Limit int
}

func (c *ListCmd) Execute(ctx context.Context, s *Session) error {
	if s.InDeckMode() {
		return c.listCards(ctx, s)
	}
	return c.listDecks(ctx, s)
}

func (c *ListCmd) listDecks(ctx context.Context, s *Session) error {
	summaries, err := s.decks.ListDecks(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		s.printf("no decks yet (try: create <name>)")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DECK\tCOMMANDER\tCARDS\tUPDATED")
	for _, sum := range summaries {
		commander := sum.Commander
		if commander == "" {
			commander = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			sum.Deck.Name, commander, sum.Cards, sum.Deck.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (c *ListCmd) listCards(ctx context.Context, s *Session) error {
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}
	if len(s.entries) == 0 {
		s.printf("deck %q is empty", s.deck.Name)
		return nil
	}

	entries := s.entries
	if c.Limit > 0 && c.Limit < len(entries) {
		entries = entries[:c.Limit]
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "QTY\tCARD\tCOST\tPRICE")
	total := 0
	for _, e := range entries {
		name := e.CardName
		if e.IsCommander {
			name += " *CMDR*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t$%.2f\n", e.Quantity, name, e.ManaCost, e.PriceUSD)
		total += e.Quantity
	}
	if err := w.Flush(); err != nil {
		return err
	}
	s.printf("%d cards (%d distinct)", total, len(s.entries))
	return nil
}

// ExitCmd leaves deck mode, or ends the session from root mode.
type ExitCmd struct{}

func (c *ExitCmd) Execute(_ context.Context, s *Session) error {
	if s.InDeckMode() {
		s.deselect()
		return nil
	}
	s.done = true
	return nil
}

// renderError turns a domain error into the message the interpreter
// prints. Unrecognized errors are reported verbatim.
func renderError(err error) string {
	switch {
	case errors.Is(err, deck.ErrDeckNotFound):
		return "deck not found"
	case errors.Is(err, deck.ErrDeckExists):
		return "a deck with that name already exists"
	case errors.Is(err, deck.ErrCardNotFound):
		return "card not found"
	case errors.Is(err, deck.ErrCardNotOnDeck):
		return "that card is not on the deck"
	case errors.Is(err, deck.ErrCardIsCommander):
		return "that card is the commander (use set-commander or reset-commander)"
	case errors.Is(err, deck.ErrInvalidQuantity):
		return "quantity must be a positive integer"
	case errors.Is(err, deck.ErrNoCommander):
		return "no commander is set"
	case errors.Is(err, cards.ErrShortPartial):
		return fmt.Sprintf("partial name is too short (minimum %d characters)", cards.MinPartialLength)
	default:
		return fmt.Sprintf("error: %v", err)
	}
}
