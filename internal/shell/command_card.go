package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/edhtools/deckforge/internal/charts"
	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/deckfile"
)

// AddCmd adds copies of a card to the selected deck.
type AddCmd struct {
	Card string
	Qty  int
}

func (c *AddCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("add") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	entry, err := s.decks.AddCard(ctx, s.deck.ID, c.Card, c.Qty)
	if err != nil {
		return err
	}
	s.applyUpsert(entry)
	s.printf("%s: %d copies", entry.CardName, entry.Quantity)
	return nil
}

// RemoveCmd removes copies of a card from the selected deck.
type RemoveCmd struct {
	Card string
	Qty  int
}

func (c *RemoveCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("remove") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	entry, removed, err := s.decks.RemoveCard(ctx, s.deck.ID, c.Card, c.Qty)
	if err != nil {
		return err
	}
	if entry == nil {
		// the last copies were removed and the row is gone
		if cached := s.cachedByName(c.Card); cached != nil {
			s.applyDelete(cached.CardID)
		}
		s.printf("removed %s from the deck (%d copies)", c.Card, removed)
		return nil
	}
	s.applyUpsert(entry)
	s.printf("%s: %d copies", entry.CardName, entry.Quantity)
	return nil
}

// QtyCmd sets a card's quantity to an absolute value.
type QtyCmd struct {
	Card string
	Qty  int
}

func (c *QtyCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("qty") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	entry, err := s.decks.EditQuantity(ctx, s.deck.ID, c.Card, c.Qty)
	if err != nil {
		return err
	}
	if entry == nil {
		// quantity reached zero, the row is gone
		if cached := s.cachedByName(c.Card); cached != nil {
			s.applyDelete(cached.CardID)
		}
		s.printf("removed %s from the deck", c.Card)
		return nil
	}
	s.applyUpsert(entry)
	s.printf("%s: %d copies", entry.CardName, entry.Quantity)
	return nil
}

// SetCommanderCmd designates the deck's single commander.
type SetCommanderCmd struct {
	Card string
}

func (c *SetCommanderCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("set-commander") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	entry, err := s.decks.SetCommander(ctx, s.deck.ID, c.Card)
	if err != nil {
		return err
	}
	s.applyCommander(entry)
	s.printf("%s is now the commander", entry.CardName)
	return nil
}

// ResetCommanderCmd clears the deck's commander flag.
type ResetCommanderCmd struct{}

func (c *ResetCommanderCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("reset-commander") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	if err := s.decks.ResetCommander(ctx, s.deck.ID); err != nil {
		return err
	}
	s.applyResetCommander()
	s.printf("commander cleared")
	return nil
}

// CommanderCmd shows the current commander.
type CommanderCmd struct{}

func (c *CommanderCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("commander") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	for _, e := range s.entries {
		if e.IsCommander {
			s.printf("commander: %s (%s)", e.CardName, e.ManaCost)
			return nil
		}
	}
	s.printf("no commander is set")
	return nil
}

// StatsCmd prints deck statistics; with Charts it also renders mana
// curve and color charts to HTML and opens them.
type StatsCmd struct {
	Charts bool
}

func (c *StatsCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("stats") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	stats := deck.ComputeStats(s.entries)
	s.printf("deck %q: %d cards, %d distinct, $%.2f total",
		s.deck.Name, stats.Cards, stats.Distinct, stats.TotalPrice)

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COST\tCARDS")
	buckets := make([]int, 0, len(stats.ManaCurve))
	for b := range stats.ManaCurve {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)
	for _, b := range buckets {
		label := fmt.Sprintf("%d", b)
		if b >= 7 {
			label = "7+"
		}
		fmt.Fprintf(w, "%s\t%d\n", label, stats.ManaCurve[b])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !c.Charts {
		return nil
	}
	return c.renderCharts(s, stats)
}

func (c *StatsCmd) renderCharts(s *Session, stats *deck.Stats) error {
	dir := os.TempDir()
	cfg := charts.DefaultConfig()

	cfg.Title = fmt.Sprintf("%s mana curve", s.deck.Name)
	curvePath := filepath.Join(dir, "deckforge-curve.html")
	if err := charts.RenderManaCurve(stats, cfg, curvePath); err != nil {
		return err
	}

	cfg.Title = fmt.Sprintf("%s colors", s.deck.Name)
	colorPath := filepath.Join(dir, "deckforge-colors.html")
	if err := charts.RenderColorPie(stats, cfg, colorPath); err != nil {
		return err
	}

	for _, p := range []string{curvePath, colorPath} {
		if err := charts.OpenInBrowser(p); err != nil {
			s.printf("charts written to %s (could not open browser: %v)", dir, err)
			return nil
		}
	}
	s.printf("charts opened in browser")
	return nil
}

// ExportCmd writes the selected deck to a file.
type ExportCmd struct {
	Format deckfile.Format
	Path   string
}

func (c *ExportCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireDeck("export") {
		return nil
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	if err := deckfile.ExportFile(c.Path, c.Format, s.deck.Name, s.entries); err != nil {
		return err
	}
	s.printf("exported %q to %s", s.deck.Name, c.Path)
	return nil
}
