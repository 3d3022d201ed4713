package shell

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/deckfile"
	"github.com/edhtools/deckforge/internal/meta"
	"github.com/edhtools/deckforge/internal/storage"
)

// FindCmd resolves a card by exact or fuzzy name and prints it.
type FindCmd struct {
	Card string
}

func (c *FindCmd) Execute(ctx context.Context, s *Session) error {
	card, err := s.cards.GetByName(ctx, c.Card)
	if err != nil {
		return err
	}

	s.printf("%s", card.Name)
	s.printf("  cost: %s (cmc %.0f)", card.ManaCost, card.CMC)
	if card.ColorIdentity != "" {
		s.printf("  identity: %s", card.ColorIdentity)
	}
	if card.PriceUSD > 0 {
		s.printf("  price: $%.2f", card.PriceUSD)
	}
	if card.CanBeCommander {
		s.printf("  can be a commander")
	}
	if !card.LegalCommander {
		s.printf("  not legal in commander")
	}
	return nil
}

// SearchCmd lists card names matching a partial name.
type SearchCmd struct {
	Partial string
}

func (c *SearchCmd) Execute(ctx context.Context, s *Session) error {
	names, err := s.cards.Autocomplete(ctx, c.Partial)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		s.printf("no cards match %q", c.Partial)
		return nil
	}
	for _, name := range names {
		s.printf("  %s", name)
	}
	return nil
}

// ImportCmd creates a deck from a text deck list.
type ImportCmd struct {
	Path string
	Deck string
}

func (c *ImportCmd) Execute(ctx context.Context, s *Session) error {
	if !s.requireRoot("import_txt") {
		return nil
	}

	result, err := deckfile.ParseFile(c.Path)
	if err != nil {
		return err
	}
	for _, lineErr := range result.Errors {
		s.printf("skipped: %s", lineErr)
	}
	if len(result.Entries) == 0 {
		s.printf("no card lines in %s", c.Path)
		return nil
	}

	list := make([]deck.CardQuantity, len(result.Entries))
	for i, e := range result.Entries {
		list[i] = deck.CardQuantity{Name: e.Name, Quantity: e.Quantity}
	}

	d, missing, err := s.decks.ImportDeck(ctx, c.Deck, list)
	if err != nil {
		return err
	}
	for _, name := range missing {
		s.printf("not found: %s", name)
	}
	s.printf("imported %d cards into deck %q", len(list)-len(missing), d.Name)
	return nil
}

// MetaCmd shows the meta snapshot for a format.
type MetaCmd struct {
	Format string
}

func (c *MetaCmd) Execute(ctx context.Context, s *Session) error {
	if s.meta == nil {
		s.printf("meta API is not configured (set meta.base_url in the config)")
		return nil
	}

	fm, err := s.meta.Format(ctx, c.Format)
	if err != nil {
		return err
	}

	s.printf("%s meta (%d decks tracked, updated %s)",
		fm.Format, fm.TotalDecks, fm.LastUpdated.Format("2006-01-02"))
	return printRanks(s, fm.Commanders)
}

// TopCommandersCmd shows the top-commanders listing.
type TopCommandersCmd struct{}

func (c *TopCommandersCmd) Execute(ctx context.Context, s *Session) error {
	if s.meta == nil {
		s.printf("meta API is not configured (set meta.base_url in the config)")
		return nil
	}

	ranks, err := s.meta.TopCommanders(ctx)
	if err != nil {
		return err
	}
	return printRanks(s, ranks)
}

func printRanks(s *Session, ranks []*meta.CommanderRank) error {
	if len(ranks) == 0 {
		s.printf("no meta data available")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCOMMANDER\tCOLORS\tDECKS\tSHARE")
	for _, r := range ranks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.1f%%\n", r.Rank, r.Name, r.Colors, r.Decks, r.Share*100)
	}
	return w.Flush()
}

// BackupCmd snapshots the database.
type BackupCmd struct {
	Dir string
}

func (c *BackupCmd) Execute(_ context.Context, s *Session) error {
	dir := c.Dir
	if dir == "" {
		var err error
		dir, err = s.cfg.BackupDir()
		if err != nil {
			return err
		}
	}

	path, err := s.backups.Backup(storage.BackupOptions{Dir: dir})
	if err != nil {
		return err
	}
	s.printf("backup written to %s", path)
	return nil
}

// ClearCmd clears the terminal.
type ClearCmd struct{}

func (c *ClearCmd) Execute(_ context.Context, s *Session) error {
	fmt.Fprint(s.out, "\033[2J\033[H")
	return nil
}

// HelpCmd prints the command summary.
type HelpCmd struct{}

func (c *HelpCmd) Execute(_ context.Context, s *Session) error {
	s.printf(`deck management (root mode):
  select <deck>               enter deck mode (alias: cd)
  create <deck> [commander]   create a deck (alias: mk)
  rename <old> <new>          rename a deck (alias: mv)
  delete <deck>               delete a deck (alias: del)
  copy <source> <dest>        copy a deck (alias: cp)
  import_txt <path> <deck>    import a deck list
  list [limit]                list decks (alias: ls)

card management (deck mode):
  add <card> [qty]            add copies (default 1)
  remove <card> [qty]         remove copies (alias: rmc)
  qty <card> <n>              set the exact quantity
  set-commander <card>        designate the commander
  reset-commander             clear the commander
  commander                   show the commander
  list [limit]                list the deck's cards
  stats [charts]              deck statistics
  export_txt|csv|json <path>  export the deck

anywhere:
  find <card>                 look up a card
  search <partial>            autocomplete card names
  meta [format]               format meta snapshot
  top-commanders              top commanders (alias: top)
  backup [dir]                back up the database
  clear                       clear the screen (alias: cls)
  help                        this text
  exit                        leave deck mode / quit (alias: quit)`)
	return nil
}

// UnknownCmd reports an unrecognized keyword without aborting the
// session.
type UnknownCmd struct {
	Keyword string
}

func (c *UnknownCmd) Execute(_ context.Context, s *Session) error {
	s.printf("unrecognized command %q (try help)", c.Keyword)
	return nil
}
