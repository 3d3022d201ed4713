package shell

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/edhtools/deckforge/internal/cards"
	"github.com/edhtools/deckforge/internal/config"
	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/meta"
	"github.com/edhtools/deckforge/internal/storage"
	"github.com/edhtools/deckforge/internal/storage/models"
)

// Session is the interpreter context: the current mode, the selected
// deck with its cached entries, and the services commands execute
// against. A nil selected deck means root mode.
type Session struct {
	out io.Writer

	db      *storage.DB
	decks   *deck.Service
	cards   *cards.Service
	meta    *meta.Service // nil when no meta API is configured
	backups *storage.BackupManager
	cfg     *config.Config

	deck    *models.Deck
	entries []*models.DeckEntry
	stale   atomic.Bool

	commands int
	done     bool
}

// NewSession creates a session in root mode.
func NewSession(out io.Writer, db *storage.DB, decks *deck.Service, cardSvc *cards.Service, metaSvc *meta.Service, cfg *config.Config) *Session {
	return &Session{
		out:     out,
		db:      db,
		decks:   decks,
		cards:   cardSvc,
		meta:    metaSvc,
		backups: storage.NewBackupManager(db.Path()),
		cfg:     cfg,
	}
}

// InDeckMode reports whether a deck is selected.
func (s *Session) InDeckMode() bool {
	return s.deck != nil
}

// SelectedDeck returns the selected deck, or nil in root mode.
func (s *Session) SelectedDeck() *models.Deck {
	return s.deck
}

// CommandCount returns the number of commands executed so far.
func (s *Session) CommandCount() int {
	return s.commands
}

// Done reports whether an exit from root mode was requested.
func (s *Session) Done() bool {
	return s.done
}

// Prompt returns the prompt for the current mode.
func (s *Session) Prompt() string {
	if s.deck != nil {
		return fmt.Sprintf("[%d] %s > ", s.commands, s.deck.Name)
	}
	return fmt.Sprintf("[%d] > ", s.commands)
}

// MarkStale flags the cached entries as out of date. Called by the
// database watcher when an external writer touches the store.
func (s *Session) MarkStale() {
	s.stale.Store(true)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

// requireRoot reports a mode violation unless the session is in root
// mode.
func (s *Session) requireRoot(what string) bool {
	if s.deck != nil {
		s.printf("%s is not supported while a deck is selected (exit first)", what)
		return false
	}
	return true
}

// requireDeck reports a mode violation unless a deck is selected.
func (s *Session) requireDeck(what string) bool {
	if s.deck == nil {
		s.printf("%s requires a selected deck (no deck selected)", what)
		return false
	}
	return true
}

// selectDeck enters deck mode with a fresh entry list.
func (s *Session) selectDeck(ctx context.Context, d *models.Deck) error {
	entries, err := s.decks.Entries(ctx, d.ID)
	if err != nil {
		return err
	}
	s.deck = d
	s.entries = entries
	s.stale.Store(false)
	return nil
}

// deselect returns the session to root mode.
func (s *Session) deselect() {
	s.deck = nil
	s.entries = nil
}

// ensureFresh re-reads the cached entries when the watcher has flagged
// them stale. Called before every deck-mode command.
func (s *Session) ensureFresh(ctx context.Context) error {
	if s.deck == nil || !s.stale.Swap(false) {
		return nil
	}
	entries, err := s.decks.Entries(ctx, s.deck.ID)
	if err != nil {
		return fmt.Errorf("failed to refresh deck entries: %w", err)
	}
	s.entries = entries
	return nil
}

// cachedByName returns the cached entry whose card name matches,
// ignoring case, or nil.
func (s *Session) cachedByName(name string) *models.DeckEntry {
	for _, e := range s.entries {
		if strings.EqualFold(e.CardName, name) {
			return e
		}
	}
	return nil
}

// applyUpsert folds a post-mutation entry returned by the engine into
// the cache, replacing an existing row for the same card or inserting
// a new one.
func (s *Session) applyUpsert(entry *models.DeckEntry) {
	for i, e := range s.entries {
		if e.CardID == entry.CardID {
			s.entries[i] = entry
			s.sortEntries()
			return
		}
	}
	s.entries = append(s.entries, entry)
	s.sortEntries()
}

// applyDelete drops the cached row for cardID.
func (s *Session) applyDelete(cardID string) {
	for i, e := range s.entries {
		if e.CardID == cardID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// applyCommander folds a SetCommander result into the cache: every
// other row loses its commander flag, the named card becomes the sole
// commander with the returned state.
func (s *Session) applyCommander(entry *models.DeckEntry) {
	for _, e := range s.entries {
		e.IsCommander = false
	}
	s.applyUpsert(entry)
}

// applyResetCommander clears every cached commander flag.
func (s *Session) applyResetCommander() {
	for _, e := range s.entries {
		e.IsCommander = false
	}
}

// sortEntries keeps the cache in listing order: commander first, then
// by card name. Mirrors the ordering of the entries query.
func (s *Session) sortEntries() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].IsCommander != s.entries[j].IsCommander {
			return s.entries[i].IsCommander
		}
		return s.entries[i].CardName < s.entries[j].CardName
	})
}
