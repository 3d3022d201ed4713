package shell

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher flags the session's cached entries stale when another
// process writes the database file, so the next deck-mode command
// re-reads instead of trusting the cache.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	done   chan struct{}
}

// NewWatcher watches the database file at dbPath and calls onChange
// for every external write. The directory is watched rather than the
// file so journal rollovers and recreates are not missed.
func NewWatcher(dbPath string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:    fsw,
		logger: logger,
		done:   make(chan struct{}),
	}

	base := filepath.Base(dbPath)
	go w.loop(base, onChange)

	return w, nil
}

func (w *Watcher) loop(base string, onChange func()) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			// the WAL and journal sidecars signal writes too
			if name != base && !strings.HasPrefix(name, base+"-") {
				continue
			}
			w.logger.Debug("database changed externally", "file", name)
			onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
