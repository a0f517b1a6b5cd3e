package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// StoreChangedMsg is sent when the database file changes on disk, for
// example after an "agenda add" from another terminal.
type StoreChangedMsg struct{}

// WatchErrMsg reports a watcher error. Watching continues.
type WatchErrMsg struct {
	Err error
}

// NewStoreWatcher watches the directory holding dbPath. SQLite replaces and
// creates sidecar files next to the database, so the directory is watched
// rather than the file itself.
func NewStoreWatcher(dbPath string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(dbPath)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(dbPath), err)
	}
	return w, nil
}

// WatchStore waits for the next change to dbPath or one of its journal
// files. It returns nil once the watcher is closed.
func WatchStore(w *fsnotify.Watcher, dbPath string) tea.Cmd {
	base := filepath.Base(dbPath)
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				// Matches agenda.db, agenda.db-journal and agenda.db-wal.
				if !strings.HasPrefix(filepath.Base(ev.Name), base) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					return StoreChangedMsg{}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					return WatchErrMsg{Err: err}
				}
			}
		}
	}
}
