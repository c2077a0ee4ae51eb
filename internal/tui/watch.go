package tui

import (
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/habitquest/internal/logger"
)

// reloadDebounce groups the burst of writes one save produces
const reloadDebounce = 200 * time.Millisecond

// ReloadMsg tells the model the database changed outside the TUI
type ReloadMsg struct{}

// Watcher reports writes to a SQLite database file and its WAL companions
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher watches the directory holding dbPath. Watching the directory
// survives the file being replaced by a backup restore.
func NewWatcher(dbPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		fs:      fw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop(filepath.Base(dbPath))
	return w, nil
}

func (w *Watcher) loop(name string) {
	var timer *time.Timer
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), name) || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case w.changes <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("Database watcher error", "error", err)
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Wait returns a command that resolves on the next change
func (w *Watcher) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.changes:
			return ReloadMsg{}
		case <-w.done:
			return nil
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
