package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/tui/state"
)

type Model struct {
	state.Model
	keys    KeyMap
	watcher *Watcher
}

// NewModel builds the TUI over ctx. watcher may be nil when the store is not
// a local file.
func NewModel(ctx *cli.Context, watcher *Watcher) Model {
	return Model{
		Model:   state.New(ctx),
		keys:    DefaultKeyMap(),
		watcher: watcher,
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Wait()
}
