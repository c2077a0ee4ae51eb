package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/julianstephens/habitquest/internal/tui/components/habits"
)

type KeyMap struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Help   key.Binding
	Habits habits.KeyMap
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Habits.Toggle, k.Habits.Add, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Filter, k.Quit, k.Help},
		{k.Habits.Toggle, k.Habits.Add, k.Habits.Edit, k.Habits.Delete, k.Habits.Prestige, k.Habits.CloseDay},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Habits: habits.DefaultKeyMap(),
	}
}
