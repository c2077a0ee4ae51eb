package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/models"
)

type AddHabitMsg struct{}

type ToggleTaskMsg struct {
	HabitID string
	TaskID  string
}

type EditHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type PrestigeMsg struct {
	ID string
}

type CloseDayMsg struct{}

// Entry is one habit with the progress shown next to it
type Entry struct {
	Habit   models.Habit
	Streak  int
	Mastery models.MasteryState
}

// Item is a single task row; the habit's details repeat in the description
type Item struct {
	Entry Entry
	Task  models.Task
}

func (i Item) Title() string {
	box := "○"
	if i.Task.Completed {
		box = "✓"
	}
	return fmt.Sprintf("%s %s  +%d XP", box, i.Task.Text, i.Task.XPValue)
}

func (i Item) Description() string {
	h := i.Entry.Habit
	desc := fmt.Sprintf("%s · %d/%d · streak %d · %s", h.Name, h.CompletedCount(), len(h.Tasks), i.Entry.Streak, i.Entry.Mastery.Tier.Label())
	if i.Entry.Mastery.InProgress() {
		desc += fmt.Sprintf(" (%d days)", i.Entry.Mastery.DayCount)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Habit.Name + " " + i.Task.Text }

type KeyMap struct {
	Add      key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Prestige key.Binding
	CloseDay key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit habit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete habit"),
		),
		Prestige: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "push to prestige"),
		),
		CloseDay: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "close day"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []Entry, width, height int) Model {
	l := list.New(items(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	bindings := func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Edit, keys.Delete, keys.Prestige, keys.CloseDay}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	return Model{list: l, keys: keys}
}

func items(entries []Entry) []list.Item {
	var out []list.Item
	for _, e := range entries {
		for _, t := range e.Habit.Tasks {
			out = append(out, Item{Entry: e, Task: t})
		}
	}
	return out
}

// SetEntries replaces the rows and keeps the cursor where it was
func (m *Model) SetEntries(entries []Entry) {
	idx := m.list.Index()
	m.list.SetItems(items(entries))
	if n := len(m.list.Items()); idx >= n && n > 0 {
		idx = n - 1
	}
	m.list.Select(idx)
}

// Filtering reports whether the user is typing a filter
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Selected returns the task row under the cursor
func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.CloseDay):
			return m, func() tea.Msg { return CloseDayMsg{} }
		}

		if i, ok := m.Selected(); ok {
			id := i.Entry.Habit.ID
			switch {
			case key.Matches(msg, m.keys.Toggle):
				return m, func() tea.Msg { return ToggleTaskMsg{HabitID: id, TaskID: i.Task.ID} }
			case key.Matches(msg, m.keys.Edit):
				return m, func() tea.Msg { return EditHabitMsg{ID: id} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{ID: id} }
			case key.Matches(msg, m.keys.Prestige):
				if i.Entry.Mastery.Tier == models.TierGold {
					return m, func() tea.Msg { return PrestigeMsg{ID: id} }
				}
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
