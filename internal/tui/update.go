package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/tui/handlers"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		m.HabitsModel.SetSize(msg.Width-h, msg.Height-v-6)
		m.ProgressModel.SetWidth(msg.Width - h)
		m.Help.Width = msg.Width - h
		return m, nil

	case ReloadMsg:
		// a form in progress keeps its own copy; the list refreshes when it closes
		if m.State == constants.StateHabits {
			m.Refresh()
		}
		return m, m.watcher.Wait()

	case tea.KeyMsg:
		if handled, cmd := handlers.HandleGlobalKeys(&m.Model, msg); handled {
			return m, cmd
		}
	}

	switch m.State {
	case constants.StateAddHabit:
		return m, handlers.HandleAddHabitState(&m.Model, msg)
	case constants.StateEditHabit:
		return m, handlers.HandleEditHabitState(&m.Model, msg)
	case constants.StateConfirmDelete, constants.StateConfirmTaskEdit, constants.StateConfirmCloseDay:
		return m, handlers.HandleConfirmState(&m.Model, msg)
	}

	if handled, cmd := handlers.HandleHabitMessages(&m.Model, msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	m.HabitsModel, cmd = m.HabitsModel.Update(msg)
	return m, cmd
}
