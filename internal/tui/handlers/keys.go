package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/tui/state"
)

// HandleGlobalKeys handles global key presses
func HandleGlobalKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Quitting = true
		return true, tea.Quit
	case "q":
		if m.State == constants.StateHabits && !m.HabitsModel.Filtering() {
			m.Quitting = true
			return true, tea.Quit
		}
	case "?":
		if m.State == constants.StateHabits && !m.HabitsModel.Filtering() {
			m.Help.ShowAll = !m.Help.ShowAll
			return true, nil
		}
	}
	return false, nil
}
