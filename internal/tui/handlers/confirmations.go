package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tui/state"
)

// HandleConfirmState answers the y/N prompt of the current confirmation state
func HandleConfirmState(m *state.Model, msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		confirm(m)
	case "n", "N", "esc":
	default:
		return nil
	}
	m.TargetHabitID = ""
	m.PendingTasks = nil
	m.State = constants.StateHabits
	return nil
}

func confirm(m *state.Model) {
	switch m.State {
	case constants.StateConfirmDelete:
		_ = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			h, err := e.Habit(m.TargetHabitID)
			if err != nil {
				return nil, err
			}
			events, err := e.DeleteHabit(h.ID)
			if err != nil {
				return nil, err
			}
			if len(events) == 0 {
				m.Status = "Deleted " + h.Name
			}
			return events, nil
		})

	case constants.StateConfirmTaskEdit:
		_ = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			h, err := e.EditHabitTasks(m.TargetHabitID, m.PendingTasks, true)
			if err != nil {
				return nil, err
			}
			m.Status = "Updated tasks of " + h.Name + "; progress reset"
			return nil, nil
		})

	case constants.StateConfirmCloseDay:
		_ = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			day, started := e.Day()
			if !started {
				return nil, nil
			}
			events, err := e.ResetDay(day + 1)
			if err == nil && len(events) == 0 {
				m.Status = "Day closed"
			}
			return events, err
		})
	}
}
