package handlers

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tui/components/habits"
	"github.com/julianstephens/habitquest/internal/tui/state"
)

// updateForm forwards msg to the active form. Esc returns to the habit list.
func updateForm(m *state.Model, msg tea.Msg) (tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.State = constants.StateHabits
		return nil, false
	}
	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}
	return cmd, true
}

// HandleAddHabitState handles the add habit state
func HandleAddHabitState(m *state.Model, msg tea.Msg) tea.Cmd {
	cmd, open := updateForm(m, msg)
	if !open {
		return nil
	}

	switch m.Form.State {
	case huh.StateCompleted:
		def, err := definitionFromForm(m.HabitForm)
		if err != nil {
			m.FormError = err.Error()
			m.State = constants.StateHabits
			return cmd
		}
		today, err := m.Ctx.Today()
		if err != nil {
			m.FormError = err.Error()
			m.State = constants.StateHabits
			return cmd
		}
		_ = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			// open today first so the new habit starts on it
			events, err := e.ResetDay(cli.ActiveDay(e, today))
			if err != nil {
				return nil, err
			}
			h, err := e.CreateHabit(def)
			if err != nil {
				return nil, err
			}
			m.Status = "Added " + h.Name
			return events, nil
		})
		m.State = constants.StateHabits
	case huh.StateAborted:
		m.State = constants.StateHabits
	}
	return cmd
}

// HandleEditHabitState handles the edit habit state. A task change that
// would reset progress moves to the confirmation state instead.
func HandleEditHabitState(m *state.Model, msg tea.Msg) tea.Cmd {
	cmd, open := updateForm(m, msg)
	if !open {
		return nil
	}

	switch m.Form.State {
	case huh.StateCompleted:
		fm := m.HabitForm
		tasks, err := ParseTaskLines(fm.Tasks)
		if err != nil {
			m.FormError = err.Error()
			m.State = constants.StateHabits
			return cmd
		}
		var current models.Habit
		err = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			h, err := e.UpdateHabitDetails(m.TargetHabitID, strings.TrimSpace(fm.Name), models.Icon(fm.Icon), models.Color(fm.Color))
			current = h
			return nil, err
		})
		m.State = constants.StateHabits
		if err != nil {
			return cmd
		}
		m.Status = "Updated " + current.Name
		if sameTasks(current.Tasks, tasks) {
			return cmd
		}
		err = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			_, err := e.EditHabitTasks(current.ID, tasks, false)
			return nil, err
		})
		if errors.Is(err, apperrors.ErrConfirmationRequired) {
			m.FormError = ""
			m.PendingTasks = tasks
			m.State = constants.StateConfirmTaskEdit
		}
	case huh.StateAborted:
		m.State = constants.StateHabits
	}
	return cmd
}

// HandleHabitMessages handles messages from the habits component
func HandleHabitMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		e, err := m.Ctx.LoadEngine()
		if err != nil {
			m.FormError = err.Error()
			return true, nil
		}
		if !e.CanAddHabit() {
			slots := e.Slots()
			m.FormError = "All habit slots are in use"
			if slots.Available < slots.Max {
				m.FormError += "; keep a 7-day streak to unlock more"
			}
			return true, nil
		}
		m.HabitForm = &state.HabitFormModel{}
		m.Form = NewHabitForm(m.HabitForm)
		m.State = constants.StateAddHabit
		return true, m.Form.Init()

	case habits.EditHabitMsg:
		e, err := m.Ctx.LoadEngine()
		if err != nil {
			m.FormError = err.Error()
			return true, nil
		}
		h, err := e.Habit(msg.ID)
		if err != nil {
			m.FormError = err.Error()
			return true, nil
		}
		m.TargetHabitID = h.ID
		m.HabitForm = &state.HabitFormModel{
			Name:  h.Name,
			Icon:  string(h.Icon),
			Color: string(h.Color),
			Tasks: FormatTaskLines(h.Tasks),
		}
		m.Form = NewEditForm(m.HabitForm)
		m.State = constants.StateEditHabit
		return true, m.Form.Init()

	case habits.ToggleTaskMsg:
		today, err := m.Ctx.Today()
		if err != nil {
			m.FormError = err.Error()
			return true, nil
		}
		_ = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			return e.CompleteTask(msg.HabitID, msg.TaskID, cli.ActiveDay(e, today))
		})
		return true, nil

	case habits.PrestigeMsg:
		_ = m.Apply(func(e *engine.Engine) ([]models.RewardEvent, error) {
			return e.PushToPrestige(msg.ID)
		})
		return true, nil

	case habits.DeleteHabitMsg:
		m.TargetHabitID = msg.ID
		m.State = constants.StateConfirmDelete
		return true, nil

	case habits.CloseDayMsg:
		m.State = constants.StateConfirmCloseDay
		return true, nil
	}
	return false, nil
}
