package state

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tui/components/habits"
	"github.com/julianstephens/habitquest/internal/tui/components/progress"
)

// HabitFormModel represents the form model for creating and editing habits
type HabitFormModel struct {
	Template string
	Name     string
	Icon     string
	Color    string
	Tasks    string
}

// Model represents the shared state for the TUI
type Model struct {
	Ctx           *cli.Context
	State         constants.SessionState
	Help          help.Model
	HabitsModel   habits.Model
	ProgressModel progress.Model
	Summary       engine.Summary
	Form          *huh.Form
	HabitForm     *HabitFormModel
	TargetHabitID string
	// PendingTasks holds an edit that changes tasks until the user confirms the reset
	PendingTasks []models.TaskDefinition
	Status       string
	FormError    string
	Quitting     bool
	Width        int
	Height       int
}

// New creates a new state Model
func New(ctx *cli.Context) Model {
	m := Model{
		Ctx:           ctx,
		State:         constants.StateHabits,
		Help:          help.New(),
		HabitsModel:   habits.New(nil, 0, 0),
		ProgressModel: progress.New(0),
	}
	m.Refresh()
	return m
}

// Refresh reloads progress from storage into the components
func (m *Model) Refresh() {
	e, err := m.Ctx.LoadEngine()
	if err != nil {
		m.FormError = err.Error()
		return
	}
	m.Sync(e)
}

// Sync copies engine state into the components
func (m *Model) Sync(e *engine.Engine) {
	hs := e.Habits()
	entries := make([]habits.Entry, 0, len(hs))
	for _, h := range hs {
		entries = append(entries, habits.Entry{
			Habit:   h,
			Streak:  e.Streak(h.ID),
			Mastery: e.Mastery(h.ID),
		})
	}
	m.HabitsModel.SetEntries(entries)
	m.Summary = e.Summary()
	m.ProgressModel.SetSummary(m.Summary)
}

// Apply runs a mutation against freshly loaded progress, saves it and
// refreshes the view. Events become the status line.
func (m *Model) Apply(fn func(e *engine.Engine) ([]models.RewardEvent, error)) error {
	var last *engine.Engine
	events, err := m.Ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		last = e
		return fn(e)
	})
	if err != nil {
		m.FormError = err.Error()
		return err
	}
	m.FormError = ""
	if len(events) > 0 {
		msgs := make([]string, len(events))
		for i, ev := range events {
			msgs[i] = ev.Message()
		}
		m.Status = strings.Join(msgs, " · ")
	}
	m.Sync(last)
	return nil
}
