package handlers

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/cli/clitest"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/templates"
	"github.com/julianstephens/habitquest/internal/tui/components/habits"
	"github.com/julianstephens/habitquest/internal/tui/state"
)

func newModel(t *testing.T, names ...string) (*state.Model, []models.Habit) {
	t.Helper()
	env := clitest.New(t)
	var created []models.Habit
	_, err := env.Ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		if _, err := e.ResetDay(clitest.Day0); err != nil {
			return nil, err
		}
		for _, name := range names {
			def, err := templates.Get(name)
			if err != nil {
				return nil, err
			}
			h, err := e.CreateHabit(def)
			if err != nil {
				return nil, err
			}
			created = append(created, h)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("failed to seed habits: %v", err)
	}
	m := state.New(env.Ctx)
	return &m, created
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParseTaskLines(t *testing.T) {
	tasks, err := ParseTaskLines("Pick up book | 10\n\nRead | 30\nReflect")
	if err != nil {
		t.Fatalf("ParseTaskLines() failed: %v", err)
	}
	want := []models.TaskDefinition{
		{Text: "Pick up book", XPValue: 10},
		{Text: "Read", XPValue: 30},
		{Text: "Reflect", XPValue: constants.MinTaskXP},
	}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d = %+v, want %+v", i, tasks[i], want[i])
		}
	}

	if _, err := ParseTaskLines(""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for no tasks, got %v", err)
	}
}

func TestFormatTaskLines(t *testing.T) {
	tasks := []models.Task{{Text: "Read", XPValue: 30}, {Text: "Write", XPValue: 20}}
	lines := FormatTaskLines(tasks)
	if lines != "Read | 30\nWrite | 20" {
		t.Errorf("FormatTaskLines() = %q", lines)
	}
	parsed, err := ParseTaskLines(lines)
	if err != nil {
		t.Fatalf("ParseTaskLines() failed: %v", err)
	}
	if !sameTasks(tasks, parsed) {
		t.Errorf("formatted tasks do not parse back: %+v", parsed)
	}
}

func TestDefinitionFromForm(t *testing.T) {
	def, err := definitionFromForm(&state.HabitFormModel{Template: "Reading"})
	if err != nil {
		t.Fatalf("definitionFromForm() failed: %v", err)
	}
	if def.Name != "Reading" || def.Source != models.SourceDefault {
		t.Errorf("unexpected template definition %+v", def)
	}

	def, err = definitionFromForm(&state.HabitFormModel{
		Name:  "  Walk ",
		Icon:  "target",
		Color: "green",
		Tasks: "Walk | 40",
	})
	if err != nil {
		t.Fatalf("definitionFromForm() failed: %v", err)
	}
	if def.Name != "Walk" || def.Source != models.SourceManual || len(def.Tasks) != 1 {
		t.Errorf("unexpected custom definition %+v", def)
	}
}

func TestHandleHabitMessages_Toggle(t *testing.T) {
	m, hs := newModel(t, "Meditation")
	h := hs[0]

	for _, task := range h.Tasks {
		handled, _ := HandleHabitMessages(m, habits.ToggleTaskMsg{HabitID: h.ID, TaskID: task.ID})
		if !handled {
			t.Fatal("toggle message not handled")
		}
	}
	if m.FormError != "" {
		t.Fatalf("unexpected error %q", m.FormError)
	}
	if !strings.Contains(m.Status, "All habits done today") {
		t.Errorf("expected daily bonus in status, got %q", m.Status)
	}
	if m.Summary.XPTotal == 0 {
		t.Error("summary not refreshed after toggle")
	}
}

func TestHandleHabitMessages_AddAtSlotLimit(t *testing.T) {
	m, _ := newModel(t, "Reading", "Hydration")

	handled, _ := HandleHabitMessages(m, habits.AddHabitMsg{})
	if !handled {
		t.Fatal("add message not handled")
	}
	if m.State != constants.StateHabits {
		t.Errorf("expected to stay on the list, got state %v", m.State)
	}
	if !strings.Contains(m.FormError, "slots") {
		t.Errorf("expected slot error, got %q", m.FormError)
	}
}

func TestHandleHabitMessages_AddOpensForm(t *testing.T) {
	m, _ := newModel(t, "Reading")

	HandleHabitMessages(m, habits.AddHabitMsg{})
	if m.State != constants.StateAddHabit || m.Form == nil {
		t.Errorf("expected add form, got state %v", m.State)
	}
	HandleAddHabitState(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State != constants.StateHabits {
		t.Errorf("esc did not close the form, state %v", m.State)
	}
}

func TestConfirmDelete(t *testing.T) {
	m, hs := newModel(t, "Reading")

	HandleHabitMessages(m, habits.DeleteHabitMsg{ID: hs[0].ID})
	if m.State != constants.StateConfirmDelete {
		t.Fatalf("expected delete confirmation, got state %v", m.State)
	}

	HandleConfirmState(m, key("n"))
	if m.State != constants.StateHabits || m.Summary.Slots.Used != 1 {
		t.Fatalf("declined delete changed state: %v, %d used", m.State, m.Summary.Slots.Used)
	}

	HandleHabitMessages(m, habits.DeleteHabitMsg{ID: hs[0].ID})
	HandleConfirmState(m, key("y"))
	if m.Summary.Slots.Used != 0 {
		t.Errorf("habit not deleted, %d slots used", m.Summary.Slots.Used)
	}
	if m.Status != "Deleted Reading" {
		t.Errorf("unexpected status %q", m.Status)
	}
}

func TestConfirmCloseDay(t *testing.T) {
	m, hs := newModel(t, "Meditation")
	for _, task := range hs[0].Tasks {
		HandleHabitMessages(m, habits.ToggleTaskMsg{HabitID: hs[0].ID, TaskID: task.ID})
	}

	HandleHabitMessages(m, habits.CloseDayMsg{})
	HandleConfirmState(m, key("y"))

	if m.Summary.Day != clitest.Day0+1 {
		t.Errorf("expected day %d, got %d", clitest.Day0+1, m.Summary.Day)
	}
	if m.Summary.GlobalStreak != 1 {
		t.Errorf("expected global streak 1, got %d", m.Summary.GlobalStreak)
	}
}

func TestConfirmTaskEdit(t *testing.T) {
	m, hs := newModel(t, "Meditation")
	h := hs[0]
	_, err := m.Ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		for _, task := range h.Tasks {
			if _, err := e.CompleteTask(h.ID, task.ID, clitest.Day0); err != nil {
				return nil, err
			}
		}
		return e.ResetDay(clitest.Day0 + 1)
	})
	if err != nil {
		t.Fatalf("failed to build a streak: %v", err)
	}

	m.TargetHabitID = h.ID
	m.PendingTasks = []models.TaskDefinition{{Text: "Breathe", XPValue: 20}}
	m.State = constants.StateConfirmTaskEdit
	HandleConfirmState(m, key("y"))

	e, err := m.Ctx.LoadEngine()
	if err != nil {
		t.Fatalf("LoadEngine() failed: %v", err)
	}
	got, _ := e.Habit(h.ID)
	if len(got.Tasks) != 1 || got.Tasks[0].Text != "Breathe" {
		t.Errorf("tasks not replaced: %+v", got.Tasks)
	}
	if e.Streak(h.ID) != 0 {
		t.Errorf("expected streak reset, got %d", e.Streak(h.ID))
	}
	if m.PendingTasks != nil || m.State != constants.StateHabits {
		t.Error("confirmation state not cleared")
	}
}

func TestHandleGlobalKeys(t *testing.T) {
	m, _ := newModel(t)

	handled, _ := HandleGlobalKeys(m, key("?"))
	if !handled || !m.Help.ShowAll {
		t.Error("? should toggle full help")
	}

	m.State = constants.StateAddHabit
	if handled, _ := HandleGlobalKeys(m, key("q")); handled {
		t.Error("q should be typed into forms, not quit")
	}

	if handled, cmd := HandleGlobalKeys(m, tea.KeyMsg{Type: tea.KeyCtrlC}); !handled || cmd == nil || !m.Quitting {
		t.Error("ctrl+c should quit from any state")
	}
}
