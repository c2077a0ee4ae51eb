package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/templates"
	"github.com/julianstephens/habitquest/internal/tui/state"
)

// customTemplate is the template choice for a habit written from scratch
const customTemplate = ""

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *state.HabitFormModel) *huh.Form {
	tags := tagSelects(fm)
	options := []huh.Option[string]{huh.NewOption("Custom", customTemplate)}
	for _, name := range templates.Names() {
		options = append(options, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Start from").
				Options(options...).
				Value(&fm.Template),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(validateName),
			tags[0],
			tags[1],
			tasksInput(fm),
		).WithHideFunc(func() bool { return fm.Template != customTemplate }),
	).WithTheme(huh.ThemeDracula())
}

// NewEditForm creates a form for changing an existing habit
func NewEditForm(fm *state.HabitFormModel) *huh.Form {
	tags := tagSelects(fm)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(validateName),
			tags[0],
			tags[1],
			tasksInput(fm).
				Description("One task per line as 'text | xp'. Changing tasks resets streak and mastery."),
		),
	).WithTheme(huh.ThemeDracula())
}

func tagSelects(fm *state.HabitFormModel) [2]huh.Field {
	var icons []huh.Option[string]
	for _, i := range models.Icons() {
		icons = append(icons, huh.NewOption(string(i), string(i)))
	}
	var colors []huh.Option[string]
	for _, c := range models.Colors() {
		colors = append(colors, huh.NewOption(string(c), string(c)))
	}
	return [2]huh.Field{
		huh.NewSelect[string]().Title("Icon").Options(icons...).Value(&fm.Icon),
		huh.NewSelect[string]().Title("Color").Options(colors...).Value(&fm.Color),
	}
}

func tasksInput(fm *state.HabitFormModel) *huh.Text {
	return huh.NewText().
		Title("Tasks").
		Description("One task per line as 'text | xp'").
		Value(&fm.Tasks).
		Validate(func(s string) error {
			_, err := ParseTaskLines(s)
			return err
		})
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	return nil
}

// ParseTaskLines reads one 'text | xp' task per line
func ParseTaskLines(s string) ([]models.TaskDefinition, error) {
	return cli.ParseTaskSpecs(strings.Split(s, "\n"), constants.MinHabitTasks)
}

// FormatTaskLines is the inverse of ParseTaskLines
func FormatTaskLines(tasks []models.Task) string {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("%s | %d", t.Text, t.XPValue)
	}
	return strings.Join(lines, "\n")
}

// sameTasks reports whether an edit leaves the task list unchanged
func sameTasks(current []models.Task, defs []models.TaskDefinition) bool {
	if len(current) != len(defs) {
		return false
	}
	for i, t := range current {
		if t.Text != defs[i].Text || t.XPValue != defs[i].XPValue {
			return false
		}
	}
	return true
}

// definitionFromForm builds the creation input from the add form
func definitionFromForm(fm *state.HabitFormModel) (models.HabitDefinition, error) {
	if fm.Template != customTemplate {
		def, err := templates.Get(fm.Template)
		if err != nil {
			return models.HabitDefinition{}, err
		}
		def.Source = models.SourceDefault
		return def, nil
	}
	tasks, err := ParseTaskLines(fm.Tasks)
	if err != nil {
		return models.HabitDefinition{}, err
	}
	return models.HabitDefinition{
		Name:   strings.TrimSpace(fm.Name),
		Icon:   models.Icon(fm.Icon),
		Color:  models.Color(fm.Color),
		Source: models.SourceManual,
		Tasks:  tasks,
	}, nil
}
