package cli

import (
	"strconv"
	"strings"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

// minIDPrefix is the shortest id prefix accepted in place of a full id
const minIDPrefix = 4

// FindHabit resolves a habit by id, unique id prefix, or name ignoring case
func FindHabit(e *engine.Engine, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if h, err := e.Habit(ref); err == nil {
		return h, nil
	}

	var matches []models.Habit
	for _, h := range e.Habits() {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
		if len(ref) >= minIDPrefix && strings.HasPrefix(h.ID, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Habit{}, apperrors.NotFound("habit %q", ref)
	default:
		return models.Habit{}, apperrors.Validation("%q matches %d habits, use more of the id", ref, len(matches))
	}
}

// FindTask resolves a task of h by 1-based position, id, or id prefix
func FindTask(h models.Habit, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(h.Tasks) {
			return models.Task{}, apperrors.NotFound("task %d in habit %q (it has %d tasks)", n, h.Name, len(h.Tasks))
		}
		return h.Tasks[n-1], nil
	}
	for _, t := range h.Tasks {
		if t.ID == ref || (len(ref) >= minIDPrefix && strings.HasPrefix(t.ID, ref)) {
			return t, nil
		}
	}
	return models.Task{}, apperrors.NotFound("task %q in habit %q", ref, h.Name)
}

// ParseTaskSpec reads a task written as 'text|xp'. Without an XP value the
// task is worth the minimum.
func ParseTaskSpec(spec string) (models.TaskDefinition, error) {
	text, xpStr, found := strings.Cut(spec, "|")
	def := models.TaskDefinition{Text: strings.TrimSpace(text), XPValue: constants.MinTaskXP}
	if found {
		xp, err := strconv.Atoi(strings.TrimSpace(xpStr))
		if err != nil {
			return models.TaskDefinition{}, apperrors.Validation("task %q: XP must be a number", spec)
		}
		def.XPValue = xp
	}
	return def, nil
}

// ParseTaskSpecs parses every spec and validates the resulting list
func ParseTaskSpecs(specs []string, minTasks int) ([]models.TaskDefinition, error) {
	tasks := make([]models.TaskDefinition, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		def, err := ParseTaskSpec(s)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, def)
	}
	if err := models.ValidateTasks(tasks, minTasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
