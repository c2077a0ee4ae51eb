package engine

import (
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

// TaskToggleResult describes the state of a task after a toggle
type TaskToggleResult struct {
	NowCompleted bool
	Task         models.Task
}

// TaskLedger owns the habits and the completion state of their tasks for the current day.
type TaskLedger struct {
	habits map[string]*models.Habit
	order  []string
}

// NewTaskLedger creates an empty ledger
func NewTaskLedger() *TaskLedger {
	return &TaskLedger{habits: make(map[string]*models.Habit)}
}

// Add stores a habit, replacing any habit with the same id
func (l *TaskLedger) Add(h models.Habit) {
	c := h.Clone()
	if _, exists := l.habits[h.ID]; !exists {
		l.order = append(l.order, h.ID)
	}
	l.habits[h.ID] = &c
}

// Remove discards a habit and its task state
func (l *TaskLedger) Remove(habitID string) {
	if _, ok := l.habits[habitID]; !ok {
		return
	}
	delete(l.habits, habitID)
	for i, id := range l.order {
		if id == habitID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Has reports whether the habit exists
func (l *TaskLedger) Has(habitID string) bool {
	_, ok := l.habits[habitID]
	return ok
}

// Habit returns a copy of the habit
func (l *TaskLedger) Habit(habitID string) (models.Habit, bool) {
	h, ok := l.habits[habitID]
	if !ok {
		return models.Habit{}, false
	}
	return h.Clone(), true
}

// Habits returns copies of all habits in creation order
func (l *TaskLedger) Habits() []models.Habit {
	out := make([]models.Habit, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.habits[id].Clone())
	}
	return out
}

// ActiveHabitIDs returns the ids of habits with at least one task
func (l *TaskLedger) ActiveHabitIDs() []string {
	var ids []string
	for _, id := range l.order {
		if l.habits[id].IsActive() {
			ids = append(ids, id)
		}
	}
	return ids
}

// ActiveCount is the number of habits occupying a slot
func (l *TaskLedger) ActiveCount() int {
	return len(l.ActiveHabitIDs())
}

// ReplaceTasks swaps the task list of a habit
func (l *TaskLedger) ReplaceTasks(habitID string, tasks []models.Task) error {
	h, ok := l.habits[habitID]
	if !ok {
		return apperrors.NotFound("habit %q", habitID)
	}
	h.Tasks = append([]models.Task(nil), tasks...)
	return nil
}

// SetDetails updates the presentation fields of a habit
func (l *TaskLedger) SetDetails(habitID, name string, icon models.Icon, color models.Color) error {
	h, ok := l.habits[habitID]
	if !ok {
		return apperrors.NotFound("habit %q", habitID)
	}
	h.Name = name
	h.Icon = icon
	h.Color = color
	return nil
}

// Toggle flips the completion state of a task. It never awards anything.
func (l *TaskLedger) Toggle(habitID, taskID string) (TaskToggleResult, error) {
	h, ok := l.habits[habitID]
	if !ok {
		return TaskToggleResult{}, apperrors.NotFound("habit %q", habitID)
	}
	idx := h.TaskIndex(taskID)
	if idx < 0 {
		return TaskToggleResult{}, apperrors.NotFound("task %q in habit %q", taskID, h.Name)
	}
	h.Tasks[idx].Completed = !h.Tasks[idx].Completed
	return TaskToggleResult{
		NowCompleted: h.Tasks[idx].Completed,
		Task:         h.Tasks[idx],
	}, nil
}

// IsHabitComplete is true iff the habit has at least one task and all are completed
func (l *TaskLedger) IsHabitComplete(habitID string) bool {
	h, ok := l.habits[habitID]
	if !ok || !h.IsActive() {
		return false
	}
	return h.CompletedCount() == len(h.Tasks)
}

// AllActiveComplete is true iff there is at least one active habit and every
// active habit is complete
func (l *TaskLedger) AllActiveComplete() bool {
	active := l.ActiveHabitIDs()
	if len(active) == 0 {
		return false
	}
	for _, id := range active {
		if !l.IsHabitComplete(id) {
			return false
		}
	}
	return true
}

// ResetDay clears the completion state of every task of the habit
func (l *TaskLedger) ResetDay(habitID string) {
	h, ok := l.habits[habitID]
	if !ok {
		return
	}
	for i := range h.Tasks {
		h.Tasks[i].Completed = false
	}
}

// ResetAll clears every habit for a new day
func (l *TaskLedger) ResetAll() {
	for _, id := range l.order {
		l.ResetDay(id)
	}
}
