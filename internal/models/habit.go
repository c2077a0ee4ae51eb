package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
)

// HabitSource records how a habit came to exist
type HabitSource string

const (
	SourceManual    HabitSource = "manual"
	SourceDefault   HabitSource = "default"
	SourceSuggested HabitSource = "suggested"
)

// Icon and Color are presentation tags; the engine only checks membership.
type Icon string

type Color string

var validIcons = map[Icon]bool{
	"book": true, "dumbbell": true, "droplet": true, "moon": true,
	"heart": true, "brain": true, "leaf": true, "pen": true,
	"music": true, "sun": true, "coffee": true, "target": true,
}

var validColors = map[Color]bool{
	"blue": true, "green": true, "purple": true, "orange": true,
	"pink": true, "red": true, "yellow": true, "teal": true,
}

// Icons lists the known icon tags in sorted order
func Icons() []Icon {
	out := make([]Icon, 0, len(validIcons))
	for i := range validIcons {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Colors lists the known color tags in sorted order
func Colors() []Color {
	out := make([]Color, 0, len(validColors))
	for c := range validColors {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Valid reports whether the icon belongs to the known tag set
func (i Icon) Valid() bool { return validIcons[i] }

// Valid reports whether the color belongs to the known tag set
func (c Color) Valid() bool { return validColors[c] }

// Valid reports whether the source is one of the known sources
func (s HabitSource) Valid() bool {
	switch s {
	case SourceManual, SourceDefault, SourceSuggested:
		return true
	}
	return false
}

// Habit represents a daily practice made of one to five tasks
type Habit struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Icon      Icon        `json:"icon"`
	Color     Color       `json:"color"`
	Source    HabitSource `json:"source"`
	Tasks     []Task      `json:"tasks"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsActive reports whether the habit counts toward slots and the daily bonus
func (h Habit) IsActive() bool {
	return len(h.Tasks) > 0
}

// TaskIndex returns the position of a task in the habit, or -1
func (h Habit) TaskIndex(taskID string) int {
	for i, t := range h.Tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// CompletedCount returns how many tasks are checked off
func (h Habit) CompletedCount() int {
	n := 0
	for _, t := range h.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// TotalXP is the XP the habit's tasks are worth in one day, without bonuses
func (h Habit) TotalXP() int {
	total := 0
	for _, t := range h.Tasks {
		total += t.XPValue
	}
	return total
}

// Clone returns a deep copy so callers cannot mutate engine-owned tasks
func (h Habit) Clone() Habit {
	c := h
	c.Tasks = append([]Task(nil), h.Tasks...)
	return c
}

// Validate checks a stored habit against the same rules CreateHabit and
// EditHabitTasks enforce. A habit without tasks is valid and inactive.
func (h Habit) Validate() error {
	def := HabitDefinition{Name: h.Name, Icon: h.Icon, Color: h.Color, Source: h.Source}
	seen := make(map[string]bool, len(h.Tasks))
	for _, t := range h.Tasks {
		if t.ID == "" {
			return apperrors.Validation("habit %q: task %q has no id", h.Name, t.Text)
		}
		if seen[t.ID] {
			return apperrors.Validation("habit %q: duplicate task id %q", h.Name, t.ID)
		}
		seen[t.ID] = true
		def.Tasks = append(def.Tasks, TaskDefinition{Text: t.Text, XPValue: t.XPValue})
	}
	if err := ValidateTasks(def.Tasks, 0); err != nil {
		return fmt.Errorf("habit %q: %w", h.Name, err)
	}
	if len(def.Tasks) == 0 {
		def.Tasks = []TaskDefinition{{Text: "-", XPValue: constants.MinTaskXP}}
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("habit %q: %w", h.Name, err)
	}
	return nil
}

// TaskDefinition is the input shape of a task in a habit definition
type TaskDefinition struct {
	Text    string `json:"text" toml:"text"`
	XPValue int    `json:"xp_value" toml:"xp_value"`
}

// HabitDefinition is the input contract for creating a habit
type HabitDefinition struct {
	Name   string           `json:"name" toml:"name"`
	Icon   Icon             `json:"icon" toml:"icon"`
	Color  Color            `json:"color" toml:"color"`
	Source HabitSource      `json:"source" toml:"source"`
	Tasks  []TaskDefinition `json:"tasks" toml:"tasks"`
}

// Validate checks the definition against the creation contract.
// An empty Source is treated as manual.
func (d HabitDefinition) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return apperrors.Validation("habit name cannot be empty")
	}
	if utf8.RuneCountInString(name) > constants.MaxHabitNameLen {
		return apperrors.Validation("habit name must be at most %d characters", constants.MaxHabitNameLen)
	}
	if !d.Icon.Valid() {
		return apperrors.Validation("unknown icon %q", d.Icon)
	}
	if !d.Color.Valid() {
		return apperrors.Validation("unknown color %q", d.Color)
	}
	if d.Source != "" && !d.Source.Valid() {
		return apperrors.Validation("unknown habit source %q", d.Source)
	}
	return ValidateTasks(d.Tasks, constants.MinHabitTasks)
}

// ValidateTasks checks a task list. minTasks is 1 on creation and 0 when
// editing, since a habit may be emptied to make it inactive.
func ValidateTasks(tasks []TaskDefinition, minTasks int) error {
	if len(tasks) < minTasks || len(tasks) > constants.MaxHabitTasks {
		return apperrors.Validation("a habit needs between %d and %d tasks, got %d", minTasks, constants.MaxHabitTasks, len(tasks))
	}
	for i, t := range tasks {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			return apperrors.Validation("task %d: text cannot be empty", i+1)
		}
		if utf8.RuneCountInString(text) > constants.MaxTaskTextLen {
			return apperrors.Validation("task %d: text must be at most %d characters", i+1, constants.MaxTaskTextLen)
		}
		if t.XPValue < constants.MinTaskXP || t.XPValue > constants.MaxTaskXP {
			return apperrors.Validation("task %d: xp must be between %d and %d, got %d", i+1, constants.MinTaskXP, constants.MaxTaskXP, t.XPValue)
		}
	}
	return nil
}
