// Package templates holds the built-in default habits offered to new players.
package templates

import (
	"sort"
	"strings"

	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

var defaults = []models.HabitDefinition{
	{
		Name: "Reading", Icon: "book", Color: "blue", Source: models.SourceDefault,
		Tasks: []models.TaskDefinition{
			{Text: "Pick up your book", XPValue: 10},
			{Text: "Read for 20 minutes", XPValue: 30},
			{Text: "Write one sentence about it", XPValue: 20},
		},
	},
	{
		Name: "Hydration", Icon: "droplet", Color: "teal", Source: models.SourceDefault,
		Tasks: []models.TaskDefinition{
			{Text: "Glass of water after waking", XPValue: 10},
			{Text: "Refill your bottle at lunch", XPValue: 10},
			{Text: "Finish two liters", XPValue: 30},
		},
	},
	{
		Name: "Exercise", Icon: "dumbbell", Color: "red", Source: models.SourceDefault,
		Tasks: []models.TaskDefinition{
			{Text: "Put on workout clothes", XPValue: 10},
			{Text: "Warm up for 5 minutes", XPValue: 20},
			{Text: "Train for 30 minutes", XPValue: 50},
			{Text: "Stretch", XPValue: 20},
		},
	},
	{
		Name: "Meditation", Icon: "brain", Color: "purple", Source: models.SourceDefault,
		Tasks: []models.TaskDefinition{
			{Text: "Find a quiet spot", XPValue: 10},
			{Text: "Meditate for 10 minutes", XPValue: 40},
		},
	},
	{
		Name: "Journaling", Icon: "pen", Color: "orange", Source: models.SourceDefault,
		Tasks: []models.TaskDefinition{
			{Text: "Open your journal", XPValue: 10},
			{Text: "Write three things you are grateful for", XPValue: 30},
			{Text: "Plan tomorrow's priority", XPValue: 20},
		},
	},
	{
		Name: "Sleep", Icon: "moon", Color: "purple", Source: models.SourceDefault,
		Tasks: []models.TaskDefinition{
			{Text: "Screens off an hour before bed", XPValue: 30},
			{Text: "In bed by your target time", XPValue: 30},
		},
	},
}

// All returns copies of every built-in habit, ordered by name
func All() []models.HabitDefinition {
	out := make([]models.HabitDefinition, 0, len(defaults))
	for _, d := range defaults {
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists the template names
func Names() []string {
	names := make([]string, 0, len(defaults))
	for _, d := range All() {
		names = append(names, d.Name)
	}
	return names
}

// Get looks a template up by name, ignoring case
func Get(name string) (models.HabitDefinition, error) {
	for _, d := range defaults {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return clone(d), nil
		}
	}
	return models.HabitDefinition{}, apperrors.NotFound("habit template %q (available: %s)", name, strings.Join(Names(), ", "))
}

func clone(d models.HabitDefinition) models.HabitDefinition {
	d.Tasks = append([]models.TaskDefinition(nil), d.Tasks...)
	return d
}
