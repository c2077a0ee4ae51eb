package engine

import (
	"sort"

	"github.com/julianstephens/habitquest/internal/models"
)

func sortMarkers(markers []models.DayMarker) {
	sort.Slice(markers, func(i, j int) bool {
		a, b := markers[i], markers[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.HabitID != b.HabitID {
			return a.HabitID < b.HabitID
		}
		return a.TaskID < b.TaskID
	})
}
