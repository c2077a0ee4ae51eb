package models

import "time"

// MarkerKind identifies a once-per-day reward that was already paid
type MarkerKind string

const (
	MarkerTaskXP     MarkerKind = "task_xp"
	MarkerHabitBonus MarkerKind = "habit_bonus"
	MarkerDailyBonus MarkerKind = "daily_bonus"
)

// DayMarker records that a reward was paid on a given day so that
// toggling a task off and on again does not pay it twice.
type DayMarker struct {
	Kind    MarkerKind `json:"kind"`
	HabitID string     `json:"habit_id,omitempty"`
	TaskID  string     `json:"task_id,omitempty"`
	Day     int        `json:"day"`
}

// Snapshot is the complete persisted state of the progression engine
type Snapshot struct {
	Day        int            `json:"day"`
	DayStarted bool           `json:"day_started"`
	Habits     []Habit        `json:"habits"`
	XPLog      []XPAward      `json:"xp_log"`
	Streaks    []StreakState  `json:"streaks"`
	Mastery    []MasteryState `json:"mastery"`
	Markers    []DayMarker    `json:"markers"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
