package engine

import (
	"sort"
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

// TierChange describes a mastery transition
type TierChange struct {
	From models.MasteryTier
	To   models.MasteryTier
}

// Changed reports whether the tier moved
func (c TierChange) Changed() bool {
	return c.From != c.To
}

// MasteryTracker advances habits through none, Gold and Prestige.
// Tiers only move forward; a missed day only clears the current window.
type MasteryTracker struct {
	states         map[string]*models.MasteryState
	goldWindow     int
	prestigeWindow int
	now            func() time.Time
}

// NewMasteryTracker creates a tracker using the default 30-day windows
func NewMasteryTracker(now func() time.Time) *MasteryTracker {
	if now == nil {
		now = time.Now
	}
	return &MasteryTracker{
		states:         make(map[string]*models.MasteryState),
		goldWindow:     constants.GoldWindowDays,
		prestigeWindow: constants.PrestigeWindowDays,
		now:            now,
	}
}

func (m *MasteryTracker) state(habitID string) *models.MasteryState {
	st, ok := m.states[habitID]
	if !ok {
		st = &models.MasteryState{HabitID: habitID, Tier: models.TierNone}
		m.states[habitID] = st
	}
	return st
}

// RecordSuccess counts a fully completed day. Recording the same day twice,
// or a day earlier than the last counted one, does nothing.
func (m *MasteryTracker) RecordSuccess(habitID string, day int) TierChange {
	st := m.state(habitID)
	change := TierChange{From: st.Tier, To: st.Tier}
	if st.LastAdvancedDay != nil && day <= *st.LastAdvancedDay {
		return change
	}
	// a gap without an explicit miss still breaks consecutiveness
	if st.InProgress() && st.LastAdvancedDay != nil && day > *st.LastAdvancedDay+1 {
		st.DayCount = 0
	}

	switch st.Tier {
	case models.TierNone:
		st.Tier = models.TierInProgressGold
		st.DayCount = 1
	case models.TierInProgressGold:
		st.DayCount++
		if st.DayCount >= m.goldWindow {
			at := m.now()
			st.Tier = models.TierGold
			st.GoldCompletedAt = &at
			st.DayCount = 0
		}
	case models.TierInProgressPrestige:
		st.DayCount++
		if st.DayCount >= m.prestigeWindow {
			at := m.now()
			st.Tier = models.TierPrestige
			st.PrestigeCompletedAt = &at
			st.DayCount = 0
		}
	default:
		// gold waits for an explicit push, prestige is terminal
		return change
	}

	d := day
	st.LastAdvancedDay = &d
	change.To = st.Tier
	return change
}

// RecordMiss clears the current window without touching the tier
func (m *MasteryTracker) RecordMiss(habitID string) {
	st, ok := m.states[habitID]
	if !ok || !st.InProgress() {
		return
	}
	st.DayCount = 0
	st.LastAdvancedDay = nil
}

// PushToPrestige starts the Prestige window. Only a Gold habit can be pushed.
func (m *MasteryTracker) PushToPrestige(habitID string) (TierChange, error) {
	st := m.state(habitID)
	if st.Tier != models.TierGold {
		return TierChange{}, apperrors.Validation("habit must hold Gold to push to Prestige, current tier is %s", st.Tier)
	}
	// LastAdvancedDay is kept so the day Gold was earned cannot count again
	st.Tier = models.TierInProgressPrestige
	st.DayCount = 0
	return TierChange{From: models.TierGold, To: models.TierInProgressPrestige}, nil
}

// ResetProgress clears the current window after a confirmed edit
func (m *MasteryTracker) ResetProgress(habitID string) {
	m.RecordMiss(habitID)
}

// State returns a copy of the habit's mastery, TierNone if unseen
func (m *MasteryTracker) State(habitID string) models.MasteryState {
	st, ok := m.states[habitID]
	if !ok {
		return models.MasteryState{HabitID: habitID, Tier: models.TierNone}
	}
	return copyMastery(*st)
}

// Remove forgets a habit
func (m *MasteryTracker) Remove(habitID string) {
	delete(m.states, habitID)
}

// States returns copies of all mastery states ordered by habit id
func (m *MasteryTracker) States() []models.MasteryState {
	out := make([]models.MasteryState, 0, len(m.states))
	for _, st := range m.states {
		out = append(out, copyMastery(*st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HabitID < out[j].HabitID })
	return out
}

func (m *MasteryTracker) restore(states []models.MasteryState) error {
	m.states = make(map[string]*models.MasteryState, len(states))
	for _, st := range states {
		if !st.Tier.Valid() {
			return apperrors.Validation("habit %q has unknown mastery tier %q", st.HabitID, st.Tier)
		}
		if st.DayCount < 0 || st.DayCount > max(m.goldWindow, m.prestigeWindow) {
			return apperrors.Validation("habit %q has mastery day count %d out of range", st.HabitID, st.DayCount)
		}
		c := copyMastery(st)
		m.states[st.HabitID] = &c
	}
	return nil
}

func copyMastery(st models.MasteryState) models.MasteryState {
	if st.LastAdvancedDay != nil {
		d := *st.LastAdvancedDay
		st.LastAdvancedDay = &d
	}
	if st.GoldCompletedAt != nil {
		t := *st.GoldCompletedAt
		st.GoldCompletedAt = &t
	}
	if st.PrestigeCompletedAt != nil {
		t := *st.PrestigeCompletedAt
		st.PrestigeCompletedAt = &t
	}
	return st
}
