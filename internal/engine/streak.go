package engine

import (
	"sort"

	"github.com/julianstephens/habitquest/internal/models"
)

// StreakTracker keeps consecutive-day success counters per habit and for the
// global all-habits scope.
type StreakTracker struct {
	states map[string]*models.StreakState
}

// NewStreakTracker creates a tracker with no recorded days
func NewStreakTracker() *StreakTracker {
	return &StreakTracker{states: make(map[string]*models.StreakState)}
}

func (s *StreakTracker) state(scope string) *models.StreakState {
	st, ok := s.states[scope]
	if !ok {
		st = &models.StreakState{Scope: scope}
		s.states[scope] = st
	}
	return st
}

// RecordDayOutcome applies the outcome of a day to a scope and returns the new count.
//
// A failure always resets to 0. A success on the day after the last advanced
// day extends the streak and a success after a gap starts over at 1. Successes
// at or before the last advanced day are ignored so repeated calls are harmless.
func (s *StreakTracker) RecordDayOutcome(scope string, completed bool, day int) int {
	st := s.state(scope)
	if !completed {
		st.Count = 0
		st.LastAdvancedDay = nil
		return 0
	}
	if st.LastAdvancedDay != nil && day <= *st.LastAdvancedDay {
		return st.Count
	}
	if st.LastAdvancedDay != nil && day == *st.LastAdvancedDay+1 {
		st.Count++
	} else {
		st.Count = 1
	}
	d := day
	st.LastAdvancedDay = &d
	return st.Count
}

// Current returns the streak of a scope, 0 if nothing was recorded
func (s *StreakTracker) Current(scope string) int {
	if st, ok := s.states[scope]; ok {
		return st.Count
	}
	return 0
}

// AdvancedOn reports whether the scope already counted the given day
func (s *StreakTracker) AdvancedOn(scope string, day int) bool {
	st, ok := s.states[scope]
	return ok && st.LastAdvancedDay != nil && *st.LastAdvancedDay == day
}

// State returns a copy of the scope's state
func (s *StreakTracker) State(scope string) models.StreakState {
	st, ok := s.states[scope]
	if !ok {
		return models.StreakState{Scope: scope}
	}
	return copyStreak(*st)
}

// Reset zeroes a scope
func (s *StreakTracker) Reset(scope string) {
	st := s.state(scope)
	st.Count = 0
	st.LastAdvancedDay = nil
}

// Remove forgets a scope entirely
func (s *StreakTracker) Remove(scope string) {
	delete(s.states, scope)
}

// States returns copies of all scopes ordered by scope name
func (s *StreakTracker) States() []models.StreakState {
	out := make([]models.StreakState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, copyStreak(*st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Scope < out[j].Scope })
	return out
}

func (s *StreakTracker) restore(states []models.StreakState) {
	s.states = make(map[string]*models.StreakState, len(states))
	for _, st := range states {
		c := copyStreak(st)
		s.states[st.Scope] = &c
	}
}

func copyStreak(st models.StreakState) models.StreakState {
	if st.LastAdvancedDay != nil {
		d := *st.LastAdvancedDay
		st.LastAdvancedDay = &d
	}
	return st
}
