// Package validation checks a stored progress snapshot for inconsistencies
// that engine operations never produce but imports and hand edits can.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictTaskCount          ConflictType = "task_count"
	ConflictTaskXP             ConflictType = "task_xp_out_of_range"
	ConflictDuplicateTaskID    ConflictType = "duplicate_task_id"
	ConflictSlotOverflow       ConflictType = "slot_overflow"
	ConflictOrphanedStreak     ConflictType = "orphaned_streak"
	ConflictOrphanedMastery    ConflictType = "orphaned_mastery"
	ConflictOrphanedMarker     ConflictType = "orphaned_marker"
	ConflictStaleMarker        ConflictType = "stale_marker"
	ConflictFutureAward        ConflictType = "future_xp_award"
	ConflictInvalidAward       ConflictType = "invalid_xp_award"
)

// Conflict represents a detected inconsistency in stored progress
type Conflict struct {
	Type        ConflictType
	Description string
	HabitIDs    []string // habits involved, if any
	Fixable     bool     // AutoFix can repair it without losing earned progress
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Fixable returns the conflicts AutoFix can repair
func (vr *ValidationResult) Fixable() []Conflict {
	var out []Conflict
	for _, c := range vr.Conflicts {
		if c.Fixable {
			out = append(out, c)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		marker := ""
		if c.Fixable {
			marker = " (fixable)"
		}
		fmt.Fprintf(&b, "- %s%s\n", c.Description, marker)
	}
	return b.String()
}

// Validator validates progress snapshots
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSnapshot checks habits, progress records and markers against each other
func (v *Validator) ValidateSnapshot(s models.Snapshot) ValidationResult {
	var conflicts []Conflict
	habits := make(map[string]models.Habit, len(s.Habits))
	for _, h := range s.Habits {
		habits[h.ID] = h
	}

	conflicts = append(conflicts, v.checkHabits(s.Habits)...)
	conflicts = append(conflicts, v.checkSlots(s)...)

	for _, st := range s.Streaks {
		if st.Scope == constants.GlobalStreakScope {
			continue
		}
		if _, ok := habits[st.Scope]; !ok {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictOrphanedStreak,
				Description: fmt.Sprintf("Streak of %d days belongs to unknown habit %s", st.Count, st.Scope),
				HabitIDs:    []string{st.Scope},
				Fixable:     true,
			})
		}
	}

	for _, m := range s.Mastery {
		if _, ok := habits[m.HabitID]; !ok {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictOrphanedMastery,
				Description: fmt.Sprintf("Mastery record (%s) belongs to unknown habit %s", m.Tier.Label(), m.HabitID),
				HabitIDs:    []string{m.HabitID},
				Fixable:     true,
			})
		}
	}

	for _, m := range s.Markers {
		if m.HabitID != "" {
			if _, ok := habits[m.HabitID]; !ok {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictOrphanedMarker,
					Description: fmt.Sprintf("Reward marker %s refers to unknown habit %s", m.Kind, m.HabitID),
					HabitIDs:    []string{m.HabitID},
					Fixable:     true,
				})
				continue
			}
		}
		if !s.DayStarted || m.Day != s.Day {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictStaleMarker,
				Description: fmt.Sprintf("Reward marker %s is for %s, not the open day", m.Kind, utils.DayDate(m.Day)),
				HabitIDs:    nonEmpty(m.HabitID),
				Fixable:     true,
			})
		}
	}

	for _, a := range s.XPLog {
		if a.Amount <= 0 {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidAward,
				Description: fmt.Sprintf("XP award of %d on %s is not positive", a.Amount, utils.DayDate(a.Day)),
				HabitIDs:    nonEmpty(a.HabitID),
			})
		}
		if s.DayStarted && a.Day > s.Day {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictFutureAward,
				Description: fmt.Sprintf("XP award of %d on %s is after the open day %s", a.Amount, utils.DayDate(a.Day), utils.DayDate(s.Day)),
				HabitIDs:    nonEmpty(a.HabitID),
			})
		}
	}

	return ValidationResult{Conflicts: conflicts}
}

func (v *Validator) checkHabits(hs []models.Habit) []Conflict {
	var conflicts []Conflict

	byName := make(map[string][]string)
	taskOwners := make(map[string][]string)
	for _, h := range hs {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		byName[key] = append(byName[key], h.ID)

		if len(h.Tasks) > constants.MaxHabitTasks {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictTaskCount,
				Description: fmt.Sprintf("Habit %q has %d tasks, more than %d", h.Name, len(h.Tasks), constants.MaxHabitTasks),
				HabitIDs:    []string{h.ID},
			})
		}
		for _, t := range h.Tasks {
			taskOwners[t.ID] = append(taskOwners[t.ID], h.ID)
			if t.XPValue < constants.MinTaskXP || t.XPValue > constants.MaxTaskXP {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictTaskXP,
					Description: fmt.Sprintf("Task %q of %q is worth %d XP, outside %d-%d", t.Text, h.Name, t.XPValue, constants.MinTaskXP, constants.MaxTaskXP),
					HabitIDs:    []string{h.ID},
				})
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := byName[name]; len(ids) > 1 {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("%d habits are named %q", len(ids), name),
				HabitIDs:    ids,
			})
		}
	}

	taskIDs := make([]string, 0, len(taskOwners))
	for id := range taskOwners {
		taskIDs = append(taskIDs, id)
	}
	sort.Strings(taskIDs)
	for _, id := range taskIDs {
		if owners := taskOwners[id]; len(owners) > 1 {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateTaskID,
				Description: fmt.Sprintf("Task id %s is used %d times", id, len(owners)),
				HabitIDs:    owners,
			})
		}
	}
	return conflicts
}

// checkSlots flags more active habits than the slot ceiling. Habits added
// while bonus slots were unlocked stay when the global streak drops.
func (v *Validator) checkSlots(s models.Snapshot) []Conflict {
	active := 0
	for _, h := range s.Habits {
		if h.IsActive() {
			active++
		}
	}
	if active <= constants.MaxSlots {
		return nil
	}
	return []Conflict{{
		Type:        ConflictSlotOverflow,
		Description: fmt.Sprintf("%d active habits but at most %d slots exist", active, constants.MaxSlots),
	}}
}

// AutoFix removes the records named by fixable conflicts. Earned XP, streaks
// and badges of existing habits are never touched.
func AutoFix(s models.Snapshot, result ValidationResult) (models.Snapshot, []FixAction) {
	var actions []FixAction
	drop := make(map[ConflictType]map[string]bool)
	for _, c := range result.Fixable() {
		if drop[c.Type] == nil {
			drop[c.Type] = make(map[string]bool)
		}
		for _, id := range c.HabitIDs {
			drop[c.Type][id] = true
		}
		actions = append(actions, FixAction{Action: fixDescription(c), SourceConflict: c})
	}
	if len(actions) == 0 {
		return s, nil
	}

	fixed := s
	fixed.Streaks = nil
	for _, st := range s.Streaks {
		if !drop[ConflictOrphanedStreak][st.Scope] {
			fixed.Streaks = append(fixed.Streaks, st)
		}
	}
	fixed.Mastery = nil
	for _, m := range s.Mastery {
		if !drop[ConflictOrphanedMastery][m.HabitID] {
			fixed.Mastery = append(fixed.Mastery, m)
		}
	}
	fixed.Markers = nil
	for _, m := range s.Markers {
		if m.HabitID != "" && drop[ConflictOrphanedMarker][m.HabitID] {
			continue
		}
		if result.has(ConflictStaleMarker) && (!s.DayStarted || m.Day != s.Day) {
			continue
		}
		fixed.Markers = append(fixed.Markers, m)
	}
	return fixed, actions
}

func (vr *ValidationResult) has(t ConflictType) bool {
	for _, c := range vr.Conflicts {
		if c.Type == t {
			return true
		}
	}
	return false
}

func fixDescription(c Conflict) string {
	switch c.Type {
	case ConflictOrphanedStreak:
		return fmt.Sprintf("Removed streak of deleted habit %s", strings.Join(c.HabitIDs, ", "))
	case ConflictOrphanedMastery:
		return fmt.Sprintf("Removed mastery record of deleted habit %s", strings.Join(c.HabitIDs, ", "))
	case ConflictOrphanedMarker:
		return fmt.Sprintf("Removed reward marker of deleted habit %s", strings.Join(c.HabitIDs, ", "))
	case ConflictStaleMarker:
		return "Removed reward marker left over from a closed day"
	default:
		return c.Description
	}
}

func nonEmpty(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}
