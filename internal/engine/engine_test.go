package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

var fixedNow = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}
	return New(append(base, opts...)...)
}

func habitDef(name string, xp ...int) models.HabitDefinition {
	def := models.HabitDefinition{Name: name, Icon: "book", Color: "blue"}
	for i, v := range xp {
		def.Tasks = append(def.Tasks, models.TaskDefinition{Text: fmt.Sprintf("%s step %d", name, i+1), XPValue: v})
	}
	return def
}

// completeHabit checks off every unchecked task of the habit on day
func completeHabit(t *testing.T, e *Engine, habitID string, day int) []models.RewardEvent {
	t.Helper()
	// open the day first so the task states below are the ones of day
	_, err := e.ResetDay(day)
	require.NoError(t, err)
	h, err := e.Habit(habitID)
	require.NoError(t, err)
	var events []models.RewardEvent
	for _, task := range h.Tasks {
		if task.Completed {
			continue
		}
		evs, err := e.CompleteTask(habitID, task.ID, day)
		require.NoError(t, err)
		events = append(events, evs...)
	}
	return events
}

func TestCompleteTask_ReadingScenario(t *testing.T) {
	e := newTestEngine()
	h, err := e.CreateHabit(habitDef("Reading", 10, 10, 10))
	require.NoError(t, err)

	var events []models.RewardEvent
	for _, task := range h.Tasks {
		evs, err := e.CompleteTask(h.ID, task.ID, 1)
		require.NoError(t, err)
		events = append(events, evs...)
	}

	want := []models.RewardEvent{
		{Kind: models.RewardTaskXP, Day: 1, HabitID: h.ID, HabitName: "Reading", TaskID: h.Tasks[0].ID, Amount: 10},
		{Kind: models.RewardTaskXP, Day: 1, HabitID: h.ID, HabitName: "Reading", TaskID: h.Tasks[1].ID, Amount: 10},
		{Kind: models.RewardTaskXP, Day: 1, HabitID: h.ID, HabitName: "Reading", TaskID: h.Tasks[2].ID, Amount: 10},
		{Kind: models.RewardHabitBonus, Day: 1, HabitID: h.ID, HabitName: "Reading", Amount: 50},
		{Kind: models.RewardDailyBonus, Day: 1, Amount: 50},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("reward events mismatch (-want +got):\n%s", diff)
	}
	// 3x10 task XP plus the 50 habit bonus plus the 50 daily bonus
	assert.Equal(t, 130, e.XPTotal())
	assert.Equal(t, 1, e.Streak(h.ID))
	assert.Equal(t, 1, e.GlobalStreak())
	assert.Len(t, e.XPLog(), 5)
}

func TestCompleteTask_TwoHabitsPartialDay(t *testing.T) {
	e := newTestEngine()
	a, err := e.CreateHabit(habitDef("Reading", 10))
	require.NoError(t, err)
	b, err := e.CreateHabit(habitDef("Exercise", 20, 20))
	require.NoError(t, err)

	events := completeHabit(t, e, a.ID, 1)
	for _, ev := range events {
		assert.NotEqual(t, models.RewardDailyBonus, ev.Kind)
	}
	_, err = e.CompleteTask(b.ID, b.Tasks[0].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, e.GlobalStreak())

	_, err = e.ResetDay(2)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Streak(a.ID))
	assert.Equal(t, 0, e.Streak(b.ID))
	assert.Equal(t, 0, e.GlobalStreak())
}

func TestCompleteTask_GlobalStreakResetsOnIncompleteDay(t *testing.T) {
	e := newTestEngine()
	a, _ := e.CreateHabit(habitDef("Reading", 10))
	b, _ := e.CreateHabit(habitDef("Exercise", 10))

	completeHabit(t, e, a.ID, 1)
	completeHabit(t, e, b.ID, 1)
	require.Equal(t, 1, e.GlobalStreak())

	completeHabit(t, e, a.ID, 2)
	_, err := e.ResetDay(3)
	require.NoError(t, err)
	assert.Equal(t, 0, e.GlobalStreak())
	assert.Equal(t, 2, e.Streak(a.ID))
	assert.Equal(t, 0, e.Streak(b.ID))
}

func TestCompleteTask_UncheckKeepsXPButDayEndDecides(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10, 30))
	completeHabit(t, e, h.ID, 1)
	require.Equal(t, 1, e.Streak(h.ID))
	require.Equal(t, 140, e.XPTotal())

	events, err := e.CompleteTask(h.ID, h.Tasks[1].ID, 1)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 140, e.XPTotal(), "unchecking must not take XP back")

	// checking it again on the same day pays nothing new
	events, err = e.CompleteTask(h.ID, h.Tasks[1].ID, 1)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 140, e.XPTotal())

	// unchecked at day end: streak is gone
	_, err = e.CompleteTask(h.ID, h.Tasks[1].ID, 1)
	require.NoError(t, err)
	_, err = e.ResetDay(2)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Streak(h.ID))
	assert.Equal(t, 0, e.GlobalStreak())
	assert.Equal(t, 0, e.Mastery(h.ID).DayCount)
}

func TestCompleteTask_Errors(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	_, err := e.CompleteTask(h.ID, h.Tasks[0].ID, 5)
	require.NoError(t, err)

	tests := []struct {
		name    string
		habitID string
		taskID  string
		day     int
		want    error
	}{
		{"unknown habit", "missing", h.Tasks[0].ID, 5, apperrors.ErrNotFound},
		{"unknown task", h.ID, "missing", 5, apperrors.ErrNotFound},
		{"earlier day", h.ID, h.Tasks[0].ID, 4, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.Snapshot()
			_, err := e.CompleteTask(tt.habitID, tt.taskID, tt.day)
			assert.ErrorIs(t, err, tt.want)
			if diff := cmp.Diff(before, e.Snapshot()); diff != "" {
				t.Errorf("rejected call changed state (-before +after):\n%s", diff)
			}
		})
	}
}

func TestCompleteTask_LaterDayClosesCurrentDay(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10, 10))
	completeHabit(t, e, h.ID, 1)

	events, err := e.CompleteTask(h.ID, h.Tasks[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.RewardTaskXP, events[0].Kind)
	day, started := e.Day()
	assert.True(t, started)
	assert.Equal(t, 2, day)

	got, _ := e.Habit(h.ID)
	assert.True(t, got.Tasks[0].Completed)
	assert.False(t, got.Tasks[1].Completed, "tasks start the new day unchecked")
}

func TestResetDay(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	completeHabit(t, e, h.ID, 10)
	completeHabit(t, e, h.ID, 11)
	require.Equal(t, 2, e.Streak(h.ID))

	// same day is a no-op
	_, err := e.ResetDay(11)
	require.NoError(t, err)
	got, _ := e.Habit(h.ID)
	assert.True(t, got.Tasks[0].Completed)

	_, err = e.ResetDay(3)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// skipping day 12 breaks the streak even though day 11 was complete
	_, err = e.ResetDay(13)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Streak(h.ID))
	assert.Equal(t, 0, e.GlobalStreak())

	completeHabit(t, e, h.ID, 13)
	assert.Equal(t, 1, e.Streak(h.ID))
}

func TestResetDay_NoHabitsBreaksGlobalStreak(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	completeHabit(t, e, h.ID, 1)
	require.Equal(t, 1, e.GlobalStreak())
	_, err := e.DeleteHabit(h.ID)
	require.NoError(t, err)

	_, err = e.ResetDay(2)
	require.NoError(t, err)
	assert.Equal(t, 0, e.GlobalStreak())
}

func TestDeleteHabit_ExcludedFromDailyBonus(t *testing.T) {
	e := newTestEngine()
	a, _ := e.CreateHabit(habitDef("Reading", 10))
	b, _ := e.CreateHabit(habitDef("Exercise", 10))
	completeHabit(t, e, a.ID, 1)
	completeHabit(t, e, b.ID, 1)

	events, err := e.DeleteHabit(b.ID)
	require.NoError(t, err)
	assert.Empty(t, events, "daily bonus was already paid")
	assert.Equal(t, 0, e.Streak(b.ID))
	assert.Equal(t, models.TierNone, e.Mastery(b.ID).Tier)
	_, err = e.DeleteHabit(b.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	events = completeHabit(t, e, a.ID, 2)
	kinds := eventKinds(events)
	assert.Contains(t, kinds, models.RewardDailyBonus)
	assert.Equal(t, 2, e.GlobalStreak())
	assert.Equal(t, 1, e.Slots().Used)
}

func TestDeleteHabit_LastIncompleteHabitPaysDailyBonus(t *testing.T) {
	e := newTestEngine()
	a, _ := e.CreateHabit(habitDef("Reading", 10))
	b, _ := e.CreateHabit(habitDef("Exercise", 10))
	completeHabit(t, e, a.ID, 1)
	require.Equal(t, 0, e.GlobalStreak())

	events, err := e.DeleteHabit(b.ID)
	require.NoError(t, err)
	require.Equal(t, []models.RewardKind{models.RewardDailyBonus}, eventKinds(events))
	assert.Equal(t, 1, e.GlobalStreak())
	assert.Equal(t, 10+50+50, e.XPTotal())

	closing, err := e.ResetDay(2)
	require.NoError(t, err)
	assert.Empty(t, closing)
	assert.Equal(t, 1, e.GlobalStreak())
	assert.Equal(t, 10+50+50, e.XPTotal())
	assert.Len(t, e.XPLog(), 3)
}

func TestDeleteHabit_BeforeDayOpensPaysNothing(t *testing.T) {
	e := newTestEngine()
	_, _ = e.CreateHabit(habitDef("Reading", 10))
	b, _ := e.CreateHabit(habitDef("Exercise", 10))

	events, err := e.DeleteHabit(b.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Zero(t, e.XPTotal())
}

func TestCreateHabit_SlotLimit(t *testing.T) {
	e := newTestEngine()
	_, err := e.CreateHabit(habitDef("One", 10))
	require.NoError(t, err)
	_, err = e.CreateHabit(habitDef("Two", 10))
	require.NoError(t, err)

	_, err = e.CreateHabit(habitDef("Three", 10))
	assert.ErrorIs(t, err, apperrors.ErrSlotLimitExceeded)
	assert.Len(t, e.Habits(), 2)
	assert.False(t, e.CanAddHabit())
}

func TestCreateHabit_Validation(t *testing.T) {
	tests := []struct {
		name string
		def  models.HabitDefinition
	}{
		{"empty name", habitDef("  ", 10)},
		{"no tasks", habitDef("Reading")},
		{"six tasks", habitDef("Reading", 10, 10, 10, 10, 10, 10)},
		{"xp too low", habitDef("Reading", 5)},
		{"xp too high", habitDef("Reading", 101)},
		{"bad icon", models.HabitDefinition{Name: "Reading", Icon: "rocket", Color: "blue", Tasks: habitDef("x", 10).Tasks}},
		{"bad color", models.HabitDefinition{Name: "Reading", Icon: "book", Color: "plaid", Tasks: habitDef("x", 10).Tasks}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			_, err := e.CreateHabit(tt.def)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Empty(t, e.Habits())
		})
	}
}

func TestCreateHabit_DefaultsSourceToManual(t *testing.T) {
	e := newTestEngine()
	h, err := e.CreateHabit(habitDef("Reading", 10))
	require.NoError(t, err)
	assert.Equal(t, models.SourceManual, h.Source)
	assert.Equal(t, "id-1", h.ID)
	assert.Equal(t, fixedNow, h.CreatedAt)
}

func TestSlots_UnlockAfterSevenDaysAndNoEviction(t *testing.T) {
	e := newTestEngine()
	a, _ := e.CreateHabit(habitDef("Reading", 10))
	b, _ := e.CreateHabit(habitDef("Exercise", 10))

	var unlocked []models.RewardEvent
	for day := 1; day <= 7; day++ {
		completeHabit(t, e, a.ID, day)
		for _, ev := range completeHabit(t, e, b.ID, day) {
			if ev.Kind == models.RewardSlotUnlocked {
				unlocked = append(unlocked, ev)
			}
		}
	}
	require.Len(t, unlocked, 1)
	assert.Equal(t, 7, unlocked[0].Day)
	assert.Equal(t, 2, unlocked[0].PreviousSlots)
	assert.Equal(t, 4, unlocked[0].Slots)

	_, err := e.CreateHabit(habitDef("Meditation", 10))
	require.NoError(t, err)
	_, err = e.CreateHabit(habitDef("Journal", 10))
	require.NoError(t, err)
	_, err = e.CreateHabit(habitDef("Fifth", 10))
	assert.ErrorIs(t, err, apperrors.ErrSlotLimitExceeded)

	// the new habits are not done when day 7 closes: capacity drops back but nothing is removed
	_, err = e.ResetDay(8)
	require.NoError(t, err)
	slots := e.Slots()
	assert.Equal(t, 2, slots.Available)
	assert.Equal(t, 4, slots.Used)
	assert.Len(t, e.Habits(), 4)
}

func TestMastery_GoldAfterThirtyDays(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))

	var tierEvents []models.RewardEvent
	for day := 1; day <= 30; day++ {
		for _, ev := range completeHabit(t, e, h.ID, day) {
			if ev.Kind == models.RewardMasteryTierShift {
				tierEvents = append(tierEvents, ev)
			}
		}
		if day == 29 {
			st := e.Mastery(h.ID)
			assert.Equal(t, models.TierInProgressGold, st.Tier)
			assert.Equal(t, 29, st.DayCount)
		}
	}

	st := e.Mastery(h.ID)
	assert.Equal(t, models.TierGold, st.Tier)
	assert.Equal(t, 0, st.DayCount)
	require.NotNil(t, st.GoldCompletedAt)
	assert.Equal(t, fixedNow, *st.GoldCompletedAt)
	require.Len(t, tierEvents, 1)
	assert.Equal(t, models.TierInProgressGold, tierEvents[0].PreviousTier)
	assert.Equal(t, models.TierGold, tierEvents[0].Tier)
}

func TestMastery_MissOnDayTwentyNineResets(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	for day := 1; day <= 28; day++ {
		completeHabit(t, e, h.ID, day)
	}
	// day 29 passes without completion
	completeHabit(t, e, h.ID, 30)

	st := e.Mastery(h.ID)
	assert.Equal(t, models.TierInProgressGold, st.Tier)
	assert.Equal(t, 1, st.DayCount)
	assert.Nil(t, st.GoldCompletedAt)
}

func TestMastery_PrestigeAfterSixtyDays(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	for day := 1; day <= 30; day++ {
		completeHabit(t, e, h.ID, day)
	}
	require.True(t, e.Mastery(h.ID).HasGold())

	events, err := e.PushToPrestige(h.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.TierInProgressPrestige, events[0].Tier)

	// a miss inside the prestige window resets the count but keeps gold
	completeHabit(t, e, h.ID, 31)
	_, err = e.ResetDay(33)
	require.NoError(t, err)
	st := e.Mastery(h.ID)
	assert.Equal(t, models.TierInProgressPrestige, st.Tier)
	assert.Equal(t, 0, st.DayCount)
	assert.True(t, st.HasGold())

	for day := 33; day <= 62; day++ {
		completeHabit(t, e, h.ID, day)
	}
	st = e.Mastery(h.ID)
	assert.Equal(t, models.TierPrestige, st.Tier)
	assert.True(t, st.HasGold())
	assert.NotNil(t, st.GoldCompletedAt)
	assert.NotNil(t, st.PrestigeCompletedAt)
}

func TestPushToPrestige_RequiresGold(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))

	_, err := e.PushToPrestige(h.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	completeHabit(t, e, h.ID, 1)
	_, err = e.PushToPrestige(h.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, models.TierInProgressGold, e.Mastery(h.ID).Tier)

	_, err = e.PushToPrestige("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEditHabitTasks_Confirmation(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	completeHabit(t, e, h.ID, 1)
	completeHabit(t, e, h.ID, 2)

	newTasks := []models.TaskDefinition{{Text: "Read 20 pages", XPValue: 30}}
	_, err := e.EditHabitTasks(h.ID, newTasks, false)
	require.ErrorIs(t, err, apperrors.ErrConfirmationRequired)
	got, _ := e.Habit(h.ID)
	assert.Equal(t, h.Tasks[0].Text, got.Tasks[0].Text)
	assert.Equal(t, 2, e.Streak(h.ID))

	edited, err := e.EditHabitTasks(h.ID, newTasks, true)
	require.NoError(t, err)
	require.Len(t, edited.Tasks, 1)
	assert.Equal(t, "Read 20 pages", edited.Tasks[0].Text)
	assert.False(t, edited.Tasks[0].Completed)
	assert.Equal(t, 0, e.Streak(h.ID))
	st := e.Mastery(h.ID)
	assert.Equal(t, models.TierInProgressGold, st.Tier)
	assert.Equal(t, 0, st.DayCount)
}

func TestEditHabitTasks_NoProgressNeedsNoConfirmation(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	edited, err := e.EditHabitTasks(h.ID, []models.TaskDefinition{{Text: "a", XPValue: 10}, {Text: "b", XPValue: 20}}, false)
	require.NoError(t, err)
	assert.Equal(t, 30, edited.TotalXP())
}

func TestEditHabitTasks_EmptyMakesInactive(t *testing.T) {
	e := newTestEngine()
	a, _ := e.CreateHabit(habitDef("Reading", 10))
	b, _ := e.CreateHabit(habitDef("Exercise", 10))

	_, err := e.EditHabitTasks(b.ID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Slots().Used)

	events := completeHabit(t, e, a.ID, 1)
	assert.Contains(t, eventKinds(events), models.RewardDailyBonus)

	_, err = e.CreateHabit(habitDef("Meditation", 10))
	require.NoError(t, err)
	// reactivating needs a free slot again
	_, err = e.EditHabitTasks(b.ID, []models.TaskDefinition{{Text: "a", XPValue: 10}}, false)
	assert.ErrorIs(t, err, apperrors.ErrSlotLimitExceeded)
}

func TestUpdateHabitDetails(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))
	completeHabit(t, e, h.ID, 1)

	got, err := e.UpdateHabitDetails(h.ID, "Deep reading", "brain", "purple")
	require.NoError(t, err)
	assert.Equal(t, "Deep reading", got.Name)
	assert.Equal(t, models.Icon("brain"), got.Icon)
	assert.Equal(t, 1, e.Streak(h.ID))

	_, err = e.UpdateHabitDetails(h.ID, "", "brain", "purple")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	e := newTestEngine()
	a, _ := e.CreateHabit(habitDef("Reading", 10, 20))
	completeHabit(t, e, a.ID, 1)
	_, err := e.CompleteTask(a.ID, a.Tasks[0].ID, 2)
	require.NoError(t, err)

	snap := e.Snapshot()
	restored, err := FromSnapshot(snap, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	if diff := cmp.Diff(snap, restored.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch after restore (-want +got):\n%s", diff)
	}

	// markers survive, so re-checking after a restart does not pay again
	_, err = restored.CompleteTask(a.ID, a.Tasks[0].ID, 2)
	require.NoError(t, err)
	events, err := restored.CompleteTask(a.ID, a.Tasks[0].ID, 2)
	require.NoError(t, err)
	assert.NotContains(t, eventKinds(events), models.RewardTaskXP)
}

func TestRestore_RejectsInvalidSnapshot(t *testing.T) {
	e := newTestEngine()
	h, _ := e.CreateHabit(habitDef("Reading", 10))

	bad := e.Snapshot()
	bad.Mastery = []models.MasteryState{{HabitID: h.ID, Tier: "platinum"}}
	assert.ErrorIs(t, e.Restore(bad), apperrors.ErrValidation)

	dup := e.Snapshot()
	dup.Habits = append(dup.Habits, dup.Habits[0])
	assert.ErrorIs(t, e.Restore(dup), apperrors.ErrValidation)

	activeHabit := func(id string) models.Habit {
		return models.Habit{ID: id, Name: id, Icon: "book", Color: "blue",
			Tasks: []models.Task{{ID: id + "-t", Text: "step", XPValue: 10}}}
	}
	tests := []struct {
		name   string
		mutate func(s *models.Snapshot)
	}{
		{"zero xp task", func(s *models.Snapshot) { s.Habits[0].Tasks[0].XPValue = 0 }},
		{"task xp above range", func(s *models.Snapshot) { s.Habits[0].Tasks[0].XPValue = 101 }},
		{"too many tasks", func(s *models.Snapshot) {
			for i := 0; i < 5; i++ {
				s.Habits[0].Tasks = append(s.Habits[0].Tasks, models.Task{ID: fmt.Sprintf("extra-%d", i), Text: "more", XPValue: 10})
			}
		}},
		{"duplicate task id", func(s *models.Snapshot) {
			s.Habits[0].Tasks = append(s.Habits[0].Tasks, s.Habits[0].Tasks[0])
		}},
		{"empty task text", func(s *models.Snapshot) { s.Habits[0].Tasks[0].Text = " " }},
		{"empty habit name", func(s *models.Snapshot) { s.Habits[0].Name = "" }},
		{"unknown icon", func(s *models.Snapshot) { s.Habits[0].Icon = "rocket" }},
		{"unknown source", func(s *models.Snapshot) { s.Habits[0].Source = "imported" }},
		{"negative award", func(s *models.Snapshot) {
			s.XPLog = append(s.XPLog, models.XPAward{Source: models.XPSourceTask, Amount: -500, Day: 1})
		}},
		{"zero award", func(s *models.Snapshot) {
			s.XPLog = append(s.XPLog, models.XPAward{Source: models.XPSourceTask, Amount: 0, Day: 1})
		}},
		{"more active habits than slots exist", func(s *models.Snapshot) {
			for i := 0; i < 4; i++ {
				s.Habits = append(s.Habits, activeHabit(fmt.Sprintf("h%d", i)))
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := e.Snapshot()
			tt.mutate(&snap)
			assert.ErrorIs(t, e.Restore(snap), apperrors.ErrValidation)
		})
	}

	assert.Len(t, e.Habits(), 1)
	assert.Equal(t, h.Tasks, e.Habits()[0].Tasks)
	assert.Zero(t, e.XPTotal())
}

func TestRestore_KeepsHabitsAboveUnlockedSlots(t *testing.T) {
	e := newTestEngine()
	snap := models.Snapshot{Day: 5, DayStarted: true}
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("h%d", i)
		snap.Habits = append(snap.Habits, models.Habit{ID: id, Name: id, Icon: "book", Color: "blue",
			Tasks: []models.Task{{ID: id + "-t", Text: "step", XPValue: 10}}})
	}

	require.NoError(t, e.Restore(snap))
	slots := e.Slots()
	assert.Equal(t, 4, slots.Used)
	assert.Equal(t, 2, slots.Available)
	assert.False(t, e.CanAddHabit())
}

func TestCompleteTask_RejectedToggleLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine()
	_, err := e.ResetDay(1)
	require.NoError(t, err)
	// a task without xp can only come from state built outside the public operations
	e.ledger.Add(models.Habit{ID: "a", Name: "Broken", Icon: "book", Color: "blue",
		Tasks: []models.Task{{ID: "t", Text: "step"}}})

	_, err = e.CompleteTask("a", "t", 2)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	day, started := e.Day()
	assert.True(t, started)
	assert.Equal(t, 1, day)
	h, err := e.Habit("a")
	require.NoError(t, err)
	assert.False(t, h.Tasks[0].Completed)
	assert.Empty(t, e.XPLog())
}

func TestObserver_ReceivesEventsAndSummary(t *testing.T) {
	var got [][]models.RewardEvent
	var last Summary
	e := newTestEngine(WithObserver(ObserverFunc(func(events []models.RewardEvent, s Summary) {
		got = append(got, events)
		last = s
	})))

	h, _ := e.CreateHabit(habitDef("Reading", 100))
	_, err := e.CompleteTask(h.ID, h.Tasks[0].ID, 1)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Empty(t, got[0])
	assert.Len(t, got[1], 3)
	assert.Equal(t, 200, last.XPTotal)
	assert.Equal(t, 3, last.Level)
	assert.Equal(t, 1, last.GlobalStreak)
	assert.Equal(t, 1, last.Slots.Used)
}

func TestEngine_ConcurrentToggles(t *testing.T) {
	e := New()
	h, err := e.CreateHabit(habitDef("Reading", 10, 10, 10, 10, 10))
	require.NoError(t, err)
	_, err = e.ResetDay(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, task := range h.Tasks {
		wg.Add(1)
		go func(taskID string) {
			defer wg.Done()
			_, err := e.CompleteTask(h.ID, taskID, 1)
			assert.NoError(t, err)
		}(task.ID)
	}
	wg.Wait()

	assert.Equal(t, 150, e.XPTotal())
	assert.Equal(t, 1, e.Streak(h.ID))
}

func eventKinds(events []models.RewardEvent) []models.RewardKind {
	kinds := make([]models.RewardKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}
