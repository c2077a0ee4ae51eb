// Package engine implements the progression and reward rules: task XP,
// completion bonuses, streaks, habit slots and mastery badges.
package engine

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
)

// Summary is a compact view of the player's standing
type Summary struct {
	Day          int                   `json:"day"`
	DayStarted   bool                  `json:"day_started"`
	XPTotal      int                   `json:"xp_total"`
	Level        int                   `json:"level"`
	GlobalStreak int                   `json:"global_streak"`
	Slots        models.SlotAllocation `json:"slots"`
}

// Observer receives the reward events of every mutating operation together
// with the summary after the operation. Observers run under the engine lock
// and must not call back into the engine.
type Observer interface {
	Observe(events []models.RewardEvent, summary Summary)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(events []models.RewardEvent, summary Summary)

// Observe calls f
func (f ObserverFunc) Observe(events []models.RewardEvent, summary Summary) {
	f(events, summary)
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the wall clock used for award and badge timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how habit and task ids are generated
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithObserver registers an observer
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// Engine coordinates the ledger and the trackers. All exported methods are
// safe for concurrent use; each one applies completely or not at all.
type Engine struct {
	mu sync.Mutex

	ledger  *TaskLedger
	xp      *XPAccount
	streaks *StreakTracker
	slots   SlotAllocator
	mastery *MasteryTracker

	day        int
	dayStarted bool
	markers    map[models.DayMarker]bool

	observers []Observer
	now       func() time.Time
	newID     func() string
}

// New creates an engine with no habits and no XP
func New(opts ...Option) *Engine {
	e := &Engine{
		ledger:  NewTaskLedger(),
		streaks: NewStreakTracker(),
		slots:   NewSlotAllocator(),
		markers: make(map[models.DayMarker]bool),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.xp = NewXPAccount(e.now)
	e.mastery = NewMasteryTracker(e.now)
	return e
}

// FromSnapshot rebuilds an engine from persisted state
func FromSnapshot(s models.Snapshot, opts ...Option) (*Engine, error) {
	e := New(opts...)
	if err := e.Restore(s); err != nil {
		return nil, err
	}
	return e, nil
}

// AddObserver registers an observer after construction
func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// CreateHabit validates a definition and adds the habit if a slot is free
func (e *Engine) CreateHabit(def models.HabitDefinition) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := def.Validate(); err != nil {
		return models.Habit{}, err
	}
	if err := e.slots.TryAddHabit(e.ledger.ActiveCount(), e.globalStreak()); err != nil {
		return models.Habit{}, err
	}

	source := def.Source
	if source == "" {
		source = models.SourceManual
	}
	h := models.Habit{
		ID:        e.newID(),
		Name:      strings.TrimSpace(def.Name),
		Icon:      def.Icon,
		Color:     def.Color,
		Source:    source,
		Tasks:     e.buildTasks(def.Tasks),
		CreatedAt: e.now(),
	}
	e.ledger.Add(h)
	logger.Debug("Habit created", "habit_id", h.ID, "name", h.Name, "tasks", len(h.Tasks))
	e.notify(nil)
	return h.Clone(), nil
}

// DeleteHabit removes a habit with its streak and mastery state, freeing its
// slot. When the deleted habit was the only incomplete one of the open day,
// the remaining habits earn the daily bonus right away.
func (e *Engine) DeleteHabit(habitID string) ([]models.RewardEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ledger.Has(habitID) {
		return nil, apperrors.NotFound("habit %q", habitID)
	}
	prevSlots := e.slots.AvailableSlots(e.globalStreak())
	e.ledger.Remove(habitID)
	e.streaks.Remove(habitID)
	e.mastery.Remove(habitID)
	for m := range e.markers {
		if m.HabitID == habitID {
			delete(e.markers, m)
		}
	}

	var events []models.RewardEvent
	if e.dayStarted {
		events = append(events, e.settleDailyBonus(e.day)...)
		events = append(events, e.slotEvent(prevSlots, e.day)...)
	}
	logger.Debug("Habit deleted", "habit_id", habitID, "events", len(events))
	e.notify(events)
	return events, nil
}

// UpdateHabitDetails changes the name, icon and color of a habit. Progress is kept.
func (e *Engine) UpdateHabitDetails(habitID, name string, icon models.Icon, color models.Color) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.ledger.Habit(habitID)
	if !ok {
		return models.Habit{}, apperrors.NotFound("habit %q", habitID)
	}
	def := models.HabitDefinition{Name: name, Icon: icon, Color: color, Source: h.Source}
	for _, t := range h.Tasks {
		def.Tasks = append(def.Tasks, models.TaskDefinition{Text: t.Text, XPValue: t.XPValue})
	}
	if len(def.Tasks) == 0 {
		// inactive habits have no tasks to validate
		def.Tasks = []models.TaskDefinition{{Text: "-", XPValue: constants.MinTaskXP}}
	}
	if err := def.Validate(); err != nil {
		return models.Habit{}, err
	}
	if err := e.ledger.SetDetails(habitID, strings.TrimSpace(name), icon, color); err != nil {
		return models.Habit{}, err
	}
	updated, _ := e.ledger.Habit(habitID)
	return updated, nil
}

// EditHabitTasks replaces the task list of a habit. When the habit has a
// running streak or an open mastery window the edit is refused unless
// confirmed, and a confirmed edit resets both. An empty list makes the habit
// inactive.
func (e *Engine) EditHabitTasks(habitID string, tasks []models.TaskDefinition, confirmed bool) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.ledger.Habit(habitID)
	if !ok {
		return models.Habit{}, apperrors.NotFound("habit %q", habitID)
	}
	if err := models.ValidateTasks(tasks, 0); err != nil {
		return models.Habit{}, err
	}
	if !h.IsActive() && len(tasks) > 0 {
		if err := e.slots.TryAddHabit(e.ledger.ActiveCount(), e.globalStreak()); err != nil {
			return models.Habit{}, err
		}
	}

	mastery := e.mastery.State(habitID)
	atStake := e.streaks.Current(habitID) > 0 || (mastery.InProgress() && mastery.DayCount > 0)
	if atStake && !confirmed {
		return models.Habit{}, apperrors.ConfirmationRequired(
			"editing %q resets its %d-day streak and %s progress (%d days)",
			h.Name, e.streaks.Current(habitID), mastery.Tier.Label(), mastery.DayCount)
	}

	if err := e.ledger.ReplaceTasks(habitID, e.buildTasks(tasks)); err != nil {
		return models.Habit{}, err
	}
	for m := range e.markers {
		if m.Kind == models.MarkerTaskXP && m.HabitID == habitID {
			delete(e.markers, m)
		}
	}
	if atStake {
		e.streaks.Reset(habitID)
		e.mastery.ResetProgress(habitID)
	}
	logger.Debug("Habit tasks edited", "habit_id", habitID, "tasks", len(tasks), "progress_reset", atStake)
	e.notify(nil)
	updated, _ := e.ledger.Habit(habitID)
	return updated, nil
}

// CompleteTask toggles a task on the given day and applies every reward the
// new state earns. A day later than the current one closes the current day
// first. Unchecking a task returns no events and takes nothing back.
func (e *Engine) CompleteTask(habitID, taskID string, day int) ([]models.RewardEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ledger.Has(habitID) {
		return nil, apperrors.NotFound("habit %q", habitID)
	}
	h, _ := e.ledger.Habit(habitID)
	idx := h.TaskIndex(taskID)
	if idx < 0 {
		return nil, apperrors.NotFound("task %q in habit %q", taskID, h.Name)
	}
	// every check that can fail runs before the day advances or the task flips,
	// so the awards below always succeed
	if xp := h.Tasks[idx].XPValue; xp <= 0 {
		return nil, apperrors.Validation("task %q in habit %q has no xp value", taskID, h.Name)
	}

	events, err := e.advanceTo(day)
	if err != nil {
		return nil, err
	}
	prevSlots := e.slots.AvailableSlots(e.globalStreak())

	res, err := e.ledger.Toggle(habitID, taskID)
	if err != nil {
		return nil, err
	}
	if !res.NowCompleted {
		logger.Debug("Task unchecked", "habit_id", habitID, "task_id", taskID, "day", day)
		e.notify(events)
		return events, nil
	}
	h, _ = e.ledger.Habit(habitID)

	taskMarker := models.DayMarker{Kind: models.MarkerTaskXP, HabitID: habitID, TaskID: taskID, Day: day}
	if !e.markers[taskMarker] {
		_, _ = e.xp.Award(res.Task.XPValue, models.XPSourceTask, habitID, day)
		e.markers[taskMarker] = true
		events = append(events, models.RewardEvent{
			Kind: models.RewardTaskXP, Day: day, HabitID: habitID, HabitName: h.Name,
			TaskID: taskID, Amount: res.Task.XPValue,
		})
	}

	if e.ledger.IsHabitComplete(habitID) {
		habitMarker := models.DayMarker{Kind: models.MarkerHabitBonus, HabitID: habitID, Day: day}
		if !e.markers[habitMarker] {
			_, _ = e.xp.Award(constants.HabitCompletionBonusXP, models.XPSourceHabitBonus, habitID, day)
			e.markers[habitMarker] = true
			events = append(events, models.RewardEvent{
				Kind: models.RewardHabitBonus, Day: day, HabitID: habitID, HabitName: h.Name,
				Amount: constants.HabitCompletionBonusXP,
			})
		}
		e.streaks.RecordDayOutcome(habitID, true, day)
		events = append(events, e.recordMasterySuccess(h, day)...)
	}

	events = append(events, e.settleDailyBonus(day)...)
	events = append(events, e.slotEvent(prevSlots, day)...)
	logger.Debug("Task completed", "habit_id", habitID, "task_id", taskID, "day", day, "events", len(events))
	e.notify(events)
	return events, nil
}

// ToggleTask is an alias of CompleteTask
func (e *Engine) ToggleTask(habitID, taskID string, day int) ([]models.RewardEvent, error) {
	return e.CompleteTask(habitID, taskID, day)
}

// ResetDay closes the current day and opens the given one. Incomplete habits
// lose their streak and mastery window, skipped days count as missed, and all
// tasks start the new day unchecked. Resetting to the current day does nothing.
func (e *Engine) ResetDay(day int) ([]models.RewardEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	events, err := e.advanceTo(day)
	if err != nil {
		return nil, err
	}
	e.notify(events)
	return events, nil
}

// PushToPrestige opens the Prestige window of a Gold habit
func (e *Engine) PushToPrestige(habitID string) ([]models.RewardEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.ledger.Habit(habitID)
	if !ok {
		return nil, apperrors.NotFound("habit %q", habitID)
	}
	change, err := e.mastery.PushToPrestige(habitID)
	if err != nil {
		return nil, err
	}
	events := []models.RewardEvent{{
		Kind: models.RewardMasteryTierShift, Day: e.day, HabitID: habitID, HabitName: h.Name,
		Tier: change.To, PreviousTier: change.From,
	}}
	logger.Debug("Habit pushed to prestige", "habit_id", habitID)
	e.notify(events)
	return events, nil
}

// Habits returns copies of all habits in creation order
func (e *Engine) Habits() []models.Habit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Habits()
}

// Habit returns a copy of one habit
func (e *Engine) Habit(habitID string) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.ledger.Habit(habitID)
	if !ok {
		return models.Habit{}, apperrors.NotFound("habit %q", habitID)
	}
	return h, nil
}

// XPTotal returns the accumulated XP
func (e *Engine) XPTotal() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.xp.Total()
}

// XPLog returns the award log, oldest first
func (e *Engine) XPLog() []models.XPAward {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.xp.Log()
}

// Streak returns the current streak of a habit
func (e *Engine) Streak(habitID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streaks.Current(habitID)
}

// GlobalStreak returns the all-habits streak
func (e *Engine) GlobalStreak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.globalStreak()
}

// Mastery returns the mastery state of a habit
func (e *Engine) Mastery(habitID string) models.MasteryState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mastery.State(habitID)
}

// Slots returns the current slot allocation
func (e *Engine) Slots() models.SlotAllocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots.Allocation(e.ledger.ActiveCount(), e.globalStreak())
}

// CanAddHabit reports whether a new habit would fit
func (e *Engine) CanAddHabit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots.CanAddHabit(e.ledger.ActiveCount(), e.globalStreak())
}

// Day returns the current day index and whether a day has been opened
func (e *Engine) Day() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.day, e.dayStarted
}

// Summary returns the player's standing
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary()
}

// Snapshot captures the complete engine state for persistence
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	markers := make([]models.DayMarker, 0, len(e.markers))
	for m := range e.markers {
		markers = append(markers, m)
	}
	sortMarkers(markers)
	return models.Snapshot{
		Day:        e.day,
		DayStarted: e.dayStarted,
		Habits:     e.ledger.Habits(),
		XPLog:      e.xp.Log(),
		Streaks:    e.streaks.States(),
		Mastery:    e.mastery.States(),
		Markers:    markers,
		UpdatedAt:  e.now(),
	}
}

// Restore replaces the engine state with a snapshot. Habits, tasks and awards
// must satisfy the rules the mutating operations enforce. On error the engine
// is unchanged.
func (e *Engine) Restore(s models.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ledger := NewTaskLedger()
	ids := make(map[string]bool, len(s.Habits))
	for _, h := range s.Habits {
		if h.ID == "" || h.ID == constants.GlobalStreakScope {
			return apperrors.Validation("invalid habit id %q in snapshot", h.ID)
		}
		if ids[h.ID] {
			return apperrors.Validation("duplicate habit id %q in snapshot", h.ID)
		}
		if err := h.Validate(); err != nil {
			return err
		}
		ids[h.ID] = true
		ledger.Add(h)
	}
	// habits are never evicted when the global streak drops, so only the hard ceiling applies
	if n := ledger.ActiveCount(); n > e.slots.Max {
		return apperrors.Validation("%d active habits in snapshot, at most %d slots exist", n, e.slots.Max)
	}
	for _, a := range s.XPLog {
		if a.Amount <= 0 {
			return apperrors.Validation("xp award of %d on day %d in snapshot is not positive", a.Amount, a.Day)
		}
	}
	for _, st := range s.Streaks {
		if st.Count < 0 {
			return apperrors.Validation("negative streak for %q in snapshot", st.Scope)
		}
	}

	mastery := NewMasteryTracker(e.now)
	if err := mastery.restore(s.Mastery); err != nil {
		return err
	}
	streaks := NewStreakTracker()
	streaks.restore(s.Streaks)
	xp := NewXPAccount(e.now)
	xp.restore(s.XPLog)

	markers := make(map[models.DayMarker]bool, len(s.Markers))
	for _, m := range s.Markers {
		markers[m] = true
	}

	e.ledger = ledger
	e.streaks = streaks
	e.mastery = mastery
	e.xp = xp
	e.markers = markers
	e.day = s.Day
	e.dayStarted = s.DayStarted
	return nil
}

func (e *Engine) globalStreak() int {
	return e.streaks.Current(constants.GlobalStreakScope)
}

func (e *Engine) summary() Summary {
	return Summary{
		Day:          e.day,
		DayStarted:   e.dayStarted,
		XPTotal:      e.xp.Total(),
		Level:        e.xp.Level(),
		GlobalStreak: e.globalStreak(),
		Slots:        e.slots.Allocation(e.ledger.ActiveCount(), e.globalStreak()),
	}
}

func (e *Engine) notify(events []models.RewardEvent) {
	if len(e.observers) == 0 {
		return
	}
	s := e.summary()
	for _, o := range e.observers {
		o.Observe(events, s)
	}
}

func (e *Engine) buildTasks(defs []models.TaskDefinition) []models.Task {
	tasks := make([]models.Task, 0, len(defs))
	for _, d := range defs {
		tasks = append(tasks, models.Task{
			ID:      e.newID(),
			Text:    strings.TrimSpace(d.Text),
			XPValue: d.XPValue,
		})
	}
	return tasks
}

// advanceTo moves the engine to day, closing the current day when day is later.
func (e *Engine) advanceTo(day int) ([]models.RewardEvent, error) {
	if !e.dayStarted {
		e.day = day
		e.dayStarted = true
		return nil, nil
	}
	if day < e.day {
		return nil, apperrors.Validation("day %d is earlier than the current day %d", day, e.day)
	}
	if day == e.day {
		return nil, nil
	}
	return e.closeDay(day), nil
}

// closeDay records the outcome of the current day for every scope, treats any
// days between it and next as missed, and opens next with all tasks unchecked.
func (e *Engine) closeDay(next int) []models.RewardEvent {
	closing := e.day
	prevSlots := e.slots.AvailableSlots(e.globalStreak())
	var events []models.RewardEvent

	// the state at day end decides, even if a task was unchecked after its rewards were paid
	for _, id := range e.ledger.ActiveHabitIDs() {
		if e.ledger.IsHabitComplete(id) {
			e.streaks.RecordDayOutcome(id, true, closing)
			h, _ := e.ledger.Habit(id)
			events = append(events, e.recordMasterySuccess(h, closing)...)
		} else {
			e.streaks.Reset(id)
			e.mastery.RecordMiss(id)
		}
	}
	if e.ledger.AllActiveComplete() {
		e.streaks.RecordDayOutcome(constants.GlobalStreakScope, true, closing)
	} else {
		e.streaks.Reset(constants.GlobalStreakScope)
	}

	if next > closing+1 {
		missed := next - 1
		for _, id := range e.ledger.ActiveHabitIDs() {
			e.streaks.RecordDayOutcome(id, false, missed)
			e.mastery.RecordMiss(id)
		}
		e.streaks.RecordDayOutcome(constants.GlobalStreakScope, false, missed)
	}

	e.ledger.ResetAll()
	e.markers = make(map[models.DayMarker]bool)
	e.day = next

	events = append(events, e.slotEvent(prevSlots, closing)...)
	logger.Debug("Day closed", "day", closing, "next", next, "global_streak", e.globalStreak())
	return events
}

func (e *Engine) recordMasterySuccess(h models.Habit, day int) []models.RewardEvent {
	change := e.mastery.RecordSuccess(h.ID, day)
	// starting the first window is not a badge change worth announcing
	if !change.Changed() || change.From == models.TierNone {
		return nil
	}
	return []models.RewardEvent{{
		Kind: models.RewardMasteryTierShift, Day: day, HabitID: h.ID, HabitName: h.Name,
		Tier: change.To, PreviousTier: change.From,
	}}
}

// settleDailyBonus pays the daily bonus once per day and extends the global
// streak when every active habit is complete.
func (e *Engine) settleDailyBonus(day int) []models.RewardEvent {
	if !e.ledger.AllActiveComplete() {
		return nil
	}
	var events []models.RewardEvent
	dailyMarker := models.DayMarker{Kind: models.MarkerDailyBonus, Day: day}
	if !e.markers[dailyMarker] {
		// a positive constant amount cannot be rejected
		_, _ = e.xp.Award(constants.DailyAllHabitsBonusXP, models.XPSourceDailyBonus, "", day)
		e.markers[dailyMarker] = true
		events = append(events, models.RewardEvent{
			Kind: models.RewardDailyBonus, Day: day, Amount: constants.DailyAllHabitsBonusXP,
		})
	}
	e.streaks.RecordDayOutcome(constants.GlobalStreakScope, true, day)
	return events
}

func (e *Engine) slotEvent(prevSlots, day int) []models.RewardEvent {
	now := e.slots.AvailableSlots(e.globalStreak())
	if now <= prevSlots {
		return nil
	}
	return []models.RewardEvent{{
		Kind: models.RewardSlotUnlocked, Day: day, Slots: now, PreviousSlots: prevSlots,
	}}
}
