package models

import "time"

// XPSource categorizes how XP was earned
type XPSource string

const (
	XPSourceTask       XPSource = "task"
	XPSourceHabitBonus XPSource = "habit_completion_bonus"
	XPSourceDailyBonus XPSource = "daily_all_bonus"
)

// XPAward is one immutable entry of the XP log
type XPAward struct {
	Source    XPSource  `json:"source"`
	Amount    int       `json:"amount"`
	HabitID   string    `json:"habit_id,omitempty"`
	Day       int       `json:"day"`
	Timestamp time.Time `json:"timestamp"`
}

// StreakState is the consecutive-day counter of a habit or of the global scope
type StreakState struct {
	Scope           string `json:"scope"`
	Count           int    `json:"count"`
	LastAdvancedDay *int   `json:"last_advanced_day,omitempty"` // nil until the next success after a reset
}

// MasteryTier is the badge stage of a habit
type MasteryTier string

const (
	TierNone               MasteryTier = "none"
	TierInProgressGold     MasteryTier = "in_progress_gold"
	TierGold               MasteryTier = "gold"
	TierInProgressPrestige MasteryTier = "in_progress_prestige"
	TierPrestige           MasteryTier = "prestige"
)

var tierRank = map[MasteryTier]int{
	TierNone:               0,
	TierInProgressGold:     1,
	TierGold:               2,
	TierInProgressPrestige: 3,
	TierPrestige:           4,
}

// Rank orders tiers; tiers only ever move to a higher rank
func (t MasteryTier) Rank() int {
	return tierRank[t]
}

// Valid reports whether t is a known tier
func (t MasteryTier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Label is the display name of the tier
func (t MasteryTier) Label() string {
	switch t {
	case TierInProgressGold:
		return "Working toward Gold"
	case TierGold:
		return "Gold"
	case TierInProgressPrestige:
		return "Working toward Prestige"
	case TierPrestige:
		return "Prestige"
	default:
		return "No badge"
	}
}

// MasteryState tracks a habit's progress toward its Gold and Prestige badges
type MasteryState struct {
	HabitID             string      `json:"habit_id"`
	Tier                MasteryTier `json:"tier"`
	DayCount            int         `json:"day_count"`
	GoldCompletedAt     *time.Time  `json:"gold_completed_at,omitempty"`
	PrestigeCompletedAt *time.Time  `json:"prestige_completed_at,omitempty"`
	LastAdvancedDay     *int        `json:"last_advanced_day,omitempty"`
}

// HasGold reports whether the Gold badge was earned; it is never lost
func (m MasteryState) HasGold() bool {
	return m.Tier.Rank() >= TierGold.Rank()
}

// InProgress reports whether the habit is inside a Gold or Prestige window
func (m MasteryState) InProgress() bool {
	return m.Tier == TierInProgressGold || m.Tier == TierInProgressPrestige
}

// SlotAllocation is the current habit capacity
type SlotAllocation struct {
	Base      int `json:"base"`
	Bonus     int `json:"bonus"`
	Max       int `json:"max"`
	Available int `json:"available"`
	Used      int `json:"used"`
}

// Free returns the number of habits that can still be added
func (s SlotAllocation) Free() int {
	if s.Used >= s.Available {
		return 0
	}
	return s.Available - s.Used
}
