package models

import "fmt"

// RewardKind is the closed set of reward event kinds
type RewardKind string

const (
	RewardTaskXP           RewardKind = "task_xp_awarded"
	RewardHabitBonus       RewardKind = "habit_completion_bonus_awarded"
	RewardDailyBonus       RewardKind = "daily_bonus_awarded"
	RewardSlotUnlocked     RewardKind = "slot_unlocked"
	RewardMasteryTierShift RewardKind = "mastery_tier_changed"
)

// RewardEvent carries everything a caller needs to render a notification
type RewardEvent struct {
	Kind          RewardKind  `json:"kind"`
	Day           int         `json:"day"`
	HabitID       string      `json:"habit_id,omitempty"`
	HabitName     string      `json:"habit_name,omitempty"`
	TaskID        string      `json:"task_id,omitempty"`
	Amount        int         `json:"amount,omitempty"`
	Tier          MasteryTier `json:"tier,omitempty"`
	PreviousTier  MasteryTier `json:"previous_tier,omitempty"`
	Slots         int         `json:"slots,omitempty"`
	PreviousSlots int         `json:"previous_slots,omitempty"`
}

// Message renders the event as a one-line notification
func (e RewardEvent) Message() string {
	switch e.Kind {
	case RewardTaskXP:
		return fmt.Sprintf("+%d XP", e.Amount)
	case RewardHabitBonus:
		return fmt.Sprintf("%s complete! +%d XP bonus", e.HabitName, e.Amount)
	case RewardDailyBonus:
		return fmt.Sprintf("All habits done today! +%d XP bonus", e.Amount)
	case RewardSlotUnlocked:
		return fmt.Sprintf("New habit slots unlocked: %d → %d", e.PreviousSlots, e.Slots)
	case RewardMasteryTierShift:
		return fmt.Sprintf("%s: %s", e.HabitName, e.Tier.Label())
	default:
		return string(e.Kind)
	}
}
