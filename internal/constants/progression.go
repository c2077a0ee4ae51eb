package constants

const (
	// XP rewards
	HabitCompletionBonusXP = 50
	DailyAllHabitsBonusXP  = 50
	XPPerLevel             = 100

	// Task XP bounds
	MinTaskXP = 10
	MaxTaskXP = 100

	// Habit definition limits
	MaxHabitNameLen = 50
	MaxTaskTextLen  = 60
	MinHabitTasks   = 1
	MaxHabitTasks   = 5

	// Slot allocation
	BaseSlots           = 2
	BonusSlots          = 2
	MaxSlots            = 4
	BonusSlotStreakDays = 7
	GlobalStreakScope   = "global"

	// Mastery windows
	GoldWindowDays     = 30
	PrestigeWindowDays = 30
)
