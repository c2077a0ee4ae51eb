package engine

import (
	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

// SlotAllocator derives habit capacity from the global streak
type SlotAllocator struct {
	Base      int
	Bonus     int
	Max       int
	Threshold int
}

// NewSlotAllocator returns an allocator with the default capacity rules
func NewSlotAllocator() SlotAllocator {
	return SlotAllocator{
		Base:      constants.BaseSlots,
		Bonus:     constants.BonusSlots,
		Max:       constants.MaxSlots,
		Threshold: constants.BonusSlotStreakDays,
	}
}

// AvailableSlots returns min(Max, Base + Bonus if the streak reached the threshold)
func (a SlotAllocator) AvailableSlots(globalStreak int) int {
	n := a.Base
	if globalStreak >= a.Threshold {
		n += a.Bonus
	}
	if n > a.Max {
		n = a.Max
	}
	return n
}

// CanAddHabit reports whether one more habit fits
func (a SlotAllocator) CanAddHabit(used, globalStreak int) bool {
	return used < a.AvailableSlots(globalStreak)
}

// TryAddHabit returns a slot limit error when no slot is free
func (a SlotAllocator) TryAddHabit(used, globalStreak int) error {
	if !a.CanAddHabit(used, globalStreak) {
		return apperrors.SlotLimit(used, a.AvailableSlots(globalStreak))
	}
	return nil
}

// Allocation summarizes capacity for display
func (a SlotAllocator) Allocation(used, globalStreak int) models.SlotAllocation {
	return models.SlotAllocation{
		Base:      a.Base,
		Bonus:     a.Bonus,
		Max:       a.Max,
		Available: a.AvailableSlots(globalStreak),
		Used:      used,
	}
}
