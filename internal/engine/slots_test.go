package engine

import (
	"errors"
	"testing"

	apperrors "github.com/julianstephens/habitquest/internal/errors"
)

func TestSlotAllocator_AvailableSlots(t *testing.T) {
	a := NewSlotAllocator()
	tests := []struct {
		streak int
		want   int
	}{
		{0, 2},
		{1, 2},
		{6, 2},
		{7, 4},
		{8, 4},
		{365, 4},
	}
	for _, tt := range tests {
		if got := a.AvailableSlots(tt.streak); got != tt.want {
			t.Errorf("AvailableSlots(%d) = %d, want %d", tt.streak, got, tt.want)
		}
	}
}

func TestSlotAllocator_NeverExceedsMax(t *testing.T) {
	a := SlotAllocator{Base: 3, Bonus: 5, Max: 4, Threshold: 1}
	if got := a.AvailableSlots(10); got != 4 {
		t.Errorf("AvailableSlots = %d, want cap of 4", got)
	}
}

func TestSlotAllocator_TryAddHabit(t *testing.T) {
	a := NewSlotAllocator()
	tests := []struct {
		name    string
		used    int
		streak  int
		wantErr bool
	}{
		{"empty", 0, 0, false},
		{"one of two", 1, 0, false},
		{"two of two", 2, 0, true},
		{"two of four", 2, 7, false},
		{"four of four", 4, 7, true},
		{"over capacity after streak loss", 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.TryAddHabit(tt.used, tt.streak)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TryAddHabit(%d, %d) error = %v, wantErr %v", tt.used, tt.streak, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrSlotLimitExceeded) {
				t.Errorf("expected ErrSlotLimitExceeded, got %v", err)
			}
			if a.CanAddHabit(tt.used, tt.streak) == tt.wantErr {
				t.Error("CanAddHabit disagrees with TryAddHabit")
			}
		})
	}
}

func TestSlotAllocator_Allocation(t *testing.T) {
	alloc := NewSlotAllocator().Allocation(3, 7)
	if alloc.Available != 4 || alloc.Used != 3 || alloc.Free() != 1 {
		t.Errorf("unexpected allocation %+v", alloc)
	}
	if NewSlotAllocator().Allocation(4, 0).Free() != 0 {
		t.Error("Free should never be negative")
	}
}
