package engine

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

func TestXPAccount_Award(t *testing.T) {
	a := NewXPAccount(func() time.Time { return fixedNow })

	if _, err := a.Award(0, models.XPSourceTask, "h", 1); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for zero award, got %v", err)
	}
	if _, err := a.Award(-5, models.XPSourceTask, "h", 1); err == nil {
		t.Error("expected error for negative award")
	}

	award, err := a.Award(30, models.XPSourceTask, "h", 1)
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if !award.Timestamp.Equal(fixedNow) || award.Day != 1 {
		t.Errorf("unexpected award %+v", award)
	}
	a.Award(50, models.XPSourceHabitBonus, "h", 1)

	if a.Total() != 80 {
		t.Errorf("Total = %d, want 80", a.Total())
	}
	log := a.Log()
	if len(log) != 2 {
		t.Fatalf("log length = %d, want 2", len(log))
	}
	log[0].Amount = 1000
	if a.Log()[0].Amount != 30 {
		t.Error("Log should return a copy")
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{-10, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.total); got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
