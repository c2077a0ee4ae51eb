package engine

import (
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

// XPAccount accumulates XP and keeps an append-only log of awards
type XPAccount struct {
	total int
	log   []models.XPAward
	now   func() time.Time
}

// NewXPAccount creates an empty account
func NewXPAccount(now func() time.Time) *XPAccount {
	if now == nil {
		now = time.Now
	}
	return &XPAccount{now: now}
}

// Award appends an award to the log. Non-positive amounts are rejected.
func (a *XPAccount) Award(amount int, source models.XPSource, habitID string, day int) (models.XPAward, error) {
	if amount <= 0 {
		return models.XPAward{}, apperrors.Validation("xp award must be positive, got %d", amount)
	}
	award := models.XPAward{
		Source:    source,
		Amount:    amount,
		HabitID:   habitID,
		Day:       day,
		Timestamp: a.now(),
	}
	a.log = append(a.log, award)
	a.total += amount
	return award, nil
}

// Total returns the running XP total
func (a *XPAccount) Total() int {
	return a.total
}

// Log returns a copy of the award log, oldest first
func (a *XPAccount) Log() []models.XPAward {
	return append([]models.XPAward(nil), a.log...)
}

// Level derives a display level from the total: every XPPerLevel points is one level, starting at 1
func (a *XPAccount) Level() int {
	return LevelFor(a.total)
}

// LevelFor returns the level reached with the given XP total
func LevelFor(total int) int {
	if total < 0 {
		total = 0
	}
	return total/constants.XPPerLevel + 1
}

// restore rebuilds the account from a persisted log
func (a *XPAccount) restore(log []models.XPAward) {
	a.log = append([]models.XPAward(nil), log...)
	a.total = 0
	for _, award := range log {
		a.total += award.Amount
	}
}
