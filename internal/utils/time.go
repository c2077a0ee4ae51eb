package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

// epoch is day 0 of the day index
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// DayIndex returns the number of whole calendar days between 1970-01-01 and t
// as seen in loc. A day does not end at midnight but at rolloverHour, so with a
// rollover of 4 a task checked at 01:30 still counts for the previous day.
func DayIndex(t time.Time, loc *time.Location, rolloverHour int) int {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc).Add(-time.Duration(rolloverHour) * time.Hour)
	// compare calendar dates in UTC so DST shifts cannot produce 23 or 25 hour days
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return int(date.Sub(epoch).Hours() / 24)
}

// TodayIndex returns the day index of now using the timezone and rollover from settings.
func TodayIndex(settings models.Settings, now time.Time) (int, error) {
	loc, err := LoadLocation(settings.Timezone)
	if err != nil {
		return 0, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return DayIndex(now, loc, settings.RolloverHour), nil
}

// DayDate formats a day index as a calendar date (YYYY-MM-DD).
func DayDate(index int) string {
	return epoch.AddDate(0, 0, index).Format(constants.DateFormat)
}

// ParseDayIndex parses a date string (YYYY-MM-DD) into its day index.
func ParseDayIndex(dateStr string) (int, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return 0, fmt.Errorf("invalid date format: %w", err)
	}
	return int(t.Sub(epoch).Hours() / 24), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// ValidateRolloverHour checks that the hour is a valid hour of the day.
func ValidateRolloverHour(hour int) bool {
	return hour >= 0 && hour <= 23
}
