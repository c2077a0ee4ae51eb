package models

// Settings represents application-wide settings stored alongside the game state
type Settings struct {
	Timezone     string `json:"timezone"`      // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	RolloverHour int    `json:"rollover_hour"` // hour (0-23) at which a new day starts, e.g. 4 counts 01:00 as the previous day
}
