package constants

const (
	SettingTimezone     = "timezone"
	SettingRolloverHour = "rollover_hour"

	DefaultTimezone     = "Local" // Use system local timezone by default
	DefaultRolloverHour = 0       // hour of the day at which a new day index starts
)
