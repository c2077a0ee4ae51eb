package models

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingRolloverHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.RolloverHour); err != nil {
				return Settings{}, fmt.Errorf("parsing rollover_hour: %w", err)
			}
			if settings.RolloverHour < 0 || settings.RolloverHour > 23 {
				return Settings{}, fmt.Errorf("rollover_hour must be between 0 and 23, got %d", settings.RolloverHour)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:     settings.Timezone,
		constants.SettingRolloverHour: fmt.Sprintf("%d", settings.RolloverHour),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}
