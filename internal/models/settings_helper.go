package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/maestro/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{StartOfWeek: -1}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingStartOfWeek:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing start_of_week: %w", err)
			}
			if n < 0 || n > 6 {
				return Settings{}, fmt.Errorf("parsing start_of_week: %d is not a weekday (0-6)", n)
			}
			settings.StartOfWeek = n
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:    settings.Timezone,
		constants.SettingStartOfWeek: strconv.Itoa(settings.StartOfWeek),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// A negative StartOfWeek marks the value as missing.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.StartOfWeek < 0 || settings.StartOfWeek > 6 {
		settings.StartOfWeek = constants.DefaultStartOfWeek
	}
}

// DefaultSettings returns the settings used when none have been saved.
func DefaultSettings() Settings {
	s := Settings{StartOfWeek: -1}
	ApplyDefaultSettings(&s)
	return s
}
