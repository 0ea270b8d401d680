package repository

import (
	"context"
	"fmt"

	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/internal/utils"
)

// GetSettings returns the stored settings with defaults for missing keys.
func (r *Repository) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, err := r.store.Select(ctx, storage.From(storage.Settings))
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	data := make(map[string]string, len(rows))
	for _, row := range rows {
		data[row.String("key")] = row.String("value")
	}
	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// SaveSettings validates and writes every setting key.
func (r *Repository) SaveSettings(ctx context.Context, settings models.Settings) error {
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone %q", settings.Timezone)
	}
	if settings.StartOfWeek < 0 || settings.StartOfWeek > 6 {
		return fmt.Errorf("start_of_week must be between 0 (Sunday) and 6 (Saturday), got %d", settings.StartOfWeek)
	}

	for key, value := range models.SettingsToMap(settings) {
		n, err := r.store.Update(ctx, storage.Settings, []storage.Filter{storage.Eq("key", key)}, storage.Row{"value": value})
		if err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
		if n > 0 {
			continue
		}
		if _, err := r.store.Insert(ctx, storage.Settings, storage.Row{"key": key, "value": value}); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}
