// Package repository maps the row store onto the domain models: the typed
// queries and mutations the dashboard and CLI commands are built from.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/storage"
)

type Repository struct {
	store storage.Provider
	now   func() time.Time
}

func New(store storage.Provider) *Repository {
	return &Repository{store: store, now: time.Now}
}

// WithClock returns a copy of r that uses now for generated timestamps.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	c := *r
	c.now = now
	return &c
}

// Store exposes the underlying provider.
func (r *Repository) Store() storage.Provider {
	return r.store
}

func (r *Repository) selectOne(ctx context.Context, q storage.Query, what, id string) (storage.Row, error) {
	rows, err := r.store.Select(ctx, q.Take(1))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", what, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
	}
	return rows[0], nil
}

func byID(id string) []storage.Filter {
	return []storage.Filter{storage.Eq("id", id)}
}

func rowTimes(row storage.Row) (created, updated time.Time, err error) {
	if created, err = row.Time("created_at"); err != nil {
		return
	}
	updated, err = row.Time("updated_at")
	return
}

func outcomeFromRow(row storage.Row) (models.Outcome, error) {
	created, updated, err := rowTimes(row)
	if err != nil {
		return models.Outcome{}, err
	}
	return models.Outcome{
		ID:        row.String("id"),
		Title:     row.String("title"),
		Category:  row.String("category"),
		Status:    row.String("status"),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func outputFromRow(row storage.Row) (models.Output, error) {
	created, updated, err := rowTimes(row)
	if err != nil {
		return models.Output{}, err
	}
	weekdays, err := DecodeWeekdays(row.String("schedule_weekdays"))
	if err != nil {
		return models.Output{}, fmt.Errorf("output %s: %w", row.String("id"), err)
	}
	return models.Output{
		ID:               row.String("id"),
		OutcomeID:        row.String("outcome_id"),
		Description:      row.String("description"),
		FrequencyType:    constants.FrequencyType(row.String("frequency_type")),
		FrequencyValue:   row.Int("frequency_value"),
		ScheduleWeekdays: weekdays,
		IsStarter:        row.Bool("is_starter"),
		Status:           row.String("status"),
		SortOrder:        row.Int("sort_order"),
		CreatedAt:        created,
		UpdatedAt:        updated,
	}, nil
}

func actionLogFromRow(row storage.Row) (models.ActionLog, error) {
	created, updated, err := rowTimes(row)
	if err != nil {
		return models.ActionLog{}, err
	}
	return models.ActionLog{
		ID:         row.String("id"),
		OutputID:   row.String("output_id"),
		ActionDate: row.String("action_date"),
		Completed:  row.Int("completed"),
		Total:      row.Int("total"),
		Notes:      row.OptString("notes"),
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

func skillFromRow(row storage.Row) (models.SkillItem, error) {
	created, updated, err := rowTimes(row)
	if err != nil {
		return models.SkillItem{}, err
	}
	suppressed, err := row.OptTime("graduation_suppressed_at")
	if err != nil {
		return models.SkillItem{}, err
	}
	return models.SkillItem{
		ID:                     row.String("id"),
		OutcomeID:              row.String("outcome_id"),
		Name:                   row.String("name"),
		Stage:                  constants.SkillStage(row.String("stage")),
		TargetLabel:            row.OptString("target_label"),
		TargetValue:            row.OptFloat("target_value"),
		InitialConfidence:      row.Int("initial_confidence"),
		GraduationSuppressedAt: suppressed,
		CreatedAt:              created,
		UpdatedAt:              updated,
	}, nil
}

func skillLogFromRow(row storage.Row) (models.SkillLog, error) {
	created, updated, err := rowTimes(row)
	if err != nil {
		return models.SkillLog{}, err
	}
	loggedAt, err := row.Time("logged_at")
	if err != nil {
		return models.SkillLog{}, err
	}
	return models.SkillLog{
		ID:           row.String("id"),
		SkillItemID:  row.String("skill_item_id"),
		ActionLogID:  row.OptString("action_log_id"),
		Confidence:   row.Int("confidence"),
		TargetResult: row.OptFloat("target_result"),
		LoggedAt:     loggedAt,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}, nil
}

func mapRows[T any](rows []storage.Row, conv func(storage.Row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := conv(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeWeekdays stores weekdays as a comma separated list of 0..6.
func EncodeWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// DecodeWeekdays parses the stored weekday list. Empty means no days.
func DecodeWeekdays(value string) ([]time.Weekday, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", p)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, storage.ErrUniqueViolation)
}

// skillMutationError reports unique violations on skill_items as
// ErrDuplicateSkillName. Ids are generated, so the live-name index is the
// only one a write can collide with.
func skillMutationError(err error) error {
	if isUniqueViolation(err) {
		logger.Debug("Skill write hit a unique index", "error", err)
		return apperrors.ErrDuplicateSkillName
	}
	return err
}
