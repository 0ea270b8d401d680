package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/storage"
)

// OutputInput creates an output under an outcome.
type OutputInput struct {
	OutcomeID        string
	Description      string
	FrequencyType    constants.FrequencyType
	FrequencyValue   int
	ScheduleWeekdays []time.Weekday
	IsStarter        bool
	SortOrder        int
}

func (in OutputInput) validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return apperrors.Validationf("output description is required")
	}
	if _, ok := constants.ParseFrequencyType(string(in.FrequencyType)); !ok {
		return apperrors.Validationf("unknown frequency type %q", in.FrequencyType)
	}
	if in.FrequencyValue < 0 {
		return apperrors.Validationf("frequency value must not be negative")
	}
	for _, d := range in.ScheduleWeekdays {
		if d < time.Sunday || d > time.Saturday {
			return apperrors.Validationf("weekday %d is out of range 0..6", d)
		}
	}
	return nil
}

func (r *Repository) CreateOutput(ctx context.Context, input OutputInput) (models.Output, error) {
	if err := input.validate(); err != nil {
		return models.Output{}, err
	}
	if _, err := r.GetOutcome(ctx, input.OutcomeID); err != nil {
		return models.Output{}, err
	}

	value := input.FrequencyValue
	if value == 0 && input.FrequencyType != constants.FrequencyFlexibleWeekly {
		value = 1
	}
	row := storage.Row{
		"outcome_id":      input.OutcomeID,
		"description":     strings.TrimSpace(input.Description),
		"frequency_type":  input.FrequencyType,
		"frequency_value": value,
		"is_starter":      input.IsStarter,
		"status":          constants.StatusActive,
		"sort_order":      input.SortOrder,
		"created_at":      r.now(),
		"updated_at":      r.now(),
	}
	if len(input.ScheduleWeekdays) > 0 {
		row["schedule_weekdays"] = EncodeWeekdays(input.ScheduleWeekdays)
	}

	inserted, err := r.store.Insert(ctx, storage.Outputs, row)
	if err != nil {
		return models.Output{}, fmt.Errorf("failed to create output: %w", err)
	}
	return outputFromRow(inserted)
}

// ListOutputs returns the outputs of the given outcomes ordered by sort
// order, then creation time.
func (r *Repository) ListOutputs(ctx context.Context, outcomeIDs []string, activeOnly bool) ([]models.Output, error) {
	if len(outcomeIDs) == 0 {
		return nil, nil
	}
	q := storage.From(storage.Outputs).Where(storage.In("outcome_id", outcomeIDs)).Order("created_at", false)
	if activeOnly {
		q = q.Where(storage.Eq("status", constants.StatusActive))
	}
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	outputs, err := mapRows(rows, outputFromRow)
	if err != nil {
		return nil, err
	}
	sortOutputs(outputs)
	return outputs, nil
}

// ListAllOutputs returns every output regardless of outcome or status.
func (r *Repository) ListAllOutputs(ctx context.Context) ([]models.Output, error) {
	rows, err := r.store.Select(ctx, storage.From(storage.Outputs).Order("created_at", false))
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	return mapRows(rows, outputFromRow)
}

func sortOutputs(outputs []models.Output) {
	sort.SliceStable(outputs, func(i, j int) bool {
		return outputs[i].SortOrder < outputs[j].SortOrder
	})
}

func (r *Repository) GetOutput(ctx context.Context, id string) (models.Output, error) {
	row, err := r.selectOne(ctx, storage.From(storage.Outputs).Where(byID(id)...), "output", id)
	if err != nil {
		return models.Output{}, err
	}
	return outputFromRow(row)
}

// SetOutputStatus pauses, resumes or archives an output.
func (r *Repository) SetOutputStatus(ctx context.Context, id, status string) error {
	if !validStatus(status) {
		return apperrors.Validationf("unknown status %q", status)
	}
	n, err := r.store.Update(ctx, storage.Outputs, byID(id), storage.Row{"status": status})
	if err != nil {
		return fmt.Errorf("failed to update output: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("output %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
