package repository

import (
	"context"
	"fmt"

	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/storage"
)

// ActionLogValues are the mutable fields of an action log.
type ActionLogValues struct {
	Completed int
	Total     int
	Notes     *string
}

func (v ActionLogValues) row() storage.Row {
	return storage.Row{
		"completed": v.Completed,
		"total":     v.Total,
		"notes":     v.Notes,
	}
}

// FetchActionLogsForDate returns the logs of outputIDs on one date.
func (r *Repository) FetchActionLogsForDate(ctx context.Context, outputIDs []string, date string) ([]models.ActionLog, error) {
	if len(outputIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, storage.From(storage.ActionLogs).Where(
		storage.In("output_id", outputIDs),
		storage.Eq("action_date", date),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to load action logs: %w", err)
	}
	return mapRows(rows, actionLogFromRow)
}

// FetchActionLogsInRange returns the logs of outputIDs between start and
// end inclusive, ordered by date.
func (r *Repository) FetchActionLogsInRange(ctx context.Context, outputIDs []string, start, end string) ([]models.ActionLog, error) {
	if len(outputIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, storage.From(storage.ActionLogs).Where(
		storage.In("output_id", outputIDs),
		storage.Gte("action_date", start),
		storage.Lte("action_date", end),
	).Order("action_date", false))
	if err != nil {
		return nil, fmt.Errorf("failed to load action logs: %w", err)
	}
	return mapRows(rows, actionLogFromRow)
}

// FindActionLog returns the log of an output on date, or nil when there is none.
func (r *Repository) FindActionLog(ctx context.Context, outputID, date string) (*models.ActionLog, error) {
	logs, err := r.FetchActionLogsForDate(ctx, []string{outputID}, date)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

func (r *Repository) GetActionLog(ctx context.Context, id string) (models.ActionLog, error) {
	row, err := r.selectOne(ctx, storage.From(storage.ActionLogs).Where(byID(id)...), "action log", id)
	if err != nil {
		return models.ActionLog{}, err
	}
	return actionLogFromRow(row)
}

// GetActionLogs returns the logs with the given ids, in no particular order.
func (r *Repository) GetActionLogs(ctx context.Context, ids []string) ([]models.ActionLog, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, storage.From(storage.ActionLogs).Where(storage.In("id", ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to load action logs: %w", err)
	}
	return mapRows(rows, actionLogFromRow)
}

// InsertActionLog creates the log of outputID on date.
func (r *Repository) InsertActionLog(ctx context.Context, outputID, date string, values ActionLogValues) (models.ActionLog, error) {
	row := values.row()
	row["output_id"] = outputID
	row["action_date"] = date
	row["created_at"] = r.now()
	row["updated_at"] = r.now()

	inserted, err := r.store.Insert(ctx, storage.ActionLogs, row)
	if err != nil {
		return models.ActionLog{}, fmt.Errorf("failed to save action log: %w", err)
	}
	return actionLogFromRow(inserted)
}

func (r *Repository) UpdateActionLog(ctx context.Context, id string, values ActionLogValues) error {
	row := values.row()
	row["updated_at"] = r.now()
	n, err := r.store.Update(ctx, storage.ActionLogs, byID(id), row)
	if err != nil {
		return fmt.Errorf("failed to update action log: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("action log %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// ListActionLogs returns every action log, used by integrity checks.
func (r *Repository) ListActionLogs(ctx context.Context) ([]models.ActionLog, error) {
	rows, err := r.store.Select(ctx, storage.From(storage.ActionLogs).Order("action_date", false))
	if err != nil {
		return nil, fmt.Errorf("failed to load action logs: %w", err)
	}
	return mapRows(rows, actionLogFromRow)
}
