package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/maestro/internal/constants"
	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/storage"
)

// OutcomeInput creates an outcome.
type OutcomeInput struct {
	Title    string
	Category string
}

func (r *Repository) CreateOutcome(ctx context.Context, input OutcomeInput) (models.Outcome, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Outcome{}, apperrors.Validationf("outcome title is required")
	}
	row, err := r.store.Insert(ctx, storage.Outcomes, storage.Row{
		"title":      title,
		"category":   strings.TrimSpace(input.Category),
		"status":     constants.StatusActive,
		"created_at": r.now(),
		"updated_at": r.now(),
	})
	if err != nil {
		return models.Outcome{}, fmt.Errorf("failed to create outcome: %w", err)
	}
	return outcomeFromRow(row)
}

// ListOutcomes returns outcomes oldest first. Only active outcomes are
// returned unless includeInactive is set.
func (r *Repository) ListOutcomes(ctx context.Context, includeInactive bool) ([]models.Outcome, error) {
	q := storage.From(storage.Outcomes).Order("created_at", false)
	if !includeInactive {
		q = q.Where(storage.Eq("status", constants.StatusActive))
	}
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	return mapRows(rows, outcomeFromRow)
}

func (r *Repository) GetOutcome(ctx context.Context, id string) (models.Outcome, error) {
	row, err := r.selectOne(ctx, storage.From(storage.Outcomes).Where(byID(id)...), "outcome", id)
	if err != nil {
		return models.Outcome{}, err
	}
	return outcomeFromRow(row)
}

// SetOutcomeStatus moves an outcome between active, paused and archived.
func (r *Repository) SetOutcomeStatus(ctx context.Context, id, status string) error {
	if !validStatus(status) {
		return apperrors.Validationf("unknown status %q", status)
	}
	n, err := r.store.Update(ctx, storage.Outcomes, byID(id), storage.Row{"status": status})
	if err != nil {
		return fmt.Errorf("failed to update outcome: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("outcome %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func validStatus(status string) bool {
	switch status {
	case constants.StatusActive, constants.StatusPaused, constants.StatusArchived:
		return true
	}
	return false
}
