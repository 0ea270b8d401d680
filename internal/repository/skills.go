package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/skills"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/internal/utils"
)

// SkillSet is a set of skills with their logs, newest log first.
type SkillSet struct {
	Skills []models.SkillItem
	Logs   []models.SkillLog
}

// SkillInput creates or edits a skill item.
type SkillInput struct {
	OutcomeID         string
	Name              string
	InitialConfidence int
	TargetLabel       *string
	TargetValue       *float64
}

// SkillLogEntry is one confidence rating recorded against an action log.
type SkillLogEntry struct {
	SkillItemID  string   `json:"skill_item_id"`
	Confidence   int      `json:"confidence"`
	TargetResult *float64 `json:"target_result"`
}

// ActionContext locates the action log a skill log was recorded against.
type ActionContext struct {
	ActionDate        string  `json:"action_date"`
	OutputID          string  `json:"output_id"`
	OutputDescription *string `json:"output_description"`
}

func normalizeTargetLabel(label *string) *string {
	if label == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeTargetValue(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	v := *value
	return &v
}

func validateConfidence(c int) error {
	if c < constants.MinConfidence || c > constants.MaxConfidence {
		return apperrors.Validationf("confidence must be between %d and %d", constants.MinConfidence, constants.MaxConfidence)
	}
	return nil
}

func (in SkillInput) row() (storage.Row, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validationf("skill name is required")
	}
	if err := validateConfidence(in.InitialConfidence); err != nil {
		return nil, err
	}
	target := normalizeTargetValue(in.TargetValue)
	if target != nil && *target <= 0 {
		return nil, apperrors.Validationf("target value must be greater than 0")
	}
	return storage.Row{
		"name":               name,
		"initial_confidence": in.InitialConfidence,
		"target_label":       normalizeTargetLabel(in.TargetLabel),
		"target_value":       target,
	}, nil
}

func (r *Repository) loadSkillSet(ctx context.Context, skillQuery storage.Query) (SkillSet, error) {
	rows, err := r.store.Select(ctx, skillQuery.Order("created_at", false))
	if err != nil {
		return SkillSet{}, fmt.Errorf("failed to load skills: %w", err)
	}
	items, err := mapRows(rows, skillFromRow)
	if err != nil {
		return SkillSet{}, err
	}
	if len(items) == 0 {
		return SkillSet{Skills: items}, nil
	}

	ids := make([]string, len(items))
	for i, s := range items {
		ids[i] = s.ID
	}
	logRows, err := r.store.Select(ctx, storage.From(storage.SkillLogs).
		Where(storage.In("skill_item_id", ids)).
		Order("logged_at", true))
	if err != nil {
		return SkillSet{}, fmt.Errorf("failed to load skill logs: %w", err)
	}
	logs, err := mapRows(logRows, skillLogFromRow)
	if err != nil {
		return SkillSet{}, err
	}
	return SkillSet{Skills: items, Logs: logs}, nil
}

// FetchSkillsForOutcome returns every skill of an outcome, oldest first, with their logs.
func (r *Repository) FetchSkillsForOutcome(ctx context.Context, outcomeID string) (SkillSet, error) {
	return r.loadSkillSet(ctx, storage.From(storage.SkillItems).Where(storage.Eq("outcome_id", outcomeID)))
}

// FetchSkillsForOutcomes returns the active and review skills of the outcomes.
func (r *Repository) FetchSkillsForOutcomes(ctx context.Context, outcomeIDs []string) (SkillSet, error) {
	if len(outcomeIDs) == 0 {
		return SkillSet{}, nil
	}
	return r.loadSkillSet(ctx, storage.From(storage.SkillItems).Where(
		storage.In("outcome_id", outcomeIDs),
		storage.In("stage", []constants.SkillStage{constants.StageActive, constants.StageReview}),
	))
}

func (r *Repository) FetchSkillByID(ctx context.Context, id string) (models.SkillItem, error) {
	row, err := r.selectOne(ctx, storage.From(storage.SkillItems).Where(byID(id)...), "skill item", id)
	if err != nil {
		return models.SkillItem{}, err
	}
	return skillFromRow(row)
}

// FetchSkillLogsForSkill returns a skill's logs, newest first.
func (r *Repository) FetchSkillLogsForSkill(ctx context.Context, skillID string) ([]models.SkillLog, error) {
	return r.FetchLatestSkillLogs(ctx, skillID, 0)
}

// FetchLatestSkillLogs returns at most n of a skill's newest logs. n <= 0 returns all.
func (r *Repository) FetchLatestSkillLogs(ctx context.Context, skillID string, n int) ([]models.SkillLog, error) {
	q := storage.From(storage.SkillLogs).
		Where(storage.Eq("skill_item_id", skillID)).
		Order("logged_at", true)
	if n > 0 {
		q = q.Take(n)
	}
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill logs: %w", err)
	}
	return mapRows(rows, skillLogFromRow)
}

func (r *Repository) FetchSkillLogsByActionIDs(ctx context.Context, actionLogIDs []string) ([]models.SkillLog, error) {
	if len(actionLogIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, storage.From(storage.SkillLogs).Where(storage.In("action_log_id", actionLogIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to load skill logs: %w", err)
	}
	return mapRows(rows, skillLogFromRow)
}

// FetchSkillLogsBefore returns the logs of skillIDs logged strictly before
// cutoff, newest first.
func (r *Repository) FetchSkillLogsBefore(ctx context.Context, skillIDs []string, cutoff time.Time) ([]models.SkillLog, error) {
	if len(skillIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, storage.From(storage.SkillLogs).Where(
		storage.In("skill_item_id", skillIDs),
		storage.Lt("logged_at", cutoff),
	).Order("logged_at", true))
	if err != nil {
		return nil, fmt.Errorf("failed to load skill logs: %w", err)
	}
	return mapRows(rows, skillLogFromRow)
}

// FetchSkillActionContext maps action log ids to their date and output.
// Ids without a stored action log are left out.
func (r *Repository) FetchSkillActionContext(ctx context.Context, actionLogIDs []string) (map[string]ActionContext, error) {
	result := make(map[string]ActionContext)
	if len(actionLogIDs) == 0 {
		return result, nil
	}
	actions, err := r.GetActionLogs(ctx, actionLogIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var outputIDs []string
	for _, a := range actions {
		if !seen[a.OutputID] {
			seen[a.OutputID] = true
			outputIDs = append(outputIDs, a.OutputID)
		}
	}

	descriptions := make(map[string]string)
	if len(outputIDs) > 0 {
		rows, err := r.store.Select(ctx, storage.From(storage.Outputs).Where(storage.In("id", outputIDs)))
		if err != nil {
			return nil, fmt.Errorf("failed to load outputs: %w", err)
		}
		for _, row := range rows {
			descriptions[row.String("id")] = row.String("description")
		}
	}

	for _, a := range actions {
		c := ActionContext{ActionDate: a.ActionDate, OutputID: a.OutputID}
		if d, ok := descriptions[a.OutputID]; ok {
			desc := d
			c.OutputDescription = &desc
		}
		result[a.ID] = c
	}
	return result, nil
}

// WeeklySkillSummary computes the skill summary of each outcome for the
// week weekStart..weekEnd. Skills of every stage take part.
func (r *Repository) WeeklySkillSummary(ctx context.Context, outcomeIDs []string, weekStart, weekEnd string) (map[string]skills.Summary, error) {
	if len(outcomeIDs) == 0 {
		return map[string]skills.Summary{}, nil
	}
	rows, err := r.store.Select(ctx, storage.From(storage.SkillItems).Where(storage.In("outcome_id", outcomeIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	items, err := mapRows(rows, skillFromRow)
	if err != nil {
		return nil, err
	}

	input := skills.SummaryInput{OutcomeIDs: outcomeIDs, WeekStart: weekStart, WeekEnd: weekEnd, Skills: items}
	if len(items) > 0 {
		end, err := utils.ParseLocalDate(weekEnd)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, s := range items {
			ids[i] = s.ID
		}
		input.Logs, err = r.FetchSkillLogsBefore(ctx, ids, utils.AddDaysToLocalDate(end, 1))
		if err != nil {
			return nil, err
		}
	}
	return skills.ComputeWeeklySkillSummaryFromData(input)
}

func (r *Repository) CreateSkillItem(ctx context.Context, input SkillInput) (models.SkillItem, error) {
	row, err := input.row()
	if err != nil {
		return models.SkillItem{}, err
	}
	if _, err := r.GetOutcome(ctx, input.OutcomeID); err != nil {
		return models.SkillItem{}, err
	}
	row["outcome_id"] = input.OutcomeID
	row["stage"] = constants.StageActive
	row["created_at"] = r.now()
	row["updated_at"] = r.now()

	inserted, err := r.store.Insert(ctx, storage.SkillItems, row)
	if err != nil {
		return models.SkillItem{}, skillMutationError(err)
	}
	return skillFromRow(inserted)
}

// UpdateSkillItem rewrites a skill's name, target and initial confidence.
// The outcome of a skill never changes.
func (r *Repository) UpdateSkillItem(ctx context.Context, id string, input SkillInput) (models.SkillItem, error) {
	row, err := input.row()
	if err != nil {
		return models.SkillItem{}, err
	}
	if err := r.updateSkill(ctx, id, row); err != nil {
		return models.SkillItem{}, err
	}
	return r.FetchSkillByID(ctx, id)
}

// SetSkillStage moves a skill to stage. Entering review clears any
// graduation suppression.
func (r *Repository) SetSkillStage(ctx context.Context, id string, stage constants.SkillStage) (models.SkillItem, error) {
	if _, ok := constants.ParseSkillStage(string(stage)); !ok {
		return models.SkillItem{}, apperrors.Validationf("unknown skill stage %q", stage)
	}
	row := storage.Row{"stage": stage}
	if stage == constants.StageReview {
		row["graduation_suppressed_at"] = nil
	}
	if err := r.updateSkill(ctx, id, row); err != nil {
		return models.SkillItem{}, err
	}
	return r.FetchSkillByID(ctx, id)
}

// SuppressSkillGraduation records that the user declined to graduate a skill
// at now, so logs up to that instant no longer prompt.
func (r *Repository) SuppressSkillGraduation(ctx context.Context, id string, now time.Time) error {
	return r.updateSkill(ctx, id, storage.Row{"graduation_suppressed_at": now})
}

func (r *Repository) updateSkill(ctx context.Context, id string, row storage.Row) error {
	row["updated_at"] = r.now()
	n, err := r.store.Update(ctx, storage.SkillItems, byID(id), row)
	if err != nil {
		return skillMutationError(err)
	}
	if n == 0 {
		return fmt.Errorf("skill item %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// InsertSkillLog records entry at loggedAt. actionLogID may be empty for a
// log that is not tied to an action.
func (r *Repository) InsertSkillLog(ctx context.Context, actionLogID string, entry SkillLogEntry, loggedAt time.Time) (models.SkillLog, error) {
	if err := validateConfidence(entry.Confidence); err != nil {
		return models.SkillLog{}, err
	}
	row := storage.Row{
		"skill_item_id": entry.SkillItemID,
		"confidence":    entry.Confidence,
		"target_result": normalizeTargetValue(entry.TargetResult),
		"logged_at":     loggedAt,
		"created_at":    r.now(),
		"updated_at":    r.now(),
	}
	if actionLogID != "" {
		row["action_log_id"] = actionLogID
	}
	inserted, err := r.store.Insert(ctx, storage.SkillLogs, row)
	if err != nil {
		return models.SkillLog{}, fmt.Errorf("failed to save skill log: %w", err)
	}
	return skillLogFromRow(inserted)
}

// UpdateSkillLog rewrites the rating of an existing log, keeping logged_at.
func (r *Repository) UpdateSkillLog(ctx context.Context, id string, confidence int, targetResult *float64) error {
	if err := validateConfidence(confidence); err != nil {
		return err
	}
	n, err := r.store.Update(ctx, storage.SkillLogs, byID(id), storage.Row{
		"confidence":    confidence,
		"target_result": normalizeTargetValue(targetResult),
		"updated_at":    r.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update skill log: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("skill log %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteSkillLogs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.store.Delete(ctx, storage.SkillLogs, []storage.Filter{storage.In("id", ids)})
	if err != nil {
		return 0, fmt.Errorf("failed to delete skill logs: %w", err)
	}
	return n, nil
}

func (r *Repository) DeleteSkillLogsByActionLogID(ctx context.Context, actionLogID string) (int, error) {
	n, err := r.store.Delete(ctx, storage.SkillLogs, []storage.Filter{storage.Eq("action_log_id", actionLogID)})
	if err != nil {
		return 0, fmt.Errorf("failed to delete skill logs: %w", err)
	}
	if n > 0 {
		logger.Debug("Removed skill logs of cleared action", "action_log_id", actionLogID, "count", n)
	}
	return n, nil
}

// ListSkillItems returns every skill of every stage, used by integrity checks.
func (r *Repository) ListSkillItems(ctx context.Context) ([]models.SkillItem, error) {
	rows, err := r.store.Select(ctx, storage.From(storage.SkillItems).Order("created_at", false))
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	return mapRows(rows, skillFromRow)
}

// ListSkillLogs returns every skill log, newest first.
func (r *Repository) ListSkillLogs(ctx context.Context) ([]models.SkillLog, error) {
	rows, err := r.store.Select(ctx, storage.From(storage.SkillLogs).Order("logged_at", true))
	if err != nil {
		return nil, fmt.Errorf("failed to load skill logs: %w", err)
	}
	return mapRows(rows, skillLogFromRow)
}
