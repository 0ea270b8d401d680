package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/maestro/internal/constants"
	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/repository"
	"github.com/julianstephens/maestro/internal/skills"
	"github.com/julianstephens/maestro/internal/utils"
)

// ActionLogInput is a completion record to save for one output and date.
type ActionLogInput struct {
	OutputID   string
	ActionDate string
	Completed  int
	Total      int
	Notes      string
}

// SaveActionLogResult identifies the saved log.
type SaveActionLogResult struct {
	ActionLogID string `json:"action_log_id"`
	Completed   int    `json:"completed"`
}

// SaveActionLog upserts the log of an output on a date. Negative counts are
// stored as zero and blank notes as NULL. Clearing an existing log to zero
// completed also removes the skill logs recorded against it.
func (s *Service) SaveActionLog(ctx context.Context, input ActionLogInput) (SaveActionLogResult, error) {
	if !utils.ValidateDateFormat(input.ActionDate) {
		return SaveActionLogResult{}, apperrors.Validationf("invalid date %q (expected YYYY-MM-DD)", input.ActionDate)
	}
	values := repository.ActionLogValues{
		Completed: max(0, input.Completed),
		Total:     max(0, input.Total),
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		values.Notes = &notes
	}

	existing, err := s.repo.FindActionLog(ctx, input.OutputID, input.ActionDate)
	if err != nil {
		return SaveActionLogResult{}, err
	}

	if existing != nil {
		if err := s.repo.UpdateActionLog(ctx, existing.ID, values); err != nil {
			return SaveActionLogResult{}, err
		}
		if values.Completed == 0 {
			if _, err := s.repo.DeleteSkillLogsByActionLogID(ctx, existing.ID); err != nil {
				return SaveActionLogResult{}, err
			}
		}
		logger.Debug("Updated action log", "output_id", input.OutputID, "date", input.ActionDate, "completed", values.Completed)
		return SaveActionLogResult{ActionLogID: existing.ID, Completed: values.Completed}, nil
	}

	if _, err := s.repo.GetOutput(ctx, input.OutputID); err != nil {
		return SaveActionLogResult{}, err
	}
	inserted, err := s.repo.InsertActionLog(ctx, input.OutputID, input.ActionDate, values)
	if err != nil {
		return SaveActionLogResult{}, err
	}
	logger.Debug("Inserted action log", "output_id", input.OutputID, "date", input.ActionDate, "completed", values.Completed)
	return SaveActionLogResult{ActionLogID: inserted.ID, Completed: values.Completed}, nil
}

// SkillLogSaveResult lists the skills that received a new log, in entry order.
type SkillLogSaveResult struct {
	CreatedSkillIDs []string `json:"created_skill_ids"`
}

// ReplaceSkillLogsForAction makes entries the complete set of skill logs of
// an action log. Existing logs for a skill are rewritten in place, new skills
// get a log stamped now, and logs of skills no longer listed are deleted.
// The action log must exist and record some completion.
func (s *Service) ReplaceSkillLogsForAction(ctx context.Context, actionLogID string, entries []repository.SkillLogEntry) (SkillLogSaveResult, error) {
	action, err := s.repo.GetActionLog(ctx, actionLogID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return SkillLogSaveResult{}, apperrors.ErrActionNotLogged
		}
		return SkillLogSaveResult{}, err
	}
	if action.Completed <= 0 {
		return SkillLogSaveResult{}, apperrors.ErrActionNotLogged
	}

	existing, err := s.repo.FetchSkillLogsByActionIDs(ctx, []string{actionLogID})
	if err != nil {
		return SkillLogSaveResult{}, err
	}
	existingBySkill := make(map[string]string, len(existing))
	for _, l := range existing {
		existingBySkill[l.SkillItemID] = l.ID
	}

	result := SkillLogSaveResult{CreatedSkillIDs: []string{}}
	keep := make(map[string]bool, len(entries))
	for _, entry := range entries {
		keep[entry.SkillItemID] = true
		if id, ok := existingBySkill[entry.SkillItemID]; ok {
			if err := s.repo.UpdateSkillLog(ctx, id, entry.Confidence, entry.TargetResult); err != nil {
				return result, err
			}
			continue
		}
		if _, err := s.repo.InsertSkillLog(ctx, actionLogID, entry, s.now()); err != nil {
			return result, err
		}
		result.CreatedSkillIDs = append(result.CreatedSkillIDs, entry.SkillItemID)
	}

	var stale []string
	for _, l := range existing {
		if !keep[l.SkillItemID] {
			stale = append(stale, l.ID)
		}
	}
	if _, err := s.repo.DeleteSkillLogs(ctx, stale); err != nil {
		return result, err
	}

	logger.Debug("Replaced skill logs",
		"action_log_id", actionLogID,
		"entries", len(entries),
		"created", len(result.CreatedSkillIDs),
		"removed", len(stale))
	return result, nil
}

// CheckGraduationEligibility reports whether an active skill's latest logs
// qualify it for review.
func (s *Service) CheckGraduationEligibility(ctx context.Context, skillID string) (bool, error) {
	skill, err := s.repo.FetchSkillByID(ctx, skillID)
	if err != nil {
		return false, err
	}
	if skill.Stage != constants.StageActive {
		return false, nil
	}
	logs, err := s.repo.FetchLatestSkillLogs(ctx, skillID, constants.GraduationLogCount)
	if err != nil {
		return false, fmt.Errorf("failed to check graduation: %w", err)
	}
	return skills.IsEligibleForGraduation(skill, logs, s.now()), nil
}
