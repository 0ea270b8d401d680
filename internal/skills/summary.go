package skills

import (
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/utils"
)

// Summary describes an outcome's skill practice over one week.
// AverageConfidenceDelta is nil when no skill of the outcome was logged that week.
type Summary struct {
	SkillsWorkedCount      int      `json:"skills_worked_count"`
	AverageConfidenceDelta *float64 `json:"average_confidence_delta"`
}

// SummaryInput is the snapshot the weekly summary is computed from.
// WeekStart and WeekEnd are inclusive YYYY-MM-DD dates.
type SummaryInput struct {
	OutcomeIDs []string
	WeekStart  string
	WeekEnd    string
	Skills     []models.SkillItem
	Logs       []models.SkillLog
}

// ComputeWeeklySkillSummaryFromData reports, per outcome, how many skills were
// logged during the week and the mean confidence change they achieved. Each
// skill's change is its latest confidence this week minus its latest
// confidence before the week (or its initial confidence when there is none).
// An error is returned only when a week boundary is not a valid date.
func ComputeWeeklySkillSummaryFromData(input SummaryInput) (map[string]Summary, error) {
	result := make(map[string]Summary, len(input.OutcomeIDs))
	if len(input.OutcomeIDs) == 0 {
		return result, nil
	}
	for _, id := range input.OutcomeIDs {
		result[id] = Summary{}
	}
	if len(input.Skills) == 0 {
		return result, nil
	}

	weekStart, err := utils.ParseLocalDate(input.WeekStart)
	if err != nil {
		return nil, err
	}
	weekEnd, err := utils.ParseLocalDate(input.WeekEnd)
	if err != nil {
		return nil, err
	}
	endExclusive := utils.AddDaysToLocalDate(weekEnd, 1)

	known := make(map[string]bool, len(input.Skills))
	for _, skill := range input.Skills {
		known[skill.ID] = true
	}

	var relevant []models.SkillLog
	for _, log := range input.Logs {
		if known[log.SkillItemID] && log.LoggedAt.Before(endExclusive) {
			relevant = append(relevant, log)
		}
	}
	logsBySkill := GroupLogsBySkill(relevant)

	var order []string
	skillsByOutcome := make(map[string][]models.SkillItem)
	for _, skill := range input.Skills {
		if _, seen := skillsByOutcome[skill.OutcomeID]; !seen {
			order = append(order, skill.OutcomeID)
		}
		skillsByOutcome[skill.OutcomeID] = append(skillsByOutcome[skill.OutcomeID], skill)
	}

	for _, outcomeID := range order {
		var deltas []int
		for _, skill := range skillsByOutcome[outcomeID] {
			// newest first, so this week's logs lead the slice
			skillLogs := logsBySkill[skill.ID]
			if len(skillLogs) == 0 || skillLogs[0].LoggedAt.Before(weekStart) {
				continue
			}

			baseline := skill.InitialConfidence
			for _, log := range skillLogs {
				if log.LoggedAt.Before(weekStart) {
					baseline = log.Confidence
					break
				}
			}
			deltas = append(deltas, skillLogs[0].Confidence-baseline)
		}

		if len(deltas) == 0 {
			continue
		}

		total := 0
		for _, d := range deltas {
			total += d
		}
		average := utils.Round(float64(total)/float64(len(deltas)), 1)
		result[outcomeID] = Summary{
			SkillsWorkedCount:      len(deltas),
			AverageConfidenceDelta: &average,
		}
	}

	return result, nil
}
