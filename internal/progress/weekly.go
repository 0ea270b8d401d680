// Package progress aggregates action logs into scheduled-day and weekly
// completion figures for outputs.
package progress

import (
	"math"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/utils"
)

// WeeklyProgress is an output's completion over one week.
type WeeklyProgress struct {
	Completed float64 `json:"completed"`
	Target    int     `json:"target"`
	Rate      int     `json:"rate"`
	TargetMet bool    `json:"target_met"`
}

// ComputeWeeklyProgress measures an output's completion between weekStart and
// weekEnd (inclusive YYYY-MM-DD dates) from its action logs.
//
// Flexible weekly outputs count completed units across the week, capped at
// the weekly frequency. Daily and fixed weekly outputs earn up to one unit for
// each scheduled day, pro rata by completed/total.
func ComputeWeeklyProgress(output models.Output, weekStart, weekEnd string, logs []models.ActionLog) (WeeklyProgress, error) {
	if output.FrequencyType == constants.FrequencyFlexibleWeekly {
		return flexibleProgress(output, weekStart, weekEnd, logs)
	}

	days, err := utils.LocalDateRange(weekStart, weekEnd)
	if err != nil {
		return WeeklyProgress{}, err
	}

	byDate := make(map[string]models.ActionLog, len(logs))
	for _, log := range logs {
		byDate[log.ActionDate] = log
	}

	var completedUnits float64
	targetUnits := 0
	for _, date := range days {
		day, err := utils.ParseLocalDate(date)
		if err != nil {
			return WeeklyProgress{}, err
		}
		if !utils.ScheduledOnDate(output, day) {
			continue
		}
		targetUnits++

		log, ok := byDate[date]
		if ok && log.Completed > 0 && log.Total > 0 {
			completedUnits += math.Min(float64(log.Completed)/float64(log.Total), 1)
		}
	}

	rate := 0
	if targetUnits > 0 {
		rate = int(utils.Round(completedUnits/float64(targetUnits)*100, 0))
	}

	return WeeklyProgress{
		Completed: utils.Round(completedUnits, 1),
		Target:    targetUnits,
		Rate:      rate,
		TargetMet: completedUnits >= float64(targetUnits),
	}, nil
}

func flexibleProgress(output models.Output, weekStart, weekEnd string, logs []models.ActionLog) (WeeklyProgress, error) {
	if _, err := utils.ParseLocalDate(weekStart); err != nil {
		return WeeklyProgress{}, err
	}
	if _, err := utils.ParseLocalDate(weekEnd); err != nil {
		return WeeklyProgress{}, err
	}

	// YYYY-MM-DD strings order the same as the dates they name
	sum := 0
	for _, log := range logs {
		if log.ActionDate >= weekStart && log.ActionDate <= weekEnd {
			sum += log.Completed
		}
	}

	target := output.FrequencyValue
	completed := min(sum, target)

	rate := 0
	if target != 0 {
		rate = int(utils.Round(float64(completed)/float64(target)*100, 0))
	}

	return WeeklyProgress{
		Completed: float64(completed),
		Target:    target,
		Rate:      rate,
		TargetMet: completed >= target,
	}, nil
}
