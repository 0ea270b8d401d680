package progress

import (
	"time"

	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/utils"
)

// DailyCompletion counts the outputs due on a day and how many were finished.
type DailyCompletion struct {
	Scheduled int `json:"scheduled_today"`
	Completed int `json:"completed_today"`
	Rate      int `json:"completion_rate"`
}

// IsComplete reports whether a log records the full amount for its day.
func IsComplete(log *models.ActionLog) bool {
	return log != nil && log.Total > 0 && log.Completed >= log.Total
}

// IndexLogsByOutput maps each output id to its log. Callers pass the logs of
// a single day, so there is at most one per output.
func IndexLogsByOutput(logs []models.ActionLog) map[string]*models.ActionLog {
	index := make(map[string]*models.ActionLog, len(logs))
	for i := range logs {
		index[logs[i].OutputID] = &logs[i]
	}
	return index
}

// ComputeDailyCompletion counts scheduled and completed outputs on day.
func ComputeDailyCompletion(outputs []models.Output, day time.Time, logs map[string]*models.ActionLog) DailyCompletion {
	var result DailyCompletion
	for _, output := range outputs {
		if !utils.ScheduledOnDate(output, day) {
			continue
		}
		result.Scheduled++
		if IsComplete(logs[output.ID]) {
			result.Completed++
		}
	}
	if result.Scheduled > 0 {
		result.Rate = int(utils.Round(float64(result.Completed)/float64(result.Scheduled)*100, 0))
	}
	return result
}

// CountMissed counts outputs scheduled on day with no log or nothing completed.
func CountMissed(outputs []models.Output, day time.Time, logs map[string]*models.ActionLog) int {
	missed := 0
	for _, output := range outputs {
		if !utils.ScheduledOnDate(output, day) {
			continue
		}
		if log := logs[output.ID]; log == nil || log.Completed == 0 {
			missed++
		}
	}
	return missed
}
