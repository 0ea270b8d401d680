package utils

import (
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
)

// ScheduledOnDate determines if an output is due on the given local day
// based on its frequency. This logic is shared between the dashboard, the
// weekly progress aggregation and the missed-yesterday count.
func ScheduledOnDate(output models.Output, date time.Time) bool {
	switch output.FrequencyType {
	case constants.FrequencyDaily:
		return true
	case constants.FrequencyFixedWeekly:
		if len(output.ScheduleWeekdays) == 0 {
			return false
		}
		weekday := date.In(time.Local).Weekday()
		for _, wd := range output.ScheduleWeekdays {
			if weekday == wd {
				return true
			}
		}
		return false
	default:
		// Flexible weekly outputs have no fixed day and can be logged on any day.
		// Unknown types are treated the same way.
		return true
	}
}

// ScheduledOnLocalDate is ScheduledOnDate for a YYYY-MM-DD date string.
func ScheduledOnLocalDate(output models.Output, date string) (bool, error) {
	day, err := ParseLocalDate(date)
	if err != nil {
		return false, err
	}
	return ScheduledOnDate(output, day), nil
}
