package skills

import (
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/utils"
)

// IsEligibleForGraduation reports whether an active skill has earned a move
// to review: its three most recent logs all have confidence 4 or more and
// fall within the last 30 days. A graduation suppression is honoured until
// a log newer than the suppression arrives.
func IsEligibleForGraduation(skill models.SkillItem, logs []models.SkillLog, now time.Time) bool {
	if skill.Stage != constants.StageActive {
		return false
	}

	ordered := SortLogsDescending(logs)
	if len(ordered) < constants.GraduationLogCount {
		return false
	}
	latest := ordered[:constants.GraduationLogCount]

	if skill.GraduationSuppressedAt != nil && !latest[0].LoggedAt.After(*skill.GraduationSuppressedAt) {
		return false
	}

	for _, log := range latest {
		if log.Confidence < constants.GraduationMinConfidence {
			return false
		}
	}

	for _, log := range latest {
		if utils.DaysBetweenLocalDates(log.LoggedAt, now) > constants.GraduationWindowDays {
			return false
		}
	}
	return true
}
