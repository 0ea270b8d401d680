// Package skills ranks skills by practice urgency, decides graduation to the
// review stage and summarises weekly confidence movement per outcome.
package skills

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/utils"
)

// Priority is the practice urgency computed for one skill.
type Priority struct {
	Skill              models.SkillItem `json:"skill"`
	LatestConfidence   int              `json:"latest_confidence"`
	ConfidencePressure float64          `json:"confidence_pressure"`
	RecencyPressure    float64          `json:"recency_pressure"`
	TargetPressure     float64          `json:"target_pressure"`
	PriorityScore      float64          `json:"priority_score"`
	FinalScore         float64          `json:"final_score"`
	DaysSinceLast      int              `json:"days_since_last"`
	TargetInterval     float64          `json:"target_interval"`
}

// SortLogsDescending returns a copy of logs ordered newest first by LoggedAt.
// Logs with equal timestamps keep their relative input order.
func SortLogsDescending(logs []models.SkillLog) []models.SkillLog {
	sorted := make([]models.SkillLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LoggedAt.After(sorted[j].LoggedAt)
	})
	return sorted
}

// GroupLogsBySkill buckets logs by SkillItemID, each bucket newest first.
func GroupLogsBySkill(logs []models.SkillLog) map[string][]models.SkillLog {
	grouped := make(map[string][]models.SkillLog)
	for _, log := range logs {
		grouped[log.SkillItemID] = append(grouped[log.SkillItemID], log)
	}
	for id, bucket := range grouped {
		grouped[id] = SortLogsDescending(bucket)
	}
	return grouped
}

func latestTargetResult(logsDescending []models.SkillLog) *float64 {
	for _, log := range logsDescending {
		if log.TargetResult != nil {
			return log.TargetResult
		}
	}
	return nil
}

// ComputeSkillPriority scores one skill from its logs, given in any order.
func ComputeSkillPriority(skill models.SkillItem, logs []models.SkillLog, now time.Time) Priority {
	ordered := SortLogsDescending(logs)

	latestConfidence := skill.InitialConfidence
	reference := skill.CreatedAt
	if len(ordered) > 0 {
		latestConfidence = ordered[0].Confidence
		reference = ordered[0].LoggedAt
	}

	confidencePressure := (1 - float64(latestConfidence-1)/4) * 100

	daysSinceLast := utils.DaysBetweenLocalDates(reference, now)
	targetInterval := math.Pow(2, float64(latestConfidence-1))
	recencyPressure := math.Min(float64(daysSinceLast)/targetInterval*100, 100)

	targetPressure := constants.NoTargetPressure
	if skill.TargetValue != nil {
		if latest := latestTargetResult(ordered); latest == nil {
			targetPressure = constants.MissingTargetResultPressure
		} else {
			ratio := utils.Clamp(*latest / *skill.TargetValue, 0, 1)
			targetPressure = (1 - ratio) * 100
		}
	}

	priorityScore := confidencePressure*constants.ConfidenceWeight +
		recencyPressure*constants.RecencyWeight +
		targetPressure*constants.TargetWeight

	finalScore := priorityScore
	if skill.Stage == constants.StageReview {
		finalScore = priorityScore * constants.ReviewStageFactor
	}

	return Priority{
		Skill:              skill,
		LatestConfidence:   latestConfidence,
		ConfidencePressure: utils.Round(confidencePressure, 2),
		RecencyPressure:    utils.Round(recencyPressure, 2),
		TargetPressure:     utils.Round(targetPressure, 2),
		PriorityScore:      utils.Round(priorityScore, 2),
		FinalScore:         utils.Round(finalScore, 2),
		DaysSinceLast:      daysSinceLast,
		TargetInterval:     targetInterval,
	}
}

// Rankable reports whether a skill takes part in the priority queue.
func Rankable(skill models.SkillItem) bool {
	return skill.Stage == constants.StageActive || skill.Stage == constants.StageReview
}

// ComputePriorityQueue scores every active or review skill and orders them
// by FinalScore, highest first. Equal scores keep input order.
func ComputePriorityQueue(skills []models.SkillItem, logs []models.SkillLog, now time.Time) []Priority {
	grouped := GroupLogsBySkill(logs)

	queue := make([]Priority, 0, len(skills))
	for _, skill := range skills {
		if !Rankable(skill) {
			continue
		}
		queue = append(queue, ComputeSkillPriority(skill, grouped[skill.ID], now))
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].FinalScore > queue[j].FinalScore
	})
	return queue
}
