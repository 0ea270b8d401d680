package dashboard

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/repository"
)

// Messages shown for rejected skill log drafts.
var (
	ErrTargetNotNumeric  = errors.New("Target result must be numeric for selected skills.")
	ErrConfidenceInRange = errors.New("Confidence must be between 1 and 5.")
)

var weekdayLabels = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// LogDraft is the editable form of an action log.
type LogDraft struct {
	Completed int
	Total     int
	Notes     string
}

// Input turns the draft into a save request for outputID on date.
func (d LogDraft) Input(outputID, date string) ActionLogInput {
	return ActionLogInput{
		OutputID:   outputID,
		ActionDate: date,
		Completed:  d.Completed,
		Total:      d.Total,
		Notes:      d.Notes,
	}
}

func defaultTotal(output models.Output) int {
	if output.FrequencyType == constants.FrequencyFlexibleWeekly {
		return output.FrequencyValue
	}
	return constants.DefaultFlexibleTotal
}

// CreateLogDraft starts from the output's log for the day, if any.
func CreateLogDraft(output Output) LogDraft {
	if output.TodayLog == nil {
		return LogDraft{Total: defaultTotal(output.Output)}
	}
	draft := LogDraft{Completed: output.TodayLog.Completed, Total: output.TodayLog.Total}
	if output.TodayLog.Notes != nil {
		draft.Notes = *output.TodayLog.Notes
	}
	return draft
}

// MarkDone is the one-step "done" draft: one unit completed, notes kept.
func MarkDone(output models.Output, notes string) LogDraft {
	return LogDraft{Completed: 1, Total: defaultTotal(output), Notes: notes}
}

// MarkMissed is the one-step "missed" draft.
func MarkMissed(output models.Output, notes string) LogDraft {
	return LogDraft{Completed: 0, Total: defaultTotal(output), Notes: notes}
}

// FrequencyDescription renders an output's schedule, e.g. "Fixed weekly (Mon, Wed)".
func FrequencyDescription(output models.Output) string {
	switch output.FrequencyType {
	case constants.FrequencyDaily:
		return "Daily"
	case constants.FrequencyFlexibleWeekly:
		return strconv.Itoa(output.FrequencyValue) + "x/week (flexible)"
	}

	days := make([]string, 0, len(output.ScheduleWeekdays))
	for _, d := range output.ScheduleWeekdays {
		if d >= 0 && int(d) < len(weekdayLabels) {
			days = append(days, weekdayLabels[d])
		}
	}
	if len(days) == 0 {
		return "Fixed weekly (no days)"
	}
	return "Fixed weekly (" + strings.Join(days, ", ") + ")"
}

// ScoreLabel renders a score as a whole number, or "n/a" when there is none.
func ScoreLabel(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return strconv.Itoa(int(math.Floor(*score + 0.5)))
}

// SkillLogDraft is the editable rating of one skill for an action.
type SkillLogDraft struct {
	SkillItemID  string
	Selected     bool
	Confidence   int
	TargetResult string
}

// CreateEmptySkillLogDraft returns an unselected draft at the default confidence.
func CreateEmptySkillLogDraft(skillID string) SkillLogDraft {
	return SkillLogDraft{SkillItemID: skillID, Confidence: constants.DefaultConfidence}
}

// BuildSkillDraftsFromExistingLogs returns one draft per skill, in skill
// order, prefilled from the skill logs already saved for the action.
func BuildSkillDraftsFromExistingLogs(outcomeSkills []models.SkillItem, existing []models.SkillLog) []SkillLogDraft {
	bySkill := make(map[string]models.SkillLog, len(existing))
	for _, l := range existing {
		bySkill[l.SkillItemID] = l
	}

	drafts := make([]SkillLogDraft, 0, len(outcomeSkills))
	for _, skill := range outcomeSkills {
		draft := CreateEmptySkillLogDraft(skill.ID)
		if l, ok := bySkill[skill.ID]; ok {
			draft.Selected = true
			draft.Confidence = l.Confidence
			if l.TargetResult != nil {
				draft.TargetResult = strconv.FormatFloat(*l.TargetResult, 'f', -1, 64)
			}
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// BuildSelectedSkillEntries converts the selected drafts into log entries.
// A blank target result means none.
func BuildSelectedSkillEntries(drafts []SkillLogDraft) ([]repository.SkillLogEntry, error) {
	entries := make([]repository.SkillLogEntry, 0, len(drafts))
	for _, d := range drafts {
		if !d.Selected {
			continue
		}
		entry := repository.SkillLogEntry{SkillItemID: d.SkillItemID, Confidence: d.Confidence}
		if raw := strings.TrimSpace(d.TargetResult); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) {
				return nil, ErrTargetNotNumeric
			}
			entry.TargetResult = &v
		}
		entries = append(entries, entry)
	}

	for _, e := range entries {
		if e.Confidence < constants.MinConfidence || e.Confidence > constants.MaxConfidence {
			return nil, ErrConfidenceInRange
		}
	}
	return entries, nil
}
