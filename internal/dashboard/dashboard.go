// Package dashboard assembles the daily view of outcomes, outputs and skill
// suggestions, and runs the save workflows behind it.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/progress"
	"github.com/julianstephens/maestro/internal/repository"
	"github.com/julianstephens/maestro/internal/skills"
	"github.com/julianstephens/maestro/internal/utils"
)

// Options tunes the suggestion lists.
type Options struct {
	Suggestions int
	PerOutcome  int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		Suggestions: constants.DefaultSuggestionCount,
		PerOutcome:  constants.DefaultPerOutcomeCount,
	}
}

type Service struct {
	repo *repository.Repository
	opts Options
	now  func() time.Time
}

func New(repo *repository.Repository, opts Options) *Service {
	if opts.Suggestions <= 0 {
		opts.Suggestions = constants.DefaultSuggestionCount
	}
	if opts.PerOutcome <= 0 {
		opts.PerOutcome = constants.DefaultPerOutcomeCount
	}
	return &Service{repo: repo, opts: opts, now: time.Now}
}

// WithClock returns a copy of s that reads the current instant from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

// Output is an output as shown on the dashboard for one day.
type Output struct {
	models.Output
	ScheduledToday bool                    `json:"scheduled_today"`
	TodayLog       *models.ActionLog       `json:"today_log"`
	WeeklyProgress progress.WeeklyProgress `json:"weekly_progress"`
}

// Outcome groups the active outputs of one outcome.
type Outcome struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Outputs  []Output `json:"outputs"`
}

// Daily is the dashboard for one local date.
type Daily struct {
	Date                 string                       `json:"date"`
	WeekStart            string                       `json:"week_start"`
	WeekEnd              string                       `json:"week_end"`
	StartOfWeek          int                          `json:"start_of_week"`
	MissedYesterdayCount int                          `json:"missed_yesterday_count"`
	Outcomes             []Outcome                    `json:"outcomes"`
	CompletedToday       int                          `json:"completed_today"`
	ScheduledToday       int                          `json:"scheduled_today"`
	CompletionRate       int                          `json:"completion_rate"`
	Suggestions          []skills.Priority            `json:"suggestions"`
	SuggestionsByOutcome map[string][]skills.Priority `json:"suggestions_by_outcome"`
	SkillSummary         map[string]skills.Summary    `json:"skill_summary"`
}

// FetchDailyDashboard builds the dashboard for date (YYYY-MM-DD).
func (s *Service) FetchDailyDashboard(ctx context.Context, date string) (Daily, error) {
	day, err := utils.ParseLocalDate(date)
	if err != nil {
		return Daily{}, err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return Daily{}, err
	}
	weekStart, weekEnd, err := utils.WeekBounds(date, settings.StartOfWeek)
	if err != nil {
		return Daily{}, err
	}
	yesterday := utils.AddDaysToLocalDate(day, -1)

	outcomes, err := s.repo.ListOutcomes(ctx, false)
	if err != nil {
		return Daily{}, err
	}
	outcomeIDs := make([]string, len(outcomes))
	for i, o := range outcomes {
		outcomeIDs[i] = o.ID
	}

	outputs, err := s.repo.ListOutputs(ctx, outcomeIDs, true)
	if err != nil {
		return Daily{}, err
	}
	outputIDs := make([]string, len(outputs))
	for i, o := range outputs {
		outputIDs[i] = o.ID
	}

	// One range read covers the week, today and yesterday.
	rangeStart, rangeEnd := weekStart, weekEnd
	if y := utils.FormatLocalDate(yesterday); y < rangeStart {
		rangeStart = y
	}
	actionLogs, err := s.repo.FetchActionLogsInRange(ctx, outputIDs, rangeStart, rangeEnd)
	if err != nil {
		return Daily{}, err
	}
	logsByOutput := make(map[string][]models.ActionLog)
	var todayLogs, yesterdayLogs []models.ActionLog
	for _, l := range actionLogs {
		if l.ActionDate >= weekStart && l.ActionDate <= weekEnd {
			logsByOutput[l.OutputID] = append(logsByOutput[l.OutputID], l)
		}
		switch l.ActionDate {
		case date:
			todayLogs = append(todayLogs, l)
		case utils.FormatLocalDate(yesterday):
			yesterdayLogs = append(yesterdayLogs, l)
		}
	}
	todayIndex := progress.IndexLogsByOutput(todayLogs)

	outputsByOutcome := make(map[string][]Output)
	for _, o := range outputs {
		weekly, err := progress.ComputeWeeklyProgress(o, weekStart, weekEnd, logsByOutput[o.ID])
		if err != nil {
			return Daily{}, err
		}
		outputsByOutcome[o.OutcomeID] = append(outputsByOutcome[o.OutcomeID], Output{
			Output:         o,
			ScheduledToday: utils.ScheduledOnDate(o, day),
			TodayLog:       todayIndex[o.ID],
			WeeklyProgress: weekly,
		})
	}

	result := Daily{
		Date:                 date,
		WeekStart:            weekStart,
		WeekEnd:              weekEnd,
		StartOfWeek:          settings.StartOfWeek,
		MissedYesterdayCount: progress.CountMissed(outputs, yesterday, progress.IndexLogsByOutput(yesterdayLogs)),
		Outcomes:             make([]Outcome, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		result.Outcomes = append(result.Outcomes, Outcome{
			ID:       o.ID,
			Title:    o.Title,
			Category: o.Category,
			Outputs:  outputsByOutcome[o.ID],
		})
	}

	completion := progress.ComputeDailyCompletion(outputs, day, todayIndex)
	result.CompletedToday = completion.Completed
	result.ScheduledToday = completion.Scheduled
	result.CompletionRate = completion.Rate

	set, err := s.repo.FetchSkillsForOutcomes(ctx, outcomeIDs)
	if err != nil {
		return Daily{}, err
	}
	queue := skills.ComputePriorityQueue(set.Skills, set.Logs, s.now())
	result.Suggestions = skills.TopSuggestions(queue, s.opts.Suggestions)
	result.SuggestionsByOutcome = skills.SuggestionsByOutcome(queue, s.opts.PerOutcome)

	result.SkillSummary, err = s.repo.WeeklySkillSummary(ctx, outcomeIDs, weekStart, weekEnd)
	if err != nil {
		return Daily{}, fmt.Errorf("failed to summarise skills: %w", err)
	}

	logger.Debug("Built daily dashboard",
		"date", date,
		"outcomes", len(result.Outcomes),
		"scheduled", result.ScheduledToday,
		"completed", result.CompletedToday,
		"ranked_skills", len(queue))
	return result, nil
}

// PriorityQueue ranks the live skills of the given outcomes, or of every
// active outcome when outcomeIDs is empty.
func (s *Service) PriorityQueue(ctx context.Context, outcomeIDs []string) ([]skills.Priority, error) {
	if len(outcomeIDs) == 0 {
		outcomes, err := s.repo.ListOutcomes(ctx, false)
		if err != nil {
			return nil, err
		}
		for _, o := range outcomes {
			outcomeIDs = append(outcomeIDs, o.ID)
		}
	}
	set, err := s.repo.FetchSkillsForOutcomes(ctx, outcomeIDs)
	if err != nil {
		return nil, err
	}
	return skills.ComputePriorityQueue(set.Skills, set.Logs, s.now()), nil
}

// OutputWeek is one output's progress for a week.
type OutputWeek struct {
	Output   models.Output           `json:"output"`
	Progress progress.WeeklyProgress `json:"progress"`
}

// Week is the weekly review: per-outcome output progress and skill summary.
type Week struct {
	WeekStart    string                    `json:"week_start"`
	WeekEnd      string                    `json:"week_end"`
	Outcomes     []models.Outcome          `json:"outcomes"`
	Outputs      map[string][]OutputWeek   `json:"outputs"`
	SkillSummary map[string]skills.Summary `json:"skill_summary"`
}

// FetchWeek builds the weekly review for the week containing date.
func (s *Service) FetchWeek(ctx context.Context, date string) (Week, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return Week{}, err
	}
	weekStart, weekEnd, err := utils.WeekBounds(date, settings.StartOfWeek)
	if err != nil {
		return Week{}, err
	}

	outcomes, err := s.repo.ListOutcomes(ctx, false)
	if err != nil {
		return Week{}, err
	}
	outcomeIDs := make([]string, len(outcomes))
	for i, o := range outcomes {
		outcomeIDs[i] = o.ID
	}
	outputs, err := s.repo.ListOutputs(ctx, outcomeIDs, true)
	if err != nil {
		return Week{}, err
	}
	outputIDs := make([]string, len(outputs))
	for i, o := range outputs {
		outputIDs[i] = o.ID
	}
	logs, err := s.repo.FetchActionLogsInRange(ctx, outputIDs, weekStart, weekEnd)
	if err != nil {
		return Week{}, err
	}
	logsByOutput := make(map[string][]models.ActionLog)
	for _, l := range logs {
		logsByOutput[l.OutputID] = append(logsByOutput[l.OutputID], l)
	}

	week := Week{WeekStart: weekStart, WeekEnd: weekEnd, Outcomes: outcomes, Outputs: make(map[string][]OutputWeek)}
	for _, o := range outputs {
		p, err := progress.ComputeWeeklyProgress(o, weekStart, weekEnd, logsByOutput[o.ID])
		if err != nil {
			return Week{}, err
		}
		week.Outputs[o.OutcomeID] = append(week.Outputs[o.OutcomeID], OutputWeek{Output: o, Progress: p})
	}
	week.SkillSummary, err = s.repo.WeeklySkillSummary(ctx, outcomeIDs, weekStart, weekEnd)
	if err != nil {
		return Week{}, err
	}
	return week, nil
}
