package progress

import (
	"testing"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
)

// The week of 2026-01-12 (Monday) through 2026-01-18 (Sunday).
const (
	weekStart = "2026-01-12"
	weekEnd   = "2026-01-18"
)

func actionLog(outputID, date string, completed, total int) models.ActionLog {
	return models.ActionLog{
		ID:         outputID + "-" + date,
		OutputID:   outputID,
		ActionDate: date,
		Completed:  completed,
		Total:      total,
	}
}

func TestComputeWeeklyProgress_FixedWeeklyPartialCredit(t *testing.T) {
	output := models.Output{
		ID:               "guitar",
		FrequencyType:    constants.FrequencyFixedWeekly,
		ScheduleWeekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}
	logs := []models.ActionLog{actionLog("guitar", "2026-01-14", 1, 2)}

	got, err := ComputeWeeklyProgress(output, weekStart, weekEnd, logs)
	if err != nil {
		t.Fatalf("ComputeWeeklyProgress() error = %v", err)
	}

	want := WeeklyProgress{Completed: 0.5, Target: 3, Rate: 17, TargetMet: false}
	if got != want {
		t.Errorf("ComputeWeeklyProgress() = %+v, want %+v", got, want)
	}
}

func TestComputeWeeklyProgress_Daily(t *testing.T) {
	output := models.Output{ID: "run", FrequencyType: constants.FrequencyDaily, FrequencyValue: 1}

	tests := []struct {
		name string
		logs []models.ActionLog
		want WeeklyProgress
	}{
		{
			name: "no logs",
			want: WeeklyProgress{Completed: 0, Target: 7, Rate: 0, TargetMet: false},
		},
		{
			name: "over-completion is capped per day",
			logs: []models.ActionLog{
				actionLog("run", "2026-01-12", 5, 1),
				actionLog("run", "2026-01-13", 1, 1),
			},
			want: WeeklyProgress{Completed: 2, Target: 7, Rate: 29, TargetMet: false},
		},
		{
			name: "zero total earns nothing",
			logs: []models.ActionLog{actionLog("run", "2026-01-12", 3, 0)},
			want: WeeklyProgress{Completed: 0, Target: 7, Rate: 0, TargetMet: false},
		},
		{
			name: "logs outside the week are ignored",
			logs: []models.ActionLog{
				actionLog("run", "2026-01-11", 1, 1),
				actionLog("run", "2026-01-19", 1, 1),
			},
			want: WeeklyProgress{Completed: 0, Target: 7, Rate: 0, TargetMet: false},
		},
		{
			name: "every day complete",
			logs: []models.ActionLog{
				actionLog("run", "2026-01-12", 1, 1),
				actionLog("run", "2026-01-13", 1, 1),
				actionLog("run", "2026-01-14", 1, 1),
				actionLog("run", "2026-01-15", 1, 1),
				actionLog("run", "2026-01-16", 1, 1),
				actionLog("run", "2026-01-17", 1, 1),
				actionLog("run", "2026-01-18", 1, 1),
			},
			want: WeeklyProgress{Completed: 7, Target: 7, Rate: 100, TargetMet: true},
		},
		{
			name: "thirds round completed but not rate",
			logs: []models.ActionLog{
				actionLog("run", "2026-01-12", 1, 3),
				actionLog("run", "2026-01-13", 1, 3),
			},
			want: WeeklyProgress{Completed: 0.7, Target: 7, Rate: 10, TargetMet: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeWeeklyProgress(output, weekStart, weekEnd, tt.logs)
			if err != nil {
				t.Fatalf("ComputeWeeklyProgress() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeWeeklyProgress() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeWeeklyProgress_FixedWeeklyWithoutDays(t *testing.T) {
	output := models.Output{ID: "idle", FrequencyType: constants.FrequencyFixedWeekly}

	got, err := ComputeWeeklyProgress(output, weekStart, weekEnd, []models.ActionLog{actionLog("idle", "2026-01-12", 1, 1)})
	if err != nil {
		t.Fatalf("ComputeWeeklyProgress() error = %v", err)
	}
	if got.Target != 0 || got.Rate != 0 || got.Completed != 0 {
		t.Errorf("ComputeWeeklyProgress() = %+v, want zero target, rate and completed", got)
	}
	if !got.TargetMet {
		t.Error("Expected empty target to count as met")
	}
}

func TestComputeWeeklyProgress_Flexible(t *testing.T) {
	output := models.Output{ID: "read", FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 3}

	tests := []struct {
		name string
		logs []models.ActionLog
		want WeeklyProgress
	}{
		{
			name: "partial",
			logs: []models.ActionLog{actionLog("read", "2026-01-13", 1, 3)},
			want: WeeklyProgress{Completed: 1, Target: 3, Rate: 33, TargetMet: false},
		},
		{
			name: "sum is capped at frequency",
			logs: []models.ActionLog{
				actionLog("read", "2026-01-13", 2, 3),
				actionLog("read", "2026-01-15", 4, 3),
			},
			want: WeeklyProgress{Completed: 3, Target: 3, Rate: 100, TargetMet: true},
		},
		{
			name: "boundaries are inclusive",
			logs: []models.ActionLog{
				actionLog("read", "2026-01-12", 1, 1),
				actionLog("read", "2026-01-18", 1, 1),
				actionLog("read", "2026-01-19", 1, 1),
			},
			want: WeeklyProgress{Completed: 2, Target: 3, Rate: 67, TargetMet: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeWeeklyProgress(output, weekStart, weekEnd, tt.logs)
			if err != nil {
				t.Fatalf("ComputeWeeklyProgress() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeWeeklyProgress() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeWeeklyProgress_FlexibleZeroTarget(t *testing.T) {
	output := models.Output{ID: "none", FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 0}

	got, err := ComputeWeeklyProgress(output, weekStart, weekEnd, []models.ActionLog{actionLog("none", "2026-01-13", 2, 2)})
	if err != nil {
		t.Fatalf("ComputeWeeklyProgress() error = %v", err)
	}
	if got.Rate != 0 || got.Target != 0 || !got.TargetMet {
		t.Errorf("ComputeWeeklyProgress() = %+v, want rate 0, target 0, met", got)
	}
}

func TestComputeWeeklyProgress_InvalidDates(t *testing.T) {
	daily := models.Output{FrequencyType: constants.FrequencyDaily}
	flexible := models.Output{FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 2}

	if _, err := ComputeWeeklyProgress(daily, "2026-01-12", "someday", nil); err == nil {
		t.Error("Expected error for malformed week end (daily)")
	}
	if _, err := ComputeWeeklyProgress(flexible, "12-01-2026", weekEnd, nil); err == nil {
		t.Error("Expected error for malformed week start (flexible)")
	}
}
