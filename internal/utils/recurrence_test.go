package utils

import (
	"testing"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
)

func day(value string) time.Time {
	d, _ := ParseLocalDate(value)
	return d
}

func TestScheduledOnDate_Daily(t *testing.T) {
	output := models.Output{ID: "o1", FrequencyType: constants.FrequencyDaily}

	for _, date := range []string{"2026-01-12", "2026-01-17", "2026-01-18"} {
		if !ScheduledOnDate(output, day(date)) {
			t.Errorf("Expected daily output to be scheduled on %s", date)
		}
	}
}

func TestScheduledOnDate_FixedWeekly(t *testing.T) {
	output := models.Output{
		ID:               "o2",
		FrequencyType:    constants.FrequencyFixedWeekly,
		ScheduleWeekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}

	// 2026-01-12 is a Monday
	tests := []struct {
		date string
		want bool
	}{
		{"2026-01-12", true},
		{"2026-01-13", false},
		{"2026-01-14", true},
		{"2026-01-15", false},
		{"2026-01-16", true},
		{"2026-01-17", false},
		{"2026-01-18", false},
	}

	for _, tt := range tests {
		if got := ScheduledOnDate(output, day(tt.date)); got != tt.want {
			t.Errorf("ScheduledOnDate(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestScheduledOnDate_FixedWeeklyWithoutDays(t *testing.T) {
	output := models.Output{ID: "o3", FrequencyType: constants.FrequencyFixedWeekly}

	if ScheduledOnDate(output, day("2026-01-12")) {
		t.Error("Expected fixed weekly output without weekdays never to be scheduled")
	}
}

func TestScheduledOnDate_FlexibleAndUnknown(t *testing.T) {
	flexible := models.Output{ID: "o4", FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 3}
	unknown := models.Output{ID: "o5", FrequencyType: constants.FrequencyType("fortnightly")}

	if !ScheduledOnDate(flexible, day("2026-01-13")) {
		t.Error("Expected flexible weekly output to be schedulable on any day")
	}
	if !ScheduledOnDate(unknown, day("2026-01-13")) {
		t.Error("Expected unknown frequency to be treated as always scheduled")
	}
}

func TestScheduledOnLocalDate(t *testing.T) {
	output := models.Output{
		FrequencyType:    constants.FrequencyFixedWeekly,
		ScheduleWeekdays: []time.Weekday{time.Sunday},
	}

	got, err := ScheduledOnLocalDate(output, "2026-01-18")
	if err != nil {
		t.Fatalf("ScheduledOnLocalDate() error = %v", err)
	}
	if !got {
		t.Error("Expected output to be scheduled on Sunday 2026-01-18")
	}

	if _, err := ScheduledOnLocalDate(output, "18/01/2026"); err == nil {
		t.Error("ScheduledOnLocalDate() expected error for malformed date")
	}
}
