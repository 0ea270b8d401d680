package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func TestCreateLogDraft(t *testing.T) {
	flexible := models.Output{FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 3}
	daily := models.Output{FrequencyType: constants.FrequencyDaily, FrequencyValue: 1}

	tests := []struct {
		name   string
		output Output
		want   LogDraft
	}{
		{"flexible without log", Output{Output: flexible}, LogDraft{Completed: 0, Total: 3}},
		{"daily without log", Output{Output: daily}, LogDraft{Completed: 0, Total: 1}},
		{
			"existing log",
			Output{Output: daily, TodayLog: &models.ActionLog{Completed: 2, Total: 4, Notes: strPtr("slow")}},
			LogDraft{Completed: 2, Total: 4, Notes: "slow"},
		},
		{
			"existing log without notes",
			Output{Output: flexible, TodayLog: &models.ActionLog{Completed: 1, Total: 3}},
			LogDraft{Completed: 1, Total: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CreateLogDraft(tt.output); got != tt.want {
				t.Errorf("CreateLogDraft() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMarkDoneAndMissed(t *testing.T) {
	flexible := models.Output{FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 4}
	if got := MarkDone(flexible, "ok"); got != (LogDraft{Completed: 1, Total: 4, Notes: "ok"}) {
		t.Errorf("MarkDone() = %+v", got)
	}
	if got := MarkMissed(flexible, ""); got != (LogDraft{Completed: 0, Total: 4}) {
		t.Errorf("MarkMissed() = %+v", got)
	}

	in := MarkDone(models.Output{FrequencyType: constants.FrequencyDaily}, "").Input("out-1", "2026-01-14")
	if in.OutputID != "out-1" || in.ActionDate != "2026-01-14" || in.Completed != 1 || in.Total != 1 {
		t.Errorf("Input() = %+v", in)
	}
}

func TestFrequencyDescription(t *testing.T) {
	tests := []struct {
		output models.Output
		want   string
	}{
		{models.Output{FrequencyType: constants.FrequencyDaily}, "Daily"},
		{models.Output{FrequencyType: constants.FrequencyFlexibleWeekly, FrequencyValue: 4}, "4x/week (flexible)"},
		{
			models.Output{
				FrequencyType:    constants.FrequencyFixedWeekly,
				ScheduleWeekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			},
			"Fixed weekly (Mon, Wed, Fri)",
		},
		{models.Output{FrequencyType: constants.FrequencyFixedWeekly}, "Fixed weekly (no days)"},
		{
			models.Output{FrequencyType: constants.FrequencyFixedWeekly, ScheduleWeekdays: []time.Weekday{9}},
			"Fixed weekly (no days)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FrequencyDescription(tt.output); got != tt.want {
				t.Errorf("FrequencyDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoreLabel(t *testing.T) {
	tests := []struct {
		score *float64
		want  string
	}{
		{nil, "n/a"},
		{floatPtr(74.9), "75"},
		{floatPtr(74.5), "75"},
		{floatPtr(74.4), "74"},
		{floatPtr(0), "0"},
	}
	for _, tt := range tests {
		if got := ScoreLabel(tt.score); got != tt.want {
			t.Errorf("ScoreLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestBuildSkillDraftsFromExistingLogs(t *testing.T) {
	outcomeSkills := []models.SkillItem{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}
	existing := []models.SkillLog{
		{SkillItemID: "s2", Confidence: 4, TargetResult: floatPtr(120)},
		{SkillItemID: "s3", Confidence: 2},
	}

	drafts := BuildSkillDraftsFromExistingLogs(outcomeSkills, existing)
	want := []SkillLogDraft{
		{SkillItemID: "s1", Selected: false, Confidence: 3},
		{SkillItemID: "s2", Selected: true, Confidence: 4, TargetResult: "120"},
		{SkillItemID: "s3", Selected: true, Confidence: 2},
	}
	if len(drafts) != len(want) {
		t.Fatalf("got %d drafts, want %d", len(drafts), len(want))
	}
	for i := range want {
		if drafts[i] != want[i] {
			t.Errorf("draft %d = %+v, want %+v", i, drafts[i], want[i])
		}
	}
}

func TestBuildSelectedSkillEntries(t *testing.T) {
	t.Run("selected only", func(t *testing.T) {
		entries, err := BuildSelectedSkillEntries([]SkillLogDraft{
			{SkillItemID: "s1", Selected: true, Confidence: 4, TargetResult: " 95 "},
			{SkillItemID: "s2", Selected: false, Confidence: 1, TargetResult: "abc"},
			{SkillItemID: "s3", Selected: true, Confidence: 2},
		})
		if err != nil {
			t.Fatalf("BuildSelectedSkillEntries failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].SkillItemID != "s1" || entries[0].Confidence != 4 {
			t.Errorf("entry 0 = %+v", entries[0])
		}
		if entries[0].TargetResult == nil || *entries[0].TargetResult != 95 {
			t.Errorf("entry 0 target = %v, want 95", entries[0].TargetResult)
		}
		if entries[1].TargetResult != nil {
			t.Errorf("blank target should be nil, got %v", *entries[1].TargetResult)
		}
	})

	tests := []struct {
		name   string
		drafts []SkillLogDraft
		want   error
	}{
		{
			"non-numeric target",
			[]SkillLogDraft{{SkillItemID: "s1", Selected: true, Confidence: 3, TargetResult: "fast"}},
			ErrTargetNotNumeric,
		},
		{
			"confidence above range",
			[]SkillLogDraft{{SkillItemID: "s1", Selected: true, Confidence: 6}},
			ErrConfidenceInRange,
		},
		{
			"confidence below range",
			[]SkillLogDraft{{SkillItemID: "s1", Selected: true, Confidence: 0}},
			ErrConfidenceInRange,
		},
		{
			"target checked before confidence",
			[]SkillLogDraft{
				{SkillItemID: "s1", Selected: true, Confidence: 9},
				{SkillItemID: "s2", Selected: true, Confidence: 3, TargetResult: "x"},
			},
			ErrTargetNotNumeric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSelectedSkillEntries(tt.drafts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLogFormModel(t *testing.T) {
	fm := NewLogFormModel(LogDraft{Completed: 1, Total: 3, Notes: "n"})
	if fm.Completed != "1" || fm.Total != "3" || fm.Notes != "n" {
		t.Fatalf("NewLogFormModel() = %+v", fm)
	}

	fm.Completed = " 2 "
	draft, err := fm.Draft()
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if draft != (LogDraft{Completed: 2, Total: 3, Notes: "n"}) {
		t.Errorf("Draft() = %+v", draft)
	}

	for _, bad := range []string{"", "-1", "1.5", "two"} {
		fm.Total = bad
		if _, err := fm.Draft(); err == nil {
			t.Errorf("expected error for total %q", bad)
		}
	}
}
