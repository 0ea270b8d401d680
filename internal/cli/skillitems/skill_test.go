package skillitems

import (
	"bytes"
	"strings"
	"testing"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/config"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/dashboard"
	"github.com/julianstephens/maestro/internal/repository"
	"github.com/julianstephens/maestro/internal/storage/memory"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := memory.New()
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(store, config.Default())
	var out bytes.Buffer
	ctx.Out = &out
	ctx.Confirmer = dashboard.ConfirmFunc(func(string) (bool, error) { return true, nil })

	if _, err := ctx.Repo.CreateOutcome(ctx.Ctx(), repository.OutcomeInput{Title: "Guitar"}); err != nil {
		t.Fatalf("CreateOutcome failed: %v", err)
	}
	return ctx, &out
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string      { return &s }

func TestSkillAddAndList(t *testing.T) {
	ctx, out := setupTestDB(t)

	add := &SkillAddCmd{Outcome: "Guitar", Name: "Alternate picking", Confidence: 2, TargetLabel: strPtr("bpm"), TargetValue: floatPtr(120)}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("SkillAddCmd.Run() error = %v", err)
	}
	if err := (&SkillAddCmd{Outcome: "Guitar", Name: "alternate picking", Confidence: 3}).Run(ctx); err == nil {
		t.Error("expected duplicate name error")
	}
	if err := (&SkillAddCmd{Outcome: "Guitar", Name: "Vibrato", Confidence: 7}).Run(ctx); err == nil {
		t.Error("expected confidence range error")
	}

	out.Reset()
	if err := (&SkillListCmd{}).Run(ctx); err != nil {
		t.Fatalf("SkillListCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "[active] Alternate picking - target 120 bpm") {
		t.Errorf("unexpected list output %q", out.String())
	}
}

func TestSkillEditAndStage(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&SkillAddCmd{Outcome: "Guitar", Name: "Vibrato", Confidence: 3, TargetValue: floatPtr(5)}).Run(ctx); err != nil {
		t.Fatalf("SkillAddCmd.Run() error = %v", err)
	}

	edit := &SkillEditCmd{Skill: "vibrato", Name: strPtr("Wide vibrato"), Confidence: intPtr(4), ClearTarget: true}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("SkillEditCmd.Run() error = %v", err)
	}
	skill, err := ctx.ResolveSkill("Wide vibrato")
	if err != nil {
		t.Fatalf("ResolveSkill failed: %v", err)
	}
	if skill.InitialConfidence != 4 || skill.TargetValue != nil {
		t.Errorf("unexpected skill after edit %+v", skill)
	}

	if err := (&SkillStageCmd{Skill: "Wide vibrato", Stage: "archived"}).Run(ctx); err != nil {
		t.Fatalf("SkillStageCmd.Run() error = %v", err)
	}
	out.Reset()
	if err := (&SkillListCmd{}).Run(ctx); err != nil {
		t.Fatalf("SkillListCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No skills found") {
		t.Errorf("archived skill listed: %q", out.String())
	}

	// The name is free again once the old skill is archived
	if err := (&SkillAddCmd{Outcome: "Guitar", Name: "Wide vibrato", Confidence: 3}).Run(ctx); err != nil {
		t.Errorf("re-adding archived name failed: %v", err)
	}
}

func intPtr(v int) *int { return &v }

func TestSkillLogPromptsGraduation(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&SkillAddCmd{Outcome: "Guitar", Name: "Vibrato", Confidence: 3}).Run(ctx); err != nil {
		t.Fatalf("SkillAddCmd.Run() error = %v", err)
	}

	for range 3 {
		if err := (&SkillLogCmd{Skill: "Vibrato", Confidence: 5}).Run(ctx); err != nil {
			t.Fatalf("SkillLogCmd.Run() error = %v", err)
		}
	}
	skill, err := ctx.ResolveSkill("Vibrato")
	if err != nil {
		t.Fatalf("ResolveSkill failed: %v", err)
	}
	if skill.Stage != constants.StageReview {
		t.Errorf("Stage = %q, want review", skill.Stage)
	}

	out.Reset()
	if err := (&SkillShowCmd{Skill: "Vibrato"}).Run(ctx); err != nil {
		t.Fatalf("SkillShowCmd.Run() error = %v", err)
	}
	if strings.Count(out.String(), "  confidence 5") != 3 {
		t.Errorf("expected three logs in show output:\n%s", out.String())
	}
}

func TestSkillGraduate(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&SkillAddCmd{Outcome: "Guitar", Name: "Vibrato", Confidence: 3}).Run(ctx); err != nil {
		t.Fatalf("SkillAddCmd.Run() error = %v", err)
	}

	if err := (&SkillGraduateCmd{Skill: "Vibrato"}).Run(ctx); err == nil {
		t.Error("expected error for ineligible skill")
	}
	if err := (&SkillGraduateCmd{Skill: "Vibrato", Force: true}).Run(ctx); err != nil {
		t.Fatalf("SkillGraduateCmd.Run(force) error = %v", err)
	}
	if err := (&SkillGraduateCmd{Skill: "Vibrato", Force: true}).Run(ctx); err == nil {
		t.Error("expected error for a skill already in review")
	}
}

func TestSkillPriority(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&SkillPriorityCmd{}).Run(ctx); err != nil {
		t.Fatalf("SkillPriorityCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No skills to rank") {
		t.Errorf("unexpected output %q", out.String())
	}

	for _, name := range []string{"Vibrato", "Bends", "Slides"} {
		if err := (&SkillAddCmd{Outcome: "Guitar", Name: name, Confidence: 3}).Run(ctx); err != nil {
			t.Fatalf("SkillAddCmd.Run() error = %v", err)
		}
	}
	out.Reset()
	if err := (&SkillPriorityCmd{Outcome: "Guitar", Limit: 2}).Run(ctx); err != nil {
		t.Fatalf("SkillPriorityCmd.Run() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("got %d lines, want header plus 2 rows:\n%s", len(lines), out.String())
	}
}
