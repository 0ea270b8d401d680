package skillitems

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/dashboard"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/repository"
)

type SkillCmd struct {
	Add      SkillAddCmd      `cmd:"" help:"Add a skill to an outcome."`
	List     SkillListCmd     `cmd:"" help:"List skills grouped by outcome." default:"1"`
	Edit     SkillEditCmd     `cmd:"" help:"Edit a skill's name, confidence or target."`
	Stage    SkillStageCmd    `cmd:"" help:"Move a skill to another stage."`
	Log      SkillLogCmd      `cmd:"" help:"Record a confidence rating outside of an action log."`
	Show     SkillShowCmd     `cmd:"" help:"Show a skill with its priority and recent logs."`
	Priority SkillPriorityCmd `cmd:"" help:"Rank skills by practice urgency."`
	Graduate SkillGraduateCmd `cmd:"" help:"Move an eligible skill to review."`
}

type SkillAddCmd struct {
	Outcome     string   `arg:"" help:"Outcome ID, ID prefix or title."`
	Name        string   `arg:"" help:"Skill name, unique within the outcome."`
	Confidence  int      `short:"c" help:"Initial confidence (1-5)." default:"3"`
	TargetLabel *string  `help:"What the target measures, e.g. bpm."`
	TargetValue *float64 `help:"Target to reach."`
}

func (c *SkillAddCmd) Run(ctx *cli.Context) error {
	outcome, err := ctx.ResolveOutcome(c.Outcome)
	if err != nil {
		return err
	}
	skill, err := ctx.Repo.CreateSkillItem(ctx.Ctx(), repository.SkillInput{
		OutcomeID:         outcome.ID,
		Name:              c.Name,
		InitialConfidence: c.Confidence,
		TargetLabel:       c.TargetLabel,
		TargetValue:       c.TargetValue,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added skill %s to %s %s\n", skill.Name, outcome.Title, cli.MutedStyle.Render("("+cli.ShortID(skill.ID)+")"))
	return nil
}

type SkillListCmd struct {
	Outcome string `short:"o" help:"Only list skills of this outcome."`
	All     bool   `help:"Include archived skills."`
	ShowIDs bool   `help:"Show skill IDs." name:"show-ids"`
}

func (c *SkillListCmd) Run(ctx *cli.Context) error {
	outcomes, err := ctx.Repo.ListOutcomes(ctx.Ctx(), c.All)
	if err != nil {
		return err
	}
	if c.Outcome != "" {
		outcome, err := ctx.ResolveOutcome(c.Outcome)
		if err != nil {
			return err
		}
		outcomes = []models.Outcome{outcome}
	}

	found := false
	for _, outcome := range outcomes {
		set, err := ctx.Repo.FetchSkillsForOutcome(ctx.Ctx(), outcome.ID)
		if err != nil {
			return err
		}
		var shown []models.SkillItem
		for _, s := range set.Skills {
			if c.All || s.Stage != constants.StageArchived {
				shown = append(shown, s)
			}
		}
		if len(shown) == 0 {
			continue
		}
		found = true
		ctx.Println(cli.HeaderStyle.Render(outcome.Title))
		for _, s := range shown {
			line := fmt.Sprintf("  [%s] %s", s.Stage, s.Name)
			if t := targetText(s); t != "" {
				line += " - target " + t
			}
			if c.ShowIDs {
				line += fmt.Sprintf(" (ID: %s)", s.ID)
			}
			ctx.Println(line)
		}
	}
	if !found {
		ctx.Println("No skills found")
	}
	return nil
}

func targetText(s models.SkillItem) string {
	if s.TargetValue == nil {
		return ""
	}
	target := strconv.FormatFloat(*s.TargetValue, 'f', -1, 64)
	if s.TargetLabel != nil {
		target += " " + *s.TargetLabel
	}
	return target
}

type SkillEditCmd struct {
	Skill       string   `arg:"" help:"Skill ID, ID prefix or name."`
	Name        *string  `help:"New name."`
	Confidence  *int     `short:"c" help:"New initial confidence (1-5)."`
	TargetLabel *string  `help:"New target label."`
	TargetValue *float64 `help:"New target value."`
	ClearTarget bool     `help:"Remove the target label and value."`
}

func (c *SkillEditCmd) Run(ctx *cli.Context) error {
	skill, err := ctx.ResolveSkill(c.Skill)
	if err != nil {
		return err
	}

	input := repository.SkillInput{
		OutcomeID:         skill.OutcomeID,
		Name:              skill.Name,
		InitialConfidence: skill.InitialConfidence,
		TargetLabel:       skill.TargetLabel,
		TargetValue:       skill.TargetValue,
	}
	if c.ClearTarget {
		input.TargetLabel, input.TargetValue = nil, nil
	}
	if c.Name != nil {
		input.Name = *c.Name
	}
	if c.Confidence != nil {
		input.InitialConfidence = *c.Confidence
	}
	if c.TargetLabel != nil {
		input.TargetLabel = c.TargetLabel
	}
	if c.TargetValue != nil {
		input.TargetValue = c.TargetValue
	}

	updated, err := ctx.Repo.UpdateSkillItem(ctx.Ctx(), skill.ID, input)
	if err != nil {
		return err
	}
	ctx.Printf("Updated skill %s\n", updated.Name)
	return nil
}

type SkillStageCmd struct {
	Skill string `arg:"" help:"Skill ID, ID prefix or name."`
	Stage string `arg:"" help:"New stage (active|review|archived)." enum:"active,review,archived"`
}

func (c *SkillStageCmd) Run(ctx *cli.Context) error {
	skill, err := ctx.ResolveSkill(c.Skill)
	if err != nil {
		return err
	}
	updated, err := ctx.Repo.SetSkillStage(ctx.Ctx(), skill.ID, constants.SkillStage(c.Stage))
	if err != nil {
		return err
	}
	ctx.Printf("Moved %s to %s\n", updated.Name, updated.Stage)
	return nil
}

type SkillLogCmd struct {
	Skill      string   `arg:"" help:"Skill ID, ID prefix or name."`
	Confidence int      `short:"c" help:"Confidence (1-5)." required:""`
	Target     *float64 `short:"t" help:"Target result reached."`
}

func (c *SkillLogCmd) Run(ctx *cli.Context) error {
	skill, err := ctx.ResolveSkill(c.Skill)
	if err != nil {
		return err
	}
	if skill.Stage == constants.StageArchived {
		return fmt.Errorf("skill %s is archived", skill.Name)
	}
	entry := repository.SkillLogEntry{SkillItemID: skill.ID, Confidence: c.Confidence, TargetResult: c.Target}
	if _, err := ctx.Repo.InsertSkillLog(ctx.Ctx(), "", entry, ctx.Clock()); err != nil {
		return err
	}
	ctx.Printf("%s Logged %s at confidence %d\n", cli.SuccessStyle.Render("✓"), skill.Name, c.Confidence)
	return ctx.Dashboard.PromptGraduation(ctx.Ctx(), []string{skill.ID}, []models.SkillItem{skill}, ctx.ConfirmerOrDefault())
}

type SkillGraduateCmd struct {
	Skill string `arg:"" help:"Skill ID, ID prefix or name."`
	Force bool   `help:"Move to review even when the skill is not eligible."`
}

func (c *SkillGraduateCmd) Run(ctx *cli.Context) error {
	skill, err := ctx.ResolveSkill(c.Skill)
	if err != nil {
		return err
	}
	if skill.Stage != constants.StageActive {
		return fmt.Errorf("skill %s is %s, only active skills graduate", skill.Name, skill.Stage)
	}
	if !c.Force {
		eligible, err := ctx.Dashboard.CheckGraduationEligibility(ctx.Ctx(), skill.ID)
		if err != nil {
			return err
		}
		if !eligible {
			return fmt.Errorf("%s is not eligible yet (needs %d recent logs at confidence %d+); use --force to override",
				skill.Name, constants.GraduationLogCount, constants.GraduationMinConfidence)
		}
	}
	if _, err := ctx.Repo.SetSkillStage(ctx.Ctx(), skill.ID, constants.StageReview); err != nil {
		return err
	}
	ctx.Printf("%s %s moved to review\n", cli.SuccessStyle.Render("✓"), skill.Name)
	return nil
}

// scoreOf renders a final score for tables.
func scoreOf(v float64) string {
	return dashboard.ScoreLabel(&v)
}
