package skillitems

import (
	"fmt"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/skills"
)

const recentLogLimit = 10

type SkillShowCmd struct {
	Skill string `arg:"" help:"Skill ID, ID prefix or name."`
}

func (c *SkillShowCmd) Run(ctx *cli.Context) error {
	skill, err := ctx.ResolveSkill(c.Skill)
	if err != nil {
		return err
	}
	outcome, err := ctx.Repo.GetOutcome(ctx.Ctx(), skill.OutcomeID)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(skill.Name))
	ctx.Printf("  Outcome:            %s\n", outcome.Title)
	ctx.Printf("  Stage:              %s\n", skill.Stage)
	ctx.Printf("  Initial confidence: %d\n", skill.InitialConfidence)
	if t := targetText(skill); t != "" {
		ctx.Printf("  Target:             %s\n", t)
	}

	if skill.Stage != constants.StageArchived {
		queue, err := ctx.Dashboard.PriorityQueue(ctx.Ctx(), []string{skill.OutcomeID})
		if err != nil {
			return err
		}
		if p, ok := skills.FindPriority(queue, skill.ID); ok {
			ctx.Printf("  Priority score:     %s (confidence %d, %d day(s) since last practice)\n",
				scoreOf(p.FinalScore), p.LatestConfidence, p.DaysSinceLast)
		}
	}

	logs, err := ctx.Repo.FetchLatestSkillLogs(ctx.Ctx(), skill.ID, recentLogLimit)
	if err != nil {
		return err
	}
	ctx.Println()
	if len(logs) == 0 {
		ctx.Println(cli.MutedStyle.Render("No logs yet"))
		return nil
	}

	var actionIDs []string
	for _, l := range logs {
		if l.ActionLogID != nil {
			actionIDs = append(actionIDs, *l.ActionLogID)
		}
	}
	actions, err := ctx.Repo.FetchSkillActionContext(ctx.Ctx(), actionIDs)
	if err != nil {
		return err
	}

	ctx.Println(cli.HeaderStyle.Render("Recent logs:"))
	for _, l := range logs {
		line := fmt.Sprintf("  %s  confidence %d", l.LoggedAt.Local().Format("2006-01-02 15:04"), l.Confidence)
		if l.TargetResult != nil {
			line += fmt.Sprintf("  result %g", *l.TargetResult)
		}
		if l.ActionLogID != nil {
			if a, ok := actions[*l.ActionLogID]; ok && a.OutputDescription != nil {
				line += cli.MutedStyle.Render(fmt.Sprintf("  (%s on %s)", *a.OutputDescription, a.ActionDate))
			}
		}
		ctx.Println(line)
	}
	return nil
}

type SkillPriorityCmd struct {
	Outcome string `short:"o" help:"Only rank skills of this outcome."`
	Limit   int    `short:"n" help:"Maximum number of skills to show (0 for all)." default:"0"`
}

func (c *SkillPriorityCmd) Run(ctx *cli.Context) error {
	var outcomeIDs []string
	if c.Outcome != "" {
		outcome, err := ctx.ResolveOutcome(c.Outcome)
		if err != nil {
			return err
		}
		outcomeIDs = []string{outcome.ID}
	}
	queue, err := ctx.Dashboard.PriorityQueue(ctx.Ctx(), outcomeIDs)
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		ctx.Println("No skills to rank")
		return nil
	}
	if c.Limit > 0 {
		queue = skills.TopSuggestions(queue, c.Limit)
	}

	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-4s %-6s %-8s %-6s %s", "#", "SCORE", "CONF", "DAYS", "SKILL")))
	for i, p := range queue {
		name := p.Skill.Name
		if p.Skill.Stage == constants.StageReview {
			name += cli.MutedStyle.Render(" (review)")
		}
		ctx.Printf("%-4d %-6s %-8d %-6d %s\n", i+1, scoreOf(p.FinalScore), p.LatestConfidence, p.DaysSinceLast, name)
	}
	return nil
}
