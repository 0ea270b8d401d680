package cli

import "fmt"

// WeekCmd prints the weekly review.
type WeekCmd struct {
	Date string `help:"Any date in the week to show (YYYY-MM-DD). Defaults to today."`
}

func (c *WeekCmd) Run(ctx *Context) error {
	date, err := ctx.Today(c.Date)
	if err != nil {
		return err
	}
	week, err := ctx.Dashboard.FetchWeek(ctx.Ctx(), date)
	if err != nil {
		return err
	}

	ctx.Println(TitleStyle.Render(fmt.Sprintf("Week %s to %s", week.WeekStart, week.WeekEnd)))
	if len(week.Outcomes) == 0 {
		ctx.Println("No active outcomes.")
		return nil
	}

	for _, outcome := range week.Outcomes {
		ctx.Println()
		ctx.Println(HeaderStyle.Render(outcome.Title))
		outputs := week.Outputs[outcome.ID]
		if len(outputs) == 0 {
			ctx.Println(MutedStyle.Render("  No active outputs"))
		}
		for _, ow := range outputs {
			met := ""
			if ow.Progress.TargetMet {
				met = SuccessStyle.Render(" ✓")
			}
			ctx.Printf("  %-28s %s%s\n", ow.Output.Description, weeklyText(ow.Progress), met)
		}

		summary := week.SkillSummary[outcome.ID]
		if summary.SkillsWorkedCount == 0 {
			ctx.Println(MutedStyle.Render("  No skills worked this week"))
			continue
		}
		ctx.Println("  " + summaryText(summary))
	}
	return nil
}
