package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/maestro/internal/dashboard"
	"github.com/julianstephens/maestro/internal/progress"
	"github.com/julianstephens/maestro/internal/skills"
)

// TodayCmd prints the daily dashboard.
type TodayCmd struct {
	Date string `help:"Date to show (YYYY-MM-DD). Defaults to today."`
	All  bool   `help:"Also show outputs not scheduled for the day."`
	JSON bool   `help:"Print the dashboard as JSON." name:"json"`
}

func (c *TodayCmd) Run(ctx *Context) error {
	date, err := ctx.Today(c.Date)
	if err != nil {
		return err
	}
	daily, err := ctx.Dashboard.FetchDailyDashboard(ctx.Ctx(), date)
	if err != nil {
		return err
	}
	if c.JSON {
		data, err := json.MarshalIndent(daily, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal dashboard: %w", err)
		}
		ctx.Println(string(data))
		return nil
	}
	renderDaily(ctx, daily, c.All)
	return nil
}

func renderDaily(ctx *Context, d dashboard.Daily, all bool) {
	ctx.Println(TitleStyle.Render(fmt.Sprintf("Today: %s", d.Date)))
	ctx.Println(MutedStyle.Render(fmt.Sprintf("Week %s to %s", d.WeekStart, d.WeekEnd)))
	ctx.Println()

	if len(d.Outcomes) == 0 {
		ctx.Println("No active outcomes. Add one with 'maestro outcome add'.")
		return
	}

	ctx.Printf("Done %d/%d scheduled  %s %d%%\n", d.CompletedToday, d.ScheduledToday, ProgressBar(d.CompletionRate), d.CompletionRate)
	if d.MissedYesterdayCount > 0 {
		ctx.Println(WarningStyle.Render(fmt.Sprintf("%d scheduled output(s) missed yesterday", d.MissedYesterdayCount)))
	}

	for _, outcome := range d.Outcomes {
		ctx.Println()
		header := outcome.Title
		if outcome.Category != "" {
			header += MutedStyle.Render(" [" + outcome.Category + "]")
		}
		ctx.Println(HeaderStyle.Render(header))

		shown := 0
		for _, o := range outcome.Outputs {
			if !o.ScheduledToday && !all {
				continue
			}
			shown++
			ctx.Println(outputLine(o))
		}
		if shown == 0 {
			ctx.Println(MutedStyle.Render("  Nothing scheduled"))
		}

		if next := d.SuggestionsByOutcome[outcome.ID]; len(next) > 0 {
			ctx.Println("  Practice next: " + suggestionList(next))
		}
		if summary, ok := d.SkillSummary[outcome.ID]; ok && summary.SkillsWorkedCount > 0 {
			ctx.Println(MutedStyle.Render("  " + summaryText(summary)))
		}
	}

	if len(d.Suggestions) > 0 {
		ctx.Println()
		ctx.Println(HeaderStyle.Render("Suggested focus:"))
		for i, p := range d.Suggestions {
			ctx.Printf("  %d. %s (score %s)\n", i+1, p.Skill.Name, dashboard.ScoreLabel(&p.FinalScore))
		}
	}
}

func outputLine(o dashboard.Output) string {
	mark := "○"
	if progress.IsComplete(o.TodayLog) {
		mark = SuccessStyle.Render("✓")
	} else if o.TodayLog != nil {
		mark = WarningStyle.Render("✗")
	}
	line := fmt.Sprintf("  %s %s", mark, o.Description)
	if o.TodayLog != nil {
		line += fmt.Sprintf(" %d/%d", o.TodayLog.Completed, o.TodayLog.Total)
	}
	return line + MutedStyle.Render(fmt.Sprintf("  %s  week %s", dashboard.FrequencyDescription(o.Output), weeklyText(o.WeeklyProgress)))
}

func weeklyText(p progress.WeeklyProgress) string {
	return fmt.Sprintf("%s/%d %s %d%%", strconv.FormatFloat(p.Completed, 'f', -1, 64), p.Target, ProgressBar(p.Rate), p.Rate)
}

func suggestionList(queue []skills.Priority) string {
	names := make([]string, len(queue))
	for i, p := range queue {
		names[i] = p.Skill.Name
	}
	return strings.Join(names, ", ")
}

func summaryText(s skills.Summary) string {
	text := fmt.Sprintf("This week: %d skill(s) worked", s.SkillsWorkedCount)
	if s.AverageConfidenceDelta != nil {
		text += fmt.Sprintf(", avg confidence change %+.1f", *s.AverageConfidenceDelta)
	}
	return text
}
