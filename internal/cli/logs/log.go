package logs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/dashboard"
	"github.com/julianstephens/maestro/internal/models"
)

// LogCmd records how much of an output got done on a date.
type LogCmd struct {
	Output      string   `arg:"" help:"Output ID, ID prefix or description."`
	Date        string   `help:"Date to log (YYYY-MM-DD). Defaults to today."`
	Completed   *int     `short:"c" help:"Units completed."`
	Total       *int     `short:"t" help:"Units planned."`
	Notes       *string  `short:"n" help:"Notes for the day."`
	Skill       []string `short:"s" help:"Skill practiced, as NAME=CONFIDENCE or NAME=CONFIDENCE:TARGET. Repeatable."`
	Interactive bool     `short:"i" help:"Edit the log and skill ratings in a form."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	date, err := ctx.Today(c.Date)
	if err != nil {
		return err
	}
	output, err := ctx.ResolveOutput(c.Output)
	if err != nil {
		return err
	}
	existing, err := ctx.Repo.FindActionLog(ctx.Ctx(), output.ID, date)
	if err != nil {
		return err
	}

	draft := dashboard.CreateLogDraft(dashboard.Output{Output: output, TodayLog: existing})
	if c.Completed != nil {
		draft.Completed = *c.Completed
	}
	if c.Total != nil {
		draft.Total = *c.Total
	}
	if c.Notes != nil {
		draft.Notes = *c.Notes
	}

	if c.Interactive {
		fm := dashboard.NewLogFormModel(draft)
		title := fmt.Sprintf("%s on %s", output.Description, date)
		if err := dashboard.NewLogForm(title, fm).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ctx.Println("Cancelled.")
				return nil
			}
			return err
		}
		if draft, err = fm.Draft(); err != nil {
			return err
		}
	}

	return saveAndRate(ctx, output, date, draft, c.Skill, c.Interactive)
}

// DoneCmd logs one unit completed.
type DoneCmd struct {
	Output string   `arg:"" help:"Output ID, ID prefix or description."`
	Date   string   `help:"Date to log (YYYY-MM-DD). Defaults to today."`
	Notes  string   `short:"n" help:"Notes for the day."`
	Skill  []string `short:"s" help:"Skill practiced, as NAME=CONFIDENCE or NAME=CONFIDENCE:TARGET. Repeatable."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	date, err := ctx.Today(c.Date)
	if err != nil {
		return err
	}
	output, err := ctx.ResolveOutput(c.Output)
	if err != nil {
		return err
	}
	return saveAndRate(ctx, output, date, dashboard.MarkDone(output, c.Notes), c.Skill, false)
}

// MissedCmd logs nothing done, clearing any skill ratings of the day.
type MissedCmd struct {
	Output string `arg:"" help:"Output ID, ID prefix or description."`
	Date   string `help:"Date to log (YYYY-MM-DD). Defaults to today."`
	Notes  string `short:"n" help:"Notes for the day."`
}

func (c *MissedCmd) Run(ctx *cli.Context) error {
	date, err := ctx.Today(c.Date)
	if err != nil {
		return err
	}
	output, err := ctx.ResolveOutput(c.Output)
	if err != nil {
		return err
	}
	return saveAndRate(ctx, output, date, dashboard.MarkMissed(output, c.Notes), nil, false)
}

func saveAndRate(ctx *cli.Context, output models.Output, date string, draft dashboard.LogDraft, ratings []string, interactive bool) error {
	saved, err := ctx.Dashboard.SaveActionLog(ctx.Ctx(), draft.Input(output.ID, date))
	if err != nil {
		return err
	}
	ctx.Printf("%s %s on %s: %d/%d\n", cli.SuccessStyle.Render("✓"), output.Description, date, saved.Completed, max(0, draft.Total))

	if saved.Completed == 0 || (len(ratings) == 0 && !interactive) {
		return nil
	}

	set, err := ctx.Repo.FetchSkillsForOutcome(ctx.Ctx(), output.OutcomeID)
	if err != nil {
		return err
	}
	live := make([]models.SkillItem, 0, len(set.Skills))
	for _, s := range set.Skills {
		if s.Stage != constants.StageArchived {
			live = append(live, s)
		}
	}
	if len(live) == 0 {
		if len(ratings) > 0 {
			return fmt.Errorf("outcome has no skills to rate")
		}
		return nil
	}

	existing, err := ctx.Repo.FetchSkillLogsByActionIDs(ctx.Ctx(), []string{saved.ActionLogID})
	if err != nil {
		return err
	}
	drafts := dashboard.BuildSkillDraftsFromExistingLogs(live, existing)

	if interactive {
		if err := dashboard.NewSkillLogForm(live, drafts).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ctx.Println("Skill ratings left unchanged.")
				return nil
			}
			return err
		}
	}
	if err := applyRatings(live, drafts, ratings); err != nil {
		return err
	}

	entries, err := dashboard.BuildSelectedSkillEntries(drafts)
	if err != nil {
		return err
	}
	result, err := ctx.Dashboard.ReplaceSkillLogsForAction(ctx.Ctx(), saved.ActionLogID, entries)
	if err != nil {
		return err
	}
	ctx.Printf("  Rated %d skill(s)\n", len(entries))

	return ctx.Dashboard.PromptGraduation(ctx.Ctx(), result.CreatedSkillIDs, live, ctx.ConfirmerOrDefault())
}

// applyRatings selects and fills the drafts named by NAME=CONFIDENCE[:TARGET]
// flags. Skills are matched by name ignoring case, then by ID prefix.
func applyRatings(skillItems []models.SkillItem, drafts []dashboard.SkillLogDraft, ratings []string) error {
	for _, raw := range ratings {
		eq := strings.LastIndex(raw, "=")
		if eq <= 0 {
			return fmt.Errorf("invalid skill rating %q (expected NAME=CONFIDENCE[:TARGET])", raw)
		}
		name := strings.TrimSpace(raw[:eq])
		confStr, target, _ := strings.Cut(raw[eq+1:], ":")
		confidence, err := strconv.Atoi(strings.TrimSpace(confStr))
		if err != nil {
			return fmt.Errorf("invalid confidence in %q: %w", raw, err)
		}

		idx := ratedSkillIndex(skillItems, name)
		if idx == -1 {
			return fmt.Errorf("no skill named %q under this outcome", name)
		}
		drafts[idx].Selected = true
		drafts[idx].Confidence = confidence
		drafts[idx].TargetResult = target
	}
	return nil
}

func ratedSkillIndex(skillItems []models.SkillItem, ref string) int {
	for i, s := range skillItems {
		if strings.EqualFold(s.Name, ref) {
			return i
		}
	}
	for i, s := range skillItems {
		if strings.HasPrefix(s.ID, ref) {
			return i
		}
	}
	return -1
}
