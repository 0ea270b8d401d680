package outcomes

import (
	"fmt"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/dashboard"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/repository"
)

type OutputCmd struct {
	Add    OutputAddCmd    `cmd:"" help:"Create an output under an outcome."`
	List   OutputListCmd   `cmd:"" help:"List outputs grouped by outcome." default:"1"`
	Pause  OutputPauseCmd  `cmd:"" help:"Pause an output."`
	Resume OutputResumeCmd `cmd:"" help:"Resume a paused output."`
}

type OutputAddCmd struct {
	Outcome     string `arg:"" help:"Outcome ID, ID prefix or title."`
	Description string `arg:"" help:"What gets done."`
	Frequency   string `short:"f" help:"Frequency type (daily|fixed_weekly|flexible_weekly)." default:"daily"`
	Value       int    `short:"v" help:"Times per week for flexible_weekly outputs." default:"0"`
	Days        string `short:"w" help:"Comma-separated weekdays for fixed_weekly outputs."`
	Starter     bool   `help:"Mark as a starter output."`
	Sort        int    `help:"Sort order within the outcome." default:"0"`
}

func (c *OutputAddCmd) Validate() error {
	freq, ok := constants.ParseFrequencyType(c.Frequency)
	if !ok {
		return fmt.Errorf("unknown frequency %q (expected daily, fixed_weekly or flexible_weekly)", c.Frequency)
	}
	if freq == constants.FrequencyFixedWeekly && c.Days == "" {
		return fmt.Errorf("--days must be specified for fixed_weekly outputs")
	}
	if freq == constants.FrequencyFlexibleWeekly && c.Value < 1 {
		return fmt.Errorf("--value must be at least 1 for flexible_weekly outputs")
	}
	return nil
}

func (c *OutputAddCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	outcome, err := ctx.ResolveOutcome(c.Outcome)
	if err != nil {
		return err
	}
	days, err := cli.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	output, err := ctx.Repo.CreateOutput(ctx.Ctx(), repository.OutputInput{
		OutcomeID:        outcome.ID,
		Description:      c.Description,
		FrequencyType:    constants.FrequencyType(c.Frequency),
		FrequencyValue:   c.Value,
		ScheduleWeekdays: days,
		IsStarter:        c.Starter,
		SortOrder:        c.Sort,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added output %s to %s: %s\n", output.Description, outcome.Title, dashboard.FrequencyDescription(output))
	return nil
}

type OutputListCmd struct {
	All     bool `help:"Include paused outputs and inactive outcomes."`
	ShowIDs bool `help:"Show output IDs." name:"show-ids"`
}

func (c *OutputListCmd) Run(ctx *cli.Context) error {
	outcomes, err := ctx.Repo.ListOutcomes(ctx.Ctx(), c.All)
	if err != nil {
		return err
	}
	ids := make([]string, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.ID
	}
	outputs, err := ctx.Repo.ListOutputs(ctx.Ctx(), ids, !c.All)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		ctx.Println("No outputs found")
		return nil
	}

	byOutcome := make(map[string][]models.Output)
	for _, o := range outputs {
		byOutcome[o.OutcomeID] = append(byOutcome[o.OutcomeID], o)
	}
	for _, outcome := range outcomes {
		list := byOutcome[outcome.ID]
		if len(list) == 0 {
			continue
		}
		ctx.Println(cli.HeaderStyle.Render(outcome.Title))
		for _, o := range list {
			line := fmt.Sprintf("  %s - %s", o.Description, dashboard.FrequencyDescription(o))
			if o.IsStarter {
				line += cli.MutedStyle.Render(" (starter)")
			}
			if o.Status != constants.StatusActive {
				line += cli.WarningStyle.Render(" (" + o.Status + ")")
			}
			if c.ShowIDs {
				line += fmt.Sprintf(" (ID: %s)", o.ID)
			}
			ctx.Println(line)
		}
	}
	return nil
}

type OutputPauseCmd struct {
	Output string `arg:"" help:"Output ID, ID prefix or description."`
}

func (c *OutputPauseCmd) Run(ctx *cli.Context) error {
	return setOutputStatus(ctx, c.Output, constants.StatusPaused, "Paused")
}

type OutputResumeCmd struct {
	Output string `arg:"" help:"Output ID, ID prefix or description."`
}

func (c *OutputResumeCmd) Run(ctx *cli.Context) error {
	return setOutputStatus(ctx, c.Output, constants.StatusActive, "Resumed")
}

func setOutputStatus(ctx *cli.Context, ref, status, verb string) error {
	output, err := ctx.ResolveOutput(ref)
	if err != nil {
		return err
	}
	if err := ctx.Repo.SetOutputStatus(ctx.Ctx(), output.ID, status); err != nil {
		return err
	}
	ctx.Printf("%s output %s\n", verb, output.Description)
	return nil
}
