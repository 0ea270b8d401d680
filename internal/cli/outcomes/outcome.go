package outcomes

import (
	"fmt"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/repository"
)

type OutcomeCmd struct {
	Add     OutcomeAddCmd     `cmd:"" help:"Create an outcome."`
	List    OutcomeListCmd    `cmd:"" help:"List outcomes." default:"1"`
	Archive OutcomeArchiveCmd `cmd:"" help:"Archive an outcome and hide it from the dashboard."`
}

type OutcomeAddCmd struct {
	Title    string `arg:"" help:"Outcome title."`
	Category string `short:"c" help:"Free-form category label."`
}

func (c *OutcomeAddCmd) Run(ctx *cli.Context) error {
	outcome, err := ctx.Repo.CreateOutcome(ctx.Ctx(), repository.OutcomeInput{
		Title:    c.Title,
		Category: c.Category,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added outcome %s %s\n", outcome.Title, cli.MutedStyle.Render("("+cli.ShortID(outcome.ID)+")"))
	return nil
}

type OutcomeListCmd struct {
	All     bool `help:"Include paused and archived outcomes."`
	ShowIDs bool `help:"Show outcome IDs." name:"show-ids"`
}

func (c *OutcomeListCmd) Run(ctx *cli.Context) error {
	outcomes, err := ctx.Repo.ListOutcomes(ctx.Ctx(), c.All)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		ctx.Println("No outcomes found")
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render("Outcomes:"))
	for _, o := range outcomes {
		line := "  " + o.Title
		if o.Category != "" {
			line += cli.MutedStyle.Render(" [" + o.Category + "]")
		}
		if o.Status != constants.StatusActive {
			line += cli.WarningStyle.Render(" (" + o.Status + ")")
		}
		if c.ShowIDs {
			line += fmt.Sprintf(" (ID: %s)", o.ID)
		}
		ctx.Println(line)
	}
	return nil
}

type OutcomeArchiveCmd struct {
	Outcome string `arg:"" help:"Outcome ID, ID prefix or title."`
}

func (c *OutcomeArchiveCmd) Run(ctx *cli.Context) error {
	outcome, err := ctx.ResolveOutcome(c.Outcome)
	if err != nil {
		return err
	}
	if err := ctx.Repo.SetOutcomeStatus(ctx.Ctx(), outcome.ID, constants.StatusArchived); err != nil {
		return err
	}
	ctx.Printf("Archived outcome %s\n", outcome.Title)
	return nil
}
