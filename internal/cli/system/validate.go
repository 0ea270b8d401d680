package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/validation"
)

// ErrConflicts is returned when validation finds problems that remain unfixed.
var ErrConflicts = errors.New("validation found conflicts")

type ValidateCmd struct {
	Fix bool `help:"Archive duplicate skills and delete orphan skill logs."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	snapshot, err := validation.Collect(ctx.Ctx(), ctx.Repo)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	validator := validation.New()
	result := validator.Validate(snapshot)
	ctx.Print(result.FormatReport())
	if !result.HasConflicts() {
		return nil
	}
	if !c.Fix {
		return ErrConflicts
	}

	var actions []validation.FixAction
	actions = append(actions, validation.AutoFixDuplicateSkills(result.Conflicts, snapshot.Skills, func(id string) error {
		_, err := ctx.Repo.SetSkillStage(ctx.Ctx(), id, constants.StageArchived)
		return err
	})...)
	actions = append(actions, validation.AutoFixOrphanSkillLogs(result.Conflicts, func(ids []string) (int, error) {
		return ctx.Repo.DeleteSkillLogs(ctx.Ctx(), ids)
	})...)

	ctx.Println()
	for _, a := range actions {
		ctx.Printf("- %s\n", a.Action)
	}

	snapshot, err = validation.Collect(ctx.Ctx(), ctx.Repo)
	if err != nil {
		return fmt.Errorf("failed to reload data: %w", err)
	}
	if remaining := validator.Validate(snapshot); remaining.HasConflicts() {
		ctx.Printf("\n%d conflict(s) need manual attention.\n", len(remaining.Conflicts))
		return ErrConflicts
	}
	ctx.Println("\nAll conflicts fixed.")
	return nil
}
