package settings

import (
	"fmt"
	"time"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/utils"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"List current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Repo.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	ctx.Println("Current Settings:")
	ctx.Printf("  Timezone:      %s\n", settings.Timezone)
	ctx.Printf("  Start of Week: %s\n", time.Weekday(settings.StartOfWeek))
	return nil
}

type SettingsSetCmd struct {
	Timezone    *string `help:"IANA timezone name, or Local for the system timezone."`
	StartOfWeek *string `help:"First day of the week (sun..sat or 0-6)."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Repo.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.StartOfWeek != nil {
		days, err := cli.ParseWeekdays(*c.StartOfWeek)
		if err != nil {
			return err
		}
		if len(days) != 1 {
			return fmt.Errorf("start of week must name exactly one day")
		}
		settings.StartOfWeek = int(days[0])
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --timezone or --start-of-week to update settings.")
		return nil
	}
	if err := ctx.Repo.SaveSettings(ctx.Ctx(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
