package system

import (
	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/config"
)

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a commented config.yaml template."`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration." default:"1"`
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (cmd *ConfigInitCmd) Run(ctx *cli.Context) error {
	path, err := config.WriteDefault(ctx.SettingsPath, cmd.Force)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Wrote config template to %s\n", path)
	return nil
}

type ConfigShowCmd struct{}

func (cmd *ConfigShowCmd) Run(ctx *cli.Context) error {
	rendered, err := ctx.Config.Marshal()
	if err != nil {
		return err
	}
	ctx.Println(cli.MutedStyle.Render("# " + ctx.SettingsPath))
	ctx.Print(rendered)
	return nil
}
