package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/cli/logs"
	"github.com/julianstephens/maestro/internal/cli/outcomes"
	"github.com/julianstephens/maestro/internal/cli/settings"
	"github.com/julianstephens/maestro/internal/cli/skillitems"
	"github.com/julianstephens/maestro/internal/cli/system"
	"github.com/julianstephens/maestro/internal/config"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database path or PostgreSQL connection string. Overrides MAESTRO_DB_CONNECTION, the keyring and config.yaml. For PostgreSQL, credentials must NOT be embedded in the connection string." type:"string"`
	Settings string `help:"Path to config.yaml." type:"string" default:"${settings_path}"`
	Debug    bool   `help:"Write debug logs to stderr and the log file."`

	Init        system.InitCmd       `cmd:"" help:"Initialize maestro storage."`
	Migrate     system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor      system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate    system.ValidateCmd   `cmd:"" help:"Check stored data for conflicts."`
	Backup      system.BackupCmd     `cmd:"" help:"Back up the sqlite database."`
	DebugCmd    system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Keyring     system.KeyringCmd    `cmd:"" help:"Manage the connection string stored in the OS keyring."`
	ConfigCmd   system.ConfigCmd     `cmd:"" name:"config" help:"Manage config.yaml."`
	SettingsCmd settings.SettingsCmd `cmd:"" name:"settings" help:"Manage application settings."`

	Today   cli.TodayCmd        `cmd:"" help:"Show the daily dashboard." default:"withargs"`
	Week    cli.WeekCmd         `cmd:"" help:"Show weekly output progress and skill summary."`
	Outcome outcomes.OutcomeCmd `cmd:"" help:"Manage outcomes."`
	Output  outcomes.OutputCmd  `cmd:"" help:"Manage outputs."`
	Log     logs.LogCmd         `cmd:"" help:"Log progress on an output."`
	Done    logs.DoneCmd        `cmd:"" help:"Mark an output done for the day."`
	Missed  logs.MissedCmd      `cmd:"" help:"Mark an output missed for the day."`
	Skill   skillitems.SkillCmd `cmd:"" help:"Manage skills."`
}

// Commands that open the store themselves or never touch it.
var skipLoad = map[string]bool{
	"init":    true,
	"config":  true,
	"keyring": true,
	"doctor":  true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Outcome, output and skill practice tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"settings_path": constants.DefaultSettingsPath,
		},
	)
	if err := run(kctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.Settings)
	if err != nil {
		return err
	}

	logDir, err := cfg.LogDir()
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug || cfg.Log.Debug, LogDir: logDir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	location, fromSecretStore := cli.ResolveDatabase(CLI.Config, cfg, cli.KeyringLookup)
	store, err := cli.NewStore(location, fromSecretStore)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Debug("Resolved database", "driver", store.Driver(), "path", store.GetConfigPath())

	appCtx := cli.NewContext(store, cfg)
	appCtx.SettingsPath = CLI.Settings

	command := strings.Fields(kctx.Command())
	if len(command) > 0 && !skipLoad[command[0]] {
		if err := store.Load(); err != nil {
			return err
		}
		s, err := appCtx.Repo.GetSettings(appCtx.Ctx())
		if err != nil {
			return err
		}
		if err := utils.ApplyTimezone(s.Timezone); err != nil {
			logger.Warn("Ignoring stored timezone", "error", err)
		}
	}

	return kctx.Run(appCtx)
}
