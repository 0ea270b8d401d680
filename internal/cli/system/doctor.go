package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/internal/utils"
	"github.com/julianstephens/maestro/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB skips the check when the database is unreachable
	needsDB bool
	// warnOnly reports failures without failing the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Settings", needsDB: true, run: checkSettings},
		{name: "Data validation", needsDB: true, run: checkValidation},
		{name: "Clock/timezone", run: func(*cli.Context) error { return checkClock(time.Now()) }},
	}

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.Select(ctx.Ctx(), storage.From(storage.Settings).Take(1)); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	status, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	status, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if !status.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", status.Current, status.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(backuper); !ok {
		return nil
	}
	files, err := ListBackups(ctx.Store.GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'maestro backup'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Repo.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q", settings.Timezone)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	snapshot, err := validation.Collect(ctx.Ctx(), ctx.Repo)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	result := validation.New().Validate(snapshot)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found, run 'maestro validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
