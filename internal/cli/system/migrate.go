package system

import (
	"fmt"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/migration"
)

// migrator is implemented by the SQL-backed stores.
type migrator interface {
	MigrationStatus() (migration.Status, error)
	Migrate() (int, error)
}

func asMigrator(ctx *cli.Context) (migrator, error) {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil, fmt.Errorf("migrations are not supported for %s storage", ctx.Store.Driver())
	}
	return m, nil
}

type MigrateCmd struct {
	Status bool `help:"Show pending migrations without applying them."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, err := asMigrator(ctx)
	if err != nil {
		return err
	}

	if c.Status {
		status, err := m.MigrationStatus()
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		ctx.Printf("Current version: %d\nLatest version:  %d\n", status.Current, status.Latest)
		for _, p := range status.Pending {
			ctx.Printf("  pending: %03d_%s\n", p.Version, p.Name)
		}
		return nil
	}

	count, err := m.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
