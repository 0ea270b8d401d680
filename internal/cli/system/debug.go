package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/storage"
)

type DebugCmd struct {
	DBPath *DebugDBPathCmd `cmd:"" help:"Show database path."`
	Dump   *DebugDumpCmd   `cmd:"" help:"Dump the raw rows of a collection as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path":   ctx.Store.GetConfigPath(),
		"driver": ctx.Store.Driver(),
	})
}

type DebugDumpCmd struct {
	Collection string `arg:"" help:"Collection to dump (outcomes, outputs, action_logs, skill_items, skill_logs, settings)."`
	ID         string `help:"Only dump the row with this primary key."`
	Limit      int    `help:"Maximum number of rows to dump (0 for all)." default:"0"`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	coll, err := storage.Lookup(cmd.Collection)
	if err != nil {
		return fmt.Errorf("%w (expected one of %v)", err, storage.Collections())
	}

	q := storage.From(coll.Name).Order(coll.Key, false)
	if cmd.ID != "" {
		q = q.Where(storage.Eq(coll.Key, cmd.ID))
	}
	if cmd.Limit > 0 {
		q = q.Take(cmd.Limit)
	}

	rows, err := ctx.Store.Select(ctx.Ctx(), q)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", coll.Name, err)
	}
	if cmd.ID != "" && len(rows) == 0 {
		return fmt.Errorf("%s row not found: %s", coll.Name, cmd.ID)
	}
	if rows == nil {
		rows = []storage.Row{}
	}
	return printJSON(ctx, rows)
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
