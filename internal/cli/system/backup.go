package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/maestro/internal/cli"
)

const backupDirName = "backups"

type backuper interface {
	Backup(ctx context.Context, dest string) error
}

// BackupDir is where backups of the sqlite database at dbPath are written.
func BackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDirName)
}

// ListBackups returns backup files newest first.
func ListBackups(dbPath string) ([]string, error) {
	entries, err := os.ReadDir(BackupDir(dbPath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".db") {
			files = append(files, filepath.Join(BackupDir(dbPath), e.Name()))
		}
	}
	// Names embed a sortable timestamp
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

type BackupCmd struct {
	Dest string `arg:"" optional:"" help:"Backup file path. Defaults to a timestamped file in the backups directory."`
	List bool   `help:"List existing backups instead of creating one."`
}

func (c *BackupCmd) Run(ctx *cli.Context) error {
	b, ok := ctx.Store.(backuper)
	if !ok {
		return fmt.Errorf("backups are only supported for sqlite storage")
	}
	dbPath := ctx.Store.GetConfigPath()

	if c.List {
		files, err := ListBackups(dbPath)
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(files) == 0 {
			ctx.Println("No backups found")
			return nil
		}
		for _, f := range files {
			ctx.Println(f)
		}
		return nil
	}

	dest := c.Dest
	if dest == "" {
		name := fmt.Sprintf("maestro-%s.db", ctx.Clock().Format("20060102-150405"))
		dest = filepath.Join(BackupDir(dbPath), name)
	}
	if err := b.Backup(ctx.Ctx(), dest); err != nil {
		return err
	}
	ctx.Printf("✓ Backup written to %s\n", dest)
	return nil
}
