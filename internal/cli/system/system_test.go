package system

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/config"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/repository"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/internal/storage/memory"
	"github.com/julianstephens/maestro/internal/storage/sqlite"
)

func newTestContext(t *testing.T, store storage.Provider) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	ctx := cli.NewContext(store, config.Default())
	var out bytes.Buffer
	ctx.Out = &out
	ctx.Now = func() time.Time { return time.Date(2026, 1, 12, 9, 0, 0, 0, time.Local) }
	return ctx, &out
}

func newMemoryContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := memory.New()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return newTestContext(t, store)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.db")
	store := sqlite.NewStore(path)
	defer store.Close()
	ctx, out := newTestContext(t, store)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Initialized maestro storage at: "+path) {
		t.Errorf("unexpected output %q", out.String())
	}
	if _, err := ctx.Repo.CreateOutcome(ctx.Ctx(), repository.OutcomeInput{Title: "Guitar"}); err != nil {
		t.Fatalf("CreateOutcome failed: %v", err)
	}

	out.Reset()
	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run(force) error = %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected delete notice, got %q", out.String())
	}
	outcomes, err := ctx.Repo.ListOutcomes(ctx.Ctx(), true)
	if err != nil {
		t.Fatalf("ListOutcomes failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("expected a fresh database, got %d outcomes", len(outcomes))
	}
}

func TestInitCmdForceRejectsSameSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.db")
	store := sqlite.NewStore(path)
	defer store.Close()
	ctx, _ := newTestContext(t, store)

	if err := (&InitCmd{Force: true, Source: path}).Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmdCopiesSource(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "source.db")
	src := sqlite.NewStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatalf("source Init failed: %v", err)
	}
	srcRepo := repository.New(src)
	outcome, err := srcRepo.CreateOutcome(t.Context(), repository.OutcomeInput{Title: "Guitar"})
	if err != nil {
		t.Fatalf("CreateOutcome failed: %v", err)
	}
	if _, err := srcRepo.CreateSkillItem(t.Context(), repository.SkillInput{
		OutcomeID:         outcome.ID,
		Name:              "Barre chords",
		InitialConfidence: 2,
	}); err != nil {
		t.Fatalf("CreateSkillItem failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx, out := newTestContext(t, memory.New())
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Copied 1 skill_items") {
		t.Errorf("unexpected output %q", out.String())
	}
	got, err := ctx.Repo.GetOutcome(ctx.Ctx(), outcome.ID)
	if err != nil {
		t.Fatalf("GetOutcome failed: %v", err)
	}
	if got.Title != "Guitar" {
		t.Errorf("Title = %q, want Guitar", got.Title)
	}
}

func TestBackupCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()
	ctx, out := newTestContext(t, store)

	if err := (&BackupCmd{}).Run(ctx); err != nil {
		t.Fatalf("BackupCmd.Run() error = %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "backups", "maestro-20260112-090000.db")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	out.Reset()
	if err := (&BackupCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("BackupCmd.Run(list) error = %v", err)
	}
	if strings.TrimSpace(out.String()) != want {
		t.Errorf("list output = %q, want %q", out.String(), want)
	}

	if err := (&BackupCmd{}).Run(ctx); err == nil {
		t.Error("expected error when the backup file already exists")
	}
}

func TestBackupCmdRequiresSqlite(t *testing.T) {
	ctx, _ := newMemoryContext(t)
	if err := (&BackupCmd{}).Run(ctx); err == nil {
		t.Error("expected error for memory storage")
	}
}

func TestValidateCmd(t *testing.T) {
	ctx, out := newMemoryContext(t)
	if _, err := ctx.Store.Insert(ctx.Ctx(), storage.SkillLogs, storage.Row{
		"skill_item_id": "deleted-skill",
		"confidence":    3,
		"logged_at":     ctx.Clock(),
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := (&ValidateCmd{}).Run(ctx)
	if !errors.Is(err, ErrConflicts) {
		t.Fatalf("ValidateCmd.Run() error = %v, want ErrConflicts", err)
	}
	if !strings.Contains(out.String(), "Conflicts detected:") {
		t.Errorf("unexpected report %q", out.String())
	}

	out.Reset()
	if err := (&ValidateCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("ValidateCmd.Run(fix) error = %v", err)
	}
	if !strings.Contains(out.String(), "Deleted 1 orphan skill log(s)") || !strings.Contains(out.String(), "All conflicts fixed.") {
		t.Errorf("unexpected fix output %q", out.String())
	}

	out.Reset()
	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("ValidateCmd.Run() after fix error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "No conflicts detected." {
		t.Errorf("unexpected report %q", out.String())
	}
}

func TestDoctorCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()
	ctx, out := newTestContext(t, store)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("DoctorCmd.Run() error = %v\n%s", err, out.String())
	}
	for _, want := range []string{"✓ Database reachable: OK", "✓ Migrations complete: OK", "⚠ Backups present: WARNING"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDebugCmds(t *testing.T) {
	ctx, out := newMemoryContext(t)
	outcome, err := ctx.Repo.CreateOutcome(ctx.Ctx(), repository.OutcomeInput{Title: "Guitar"})
	if err != nil {
		t.Fatalf("CreateOutcome failed: %v", err)
	}

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Fatalf("DebugDBPathCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), `"path": "`+constants.MemoryConfigPath+`"`) {
		t.Errorf("unexpected db-path output %q", out.String())
	}

	tests := []struct {
		name    string
		cmd     DebugDumpCmd
		want    string
		wantErr bool
	}{
		{name: "all rows", cmd: DebugDumpCmd{Collection: storage.Outcomes}, want: `"title": "Guitar"`},
		{name: "by id", cmd: DebugDumpCmd{Collection: storage.Outcomes, ID: outcome.ID}, want: outcome.ID},
		{name: "empty collection", cmd: DebugDumpCmd{Collection: storage.SkillLogs}, want: "[]"},
		{name: "missing id", cmd: DebugDumpCmd{Collection: storage.Outcomes, ID: "nope"}, wantErr: true},
		{name: "unknown collection", cmd: DebugDumpCmd{Collection: "plans"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q missing %q", out.String(), tt.want)
			}
		})
	}
}

func TestConfigCmds(t *testing.T) {
	ctx, out := newMemoryContext(t)
	ctx.SettingsPath = filepath.Join(t.TempDir(), "maestro", "config.yaml")

	if err := (&ConfigInitCmd{}).Run(ctx); err != nil {
		t.Fatalf("ConfigInitCmd.Run() error = %v", err)
	}
	if _, err := os.Stat(ctx.SettingsPath); err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if err := (&ConfigInitCmd{}).Run(ctx); err == nil {
		t.Error("expected error when the config file exists")
	}
	if err := (&ConfigInitCmd{Force: true}).Run(ctx); err != nil {
		t.Errorf("ConfigInitCmd.Run(force) error = %v", err)
	}

	out.Reset()
	if err := (&ConfigShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("ConfigShowCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "per_outcome: 3") {
		t.Errorf("unexpected config output %q", out.String())
	}
}
