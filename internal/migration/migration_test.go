package migration

import (
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// setupTestMigrations builds an in-memory migrations filesystem.
func setupTestMigrations(t *testing.T, files map[string]string) fs.FS {
	t.Helper()
	mapFS := fstest.MapFS{}
	for name, content := range files {
		mapFS[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return mapFS
}

func setupSQLiteTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("failed to inspect sqlite_master: %v", err)
	}
	return count > 0
}

func TestNewRunner_RejectsUnknownDriver(t *testing.T) {
	db := setupSQLiteTestDB(t)
	if _, err := NewRunner(db, fstest.MapFS{}, Driver("mysql")); err == nil {
		t.Error("expected error for unsupported driver")
	}
	if _, err := NewRunner(nil, fstest.MapFS{}, DriverSQLite); err == nil {
		t.Error("expected error for nil database")
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db := setupSQLiteTestDB(t)

	tests := []struct {
		name     string
		files    map[string]string
		versions []int
		wantErr  string
	}{
		{
			name: "sorted by version",
			files: map[string]string{
				"010_later.sql":  "SELECT 1;",
				"002_second.sql": "SELECT 1;",
				"001_init.sql":   "SELECT 1;",
				"README.md":      "not a migration",
			},
			versions: []int{1, 2, 10},
		},
		{
			name:    "missing name",
			files:   map[string]string{"001.sql": "SELECT 1;"},
			wantErr: "invalid migration filename",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "at least 1",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  "SELECT 1;",
				"0001_also.sql": "SELECT 1;",
			},
			wantErr: "duplicate migration version 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := NewRunner(db, setupTestMigrations(t, tt.files), DriverSQLite)
			if err != nil {
				t.Fatalf("NewRunner() error = %v", err)
			}

			migrations, err := runner.ReadMigrationFiles()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ReadMigrationFiles() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMigrationFiles() error = %v", err)
			}
			if len(migrations) != len(tt.versions) {
				t.Fatalf("got %d migrations, want %d", len(migrations), len(tt.versions))
			}
			for i, v := range tt.versions {
				if migrations[i].Version != v {
					t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, v)
				}
			}
			if migrations[0].Name != "init" {
				t.Errorf("migrations[0].Name = %q, want init", migrations[0].Name)
			}
		})
	}
}

func TestApplyMigrations_SQLite(t *testing.T) {
	db := setupSQLiteTestDB(t)
	runner, err := NewRunner(db, setupTestMigrations(t, map[string]string{
		"001_init.sql": "CREATE TABLE outcomes (id TEXT PRIMARY KEY);",
		"002_logs.sql": "CREATE TABLE action_logs (id TEXT PRIMARY KEY); CREATE INDEX action_logs_id_idx ON action_logs(id);",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	var messages []string
	count, err := runner.ApplyMigrations(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if count != 2 {
		t.Errorf("ApplyMigrations() applied %d, want 2", count)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages from ApplyMigrations")
	}
	if !tableExists(t, db, "outcomes") || !tableExists(t, db, "action_logs") {
		t.Error("expected both tables to exist after migration")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 2 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 2, nil", version, err)
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 0 {
		t.Errorf("second ApplyMigrations() = %d, %v; want 0, nil", count, err)
	}
}

func TestApplyMigrations_RollbackOnError(t *testing.T) {
	db := setupSQLiteTestDB(t)
	runner, err := NewRunner(db, setupTestMigrations(t, map[string]string{
		"001_init.sql": "CREATE TABLE outcomes (id TEXT PRIMARY KEY);",
		"002_bad.sql":  "CREATE TABLE skill_items (id TEXT PRIMARY KEY); THIS IS INVALID SQL;",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	count, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("ApplyMigrations() should fail on invalid SQL")
	}
	if count != 1 {
		t.Errorf("ApplyMigrations() applied %d before failing, want 1", count)
	}
	if tableExists(t, db, "skill_items") {
		t.Error("skill_items should not exist after rollback")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 1 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 1, nil", version, err)
	}
}

func TestStatusAndValidateVersion(t *testing.T) {
	db := setupSQLiteTestDB(t)
	runner, err := NewRunner(db, setupTestMigrations(t, map[string]string{
		"001_init.sql": "CREATE TABLE outcomes (id TEXT PRIMARY KEY);",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	status, err := runner.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Current != 0 || status.Latest != 1 || status.UpToDate() {
		t.Errorf("Status() = %+v, want current 0, latest 1, one pending", status)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion() error = %v", err)
	}
	if err := runner.ValidateVersion(); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ValidateVersion() error = %v, want ErrSchemaTooNew", err)
	}
	if _, err := runner.ApplyMigrations(nil); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ApplyMigrations() error = %v, want ErrSchemaTooNew", err)
	}
}
