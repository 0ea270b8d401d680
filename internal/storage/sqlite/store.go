package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/migration"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/migrations"
)

// Dialect renders `?` placeholders and binds booleans as 0/1.
var Dialect = storage.Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	BindBool: func(b bool) any {
		if b {
			return int64(1)
		}
		return int64(0)
	},
	MapError: mapError,
}

func mapError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", storage.ErrUniqueViolation, err)
		}
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", storage.ErrUniqueViolation, err)
	}
	return err
}

type Store struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'maestro init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	// Validate schema version using embedded migrations
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps PRAGMAs per-database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite)
}

func (s *Store) runMigrations() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "driver", "sqlite")
	})
	return err
}

// MigrationStatus reports the applied and pending schema versions.
func (s *Store) MigrationStatus() (migration.Status, error) {
	if s.db == nil {
		return migration.Status{}, fmt.Errorf("storage not loaded")
	}
	runner, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status()
}

// Migrate applies pending migrations to an initialised database.
func (s *Store) Migrate() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "driver", "sqlite")
	})
}

// Backup writes a consistent copy of the database to dest.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %s already exists", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

func (s *Store) rows() (storage.SQLRows, error) {
	if s.db == nil {
		return storage.SQLRows{}, fmt.Errorf("storage not loaded")
	}
	return storage.SQLRows{DB: s.db, Dialect: Dialect, Now: s.now}, nil
}

func (s *Store) Select(ctx context.Context, q storage.Query) ([]storage.Row, error) {
	r, err := s.rows()
	if err != nil {
		return nil, err
	}
	return r.Select(ctx, q)
}

func (s *Store) Insert(ctx context.Context, collection string, row storage.Row) (storage.Row, error) {
	r, err := s.rows()
	if err != nil {
		return nil, err
	}
	return r.Insert(ctx, collection, row)
}

func (s *Store) Update(ctx context.Context, collection string, filters []storage.Filter, values storage.Row) (int, error) {
	r, err := s.rows()
	if err != nil {
		return 0, err
	}
	return r.Update(ctx, collection, filters, values)
}

func (s *Store) Delete(ctx context.Context, collection string, filters []storage.Filter) (int, error) {
	r, err := s.rows()
	if err != nil {
		return 0, err
	}
	return r.Delete(ctx, collection, filters)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) Driver() string {
	return "sqlite"
}
