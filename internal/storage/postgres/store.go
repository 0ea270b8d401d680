package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/migration"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

// Dialect renders numbered `$n` placeholders.
var Dialect = storage.Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	MapError:    mapError,
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrUniqueViolation, pqErr.Constraint)
	}
	return err
}

type Store struct {
	connStr string
	db      *sql.DB
	now     func() time.Time
}

func New(connStr string) *Store {
	return &Store{
		connStr: withSearchPath(connStr, constants.AppName),
		now:     time.Now,
	}
}

// withSearchPath pins search_path to schema unless the caller set one.
func withSearchPath(connStr, schema string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", schema)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if hasSearchPathParam(connStr) {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + schema
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// dsnHasKey reports whether a key=value DSN sets key (case-insensitive).
func dsnHasKey(connStr, key string) bool {
	for _, part := range strings.Fields(connStr) {
		k, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return true
		}
	}
	return false
}

func hasSearchPathParam(connStr string) bool {
	return dsnHasKey(connStr, "search_path")
}

// hasSSLMode checks URL query parameters first, then DSN pairs.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	return dsnHasKey(connStr, "sslmode")
}

// ValidateConnString checks that connStr parses as a PostgreSQL URL or DSN
// and carries no password. Credentials belong in the environment, .pgpass
// or the OS keyring.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if !isURL(connStr) {
		if dsnHasKey(connStr, "password") {
			return ErrEmbeddedCredentials
		}
		return nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
	}
	if _, isSet := u.User.Password(); isSet {
		return ErrEmbeddedCredentials
	}
	if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
		return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	return nil
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool parameters to avoid connection exhaustion
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "driver", "postgres")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
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
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverPostgres)
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

// Migrate applies pending migrations to a loaded database.
func (s *Store) Migrate() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "driver", "postgres")
	})
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
	// Return a non-sensitive identifier instead of the full connection string
	return "postgresql"
}

func (s *Store) Driver() string {
	return "postgres"
}
