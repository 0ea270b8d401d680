// Package config loads the YAML process configuration. Values here tune the
// process (database location, logging, dashboard sizes); user settings such
// as the timezone live in the database instead.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/maestro/internal/constants"
)

const defaultConfigYAML = `# maestro configuration

# Database location: a sqlite file path, a postgres:// URL, or :memory:.
# Postgres credentials belong in the keyring or .pgpass, not in the URL.
database: ~/.config/maestro/maestro.db

log:
  # Write debug output to the log file.
  debug: false
  # Directory for rotated log files. Defaults to <database dir>/logs.
  # dir: ~/.config/maestro/logs

dashboard:
  # Skills suggested across all outcomes.
  suggestions: 3
  # Skills suggested per outcome.
  per_outcome: 3
`

// LogConfig controls the log file.
type LogConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir,omitempty"`
}

// DashboardConfig sizes the suggestion lists.
type DashboardConfig struct {
	Suggestions int `yaml:"suggestions"`
	PerOutcome  int `yaml:"per_outcome"`
}

// Config models config.yaml.
type Config struct {
	Database  string          `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database: constants.DefaultConfigPath,
		Dashboard: DashboardConfig{
			Suggestions: constants.DefaultSuggestionCount,
			PerOutcome:  constants.DefaultPerOutcomeCount,
		},
	}
}

// DefaultYAML is the commented template written by `config init`.
func DefaultYAML() string {
	return defaultConfigYAML
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	path, err := ExpandPath(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the dashboard cannot use.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database must not be empty")
	}
	if c.Dashboard.Suggestions < 1 {
		return fmt.Errorf("dashboard.suggestions must be at least 1, got %d", c.Dashboard.Suggestions)
	}
	if c.Dashboard.PerOutcome < 1 {
		return fmt.Errorf("dashboard.per_outcome must be at least 1, got %d", c.Dashboard.PerOutcome)
	}
	return nil
}

// WriteDefault writes the template to path. Existing files are kept unless
// force is set.
func WriteDefault(path string, force bool) (string, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return path, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o600); err != nil {
		return path, fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// Marshal renders the effective configuration.
func (c Config) Marshal() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// LogDir returns the configured log directory, or logs/ beside a sqlite
// database. Postgres and in-memory databases log under the user config dir.
func (c Config) LogDir() (string, error) {
	if c.Log.Dir != "" {
		return ExpandPath(c.Log.Dir)
	}
	db := c.Database
	if db == constants.MemoryConfigPath || strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") {
		db = constants.DefaultConfigPath
	}
	path, err := ExpandPath(db)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), constants.LogDirName), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
