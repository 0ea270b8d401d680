package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/maestro/internal/constants"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Dashboard.Suggestions != 3 || cfg.Dashboard.PerOutcome != 3 {
		t.Fatalf("unexpected dashboard defaults: %+v", cfg.Dashboard)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := strings.TrimSpace(`
database: /tmp/maestro-test.db
log:
  debug: true
dashboard:
  per_outcome: 5
`)
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database != "/tmp/maestro-test.db" || !cfg.Log.Debug {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Dashboard.PerOutcome != 5 {
		t.Fatalf("expected per_outcome 5, got %d", cfg.Dashboard.PerOutcome)
	}
	if cfg.Dashboard.Suggestions != constants.DefaultSuggestionCount {
		t.Fatalf("unset suggestions should keep default, got %d", cfg.Dashboard.Suggestions)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero suggestions", "dashboard:\n  suggestions: 0\n"},
		{"negative per outcome", "dashboard:\n  per_outcome: -1\n"},
		{"empty database", "database: \"\"\n"},
		{"malformed", "dashboard: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("WriteDefault returned error: %v", err)
	}
	if written != path {
		t.Fatalf("expected %s, got %s", path, written)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatal("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("WriteDefault with force returned error: %v", err)
	}

	// The template must parse back to the defaults, modulo the expanded path.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of template returned error: %v", err)
	}
	want := Default()
	if cfg.Dashboard != want.Dashboard || cfg.Log != want.Log {
		t.Fatalf("template differs from defaults: %+v", cfg)
	}
}

func TestLogDir(t *testing.T) {
	cfg := Config{Database: "/data/maestro.db"}
	dir, err := cfg.LogDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/data", "logs") {
		t.Fatalf("unexpected log dir %s", dir)
	}

	cfg.Log.Dir = "/var/log/maestro"
	if dir, _ := cfg.LogDir(); dir != "/var/log/maestro" {
		t.Fatalf("explicit log dir ignored: %s", dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg = Config{Database: "postgres://db.example.com/maestro"}
	if dir, _ := cfg.LogDir(); dir != filepath.Join(home, ".config", "maestro", "logs") {
		t.Fatalf("unexpected postgres log dir %s", dir)
	}
}

func TestMarshal(t *testing.T) {
	out, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "per_outcome: 3") || !strings.Contains(out, "maestro.db") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
