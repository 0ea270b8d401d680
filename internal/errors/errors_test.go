package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("something went wrong"), expected: "Error: something went wrong"},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("skill %q: %w", "barre", ErrNotFound),
			expected: `Error: skill "barre": not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("output %s has no log for %s", "o-1", "2026-01-12")
	want := "Error: output o-1 has no log for 2026-01-12"
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestSentinels(t *testing.T) {
	wrapped := fmt.Errorf("loading skill: %w", ErrNotFound)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound() = false for wrapped ErrNotFound")
	}
	if IsNotFound(ErrValidation) {
		t.Error("IsNotFound() = true for ErrValidation")
	}

	err := Validationf("confidence %d outside 1..5", 7)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Validationf() = %v, want wrapping ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "confidence 7 outside 1..5") {
		t.Errorf("Validationf() message = %q", err.Error())
	}
}

// runHelper re-executes the test binary so exit behaviour can be observed.
func runHelper(t *testing.T, test, env string) (int, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^"+test+"$")
	cmd.Env = append(os.Environ(), env+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), stderr.String()
	}
	if err != nil {
		t.Fatalf("helper process failed to run: %v", err)
	}
	return 0, stderr.String()
}

func TestFatal(t *testing.T) {
	if os.Getenv("MAESTRO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	code, stderr := runHelper(t, "TestFatal", "MAESTRO_TEST_FATAL")
	if code != 1 {
		t.Errorf("Fatal() exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Error: test error") {
		t.Errorf("Fatal() stderr = %q, want to contain %q", stderr, "Error: test error")
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("MAESTRO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	if code, _ := runHelper(t, "TestFatal_NilError", "MAESTRO_TEST_FATAL_NIL"); code != 0 {
		t.Errorf("Fatal(nil) exit code = %d, want 0", code)
	}
}

func TestFatalf(t *testing.T) {
	if os.Getenv("MAESTRO_TEST_FATALF") == "1" {
		Fatalf("connection to %s:%d failed", "localhost", 5432)
		return
	}

	code, stderr := runHelper(t, "TestFatalf", "MAESTRO_TEST_FATALF")
	if code != 1 {
		t.Errorf("Fatalf() exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Error: connection to localhost:5432 failed") {
		t.Errorf("Fatalf() stderr = %q", stderr)
	}
}
