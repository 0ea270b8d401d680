package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/maestro/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	rotator *lumberjack.Logger
)

// Config holds logger configuration
type Config struct {
	Debug bool
	// ConfigDir is the application directory; logs go to <ConfigDir>/logs.
	ConfigDir string
	// LogDir overrides the log directory when set.
	LogDir string
	// Stderr receives a copy of every entry in debug mode. Defaults to os.Stderr.
	Stderr io.Writer
}

// Dir returns the directory the log file is written to.
func (c Config) Dir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.ConfigDir, constants.LogDirName)
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	logDir := cfg.Dir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	if rotator != nil {
		_ = rotator.Close()
	}
	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.LogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   true,
	}

	level := log.WarnLevel
	var writer io.Writer = rotator
	if cfg.Debug {
		level = log.DebugLevel
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writer = io.MultiWriter(stderr, rotator)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.DefaultLogPrefix,
	})

	return nil
}

// Close flushes and closes the log file, leaving the package silent.
func Close() error {
	Logger = nil
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
