// Package logger holds the process-wide structured logger.
//
// It wraps log/slog. Output goes to stderr as JSON by default; SetFormat
// switches to the text handler for interactive runs.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the default logger instance.
var Logger *slog.Logger

var (
	programLevel = new(slog.LevelVar)
	output       io.Writer = os.Stderr
	format                 = "json"
)

func init() {
	programLevel.Set(slog.LevelInfo)
	rebuild()
}

func rebuild() {
	opts := &slog.HandlerOptions{Level: programLevel}
	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(output, opts)
	} else {
		h = slog.NewJSONHandler(output, opts)
	}
	Logger = slog.New(h)
}

// SetLevel sets the minimum level. Loggers derived earlier follow the change.
func SetLevel(level slog.Level) { programLevel.Set(level) }

// GetLevel returns the current minimum level.
func GetLevel() slog.Level { return programLevel.Level() }

// ParseLevel converts a level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// SetFormat selects "json" or "text" output and rebuilds Logger.
func SetFormat(f string) error {
	switch f {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (want json or text)", f)
	}
	format = f
	rebuild()
	return nil
}

// SetOutput redirects Logger to w and rebuilds it.
func SetOutput(w io.Writer) {
	output = w
	rebuild()
}

// WithRun returns a logger tagged with the run id and job name.
func WithRun(runID, job string) *slog.Logger {
	l := Logger.With("run_id", runID)
	if job != "" {
		l = l.With("job", job)
	}
	return l
}

// Info logs an informational message.
func Info(msg string, args ...any) { Logger.Info(msg, args...) }

// Debug logs a debug message.
func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { Logger.Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { Logger.Error(msg, args...) }
