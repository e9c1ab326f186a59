// Package logging builds the slog logger used by the winsync commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config selects the verbosity and destination of a logger.
type Config struct {
	Level string
	// FilePath appends to a log file instead of writing to stderr.
	FilePath string
	// LevelVar, when set, is set to Level and controls the handler, so the
	// level can be changed after a config reload.
	LevelVar *slog.LevelVar
}

// ParseLogLevel converts a config level name to an slog level.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger and a function that releases its destination.
func New(cfg Config) (*slog.Logger, func() error, error) {
	var (
		w       io.Writer = os.Stderr
		release           = func() error { return nil }
	)
	if cfg.FilePath != "" {
		dir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		release = f.Close
	}
	if cfg.LevelVar != nil {
		cfg.LevelVar.Set(ParseLogLevel(cfg.Level))
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LevelVar})), release, nil
	}
	return NewWriter(w, cfg.Level), release, nil
}

// NewWriter returns a text logger writing to w.
func NewWriter(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
