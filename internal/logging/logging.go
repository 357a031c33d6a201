package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"NewsPoster/internal/config"
)

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	return slog.New(newHandler(os.Stdout, level))
}

// NewFromConfig builds a logger that also writes to a rotated file when one is configured.
// The returned closer flushes and closes the file; it is a no-op for console-only loggers.
func NewFromConfig(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	if strings.TrimSpace(cfg.File) == "" {
		return New(cfg.Level), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	logger := slog.New(newHandler(io.MultiWriter(os.Stdout, rotator), cfg.Level))
	return logger, rotator.Close, nil
}

// Discard returns a logger that drops every record; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(w io.Writer, level string) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
