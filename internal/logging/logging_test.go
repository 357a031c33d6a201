package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPoster/internal/config"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" info ":  slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"":        slog.LevelDebug,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), "level %q", in)
	}
}

func TestNewFromConfigWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "poster.log")

	logger, closeFn, err := NewFromConfig(config.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("run finished", "status", "published")
	require.NoError(t, closeFn())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "run finished")
	assert.Contains(t, string(raw), "status=published")
}

func TestNewFromConfigConsoleOnly(t *testing.T) {
	t.Parallel()

	logger, closeFn, err := NewFromConfig(config.LoggingConfig{Level: "error"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closeFn())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
