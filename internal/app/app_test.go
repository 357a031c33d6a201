package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
	"NewsPoster/internal/logging"
)

func offlineConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "mode: offline-fixture\n" +
		"publisher:\n  kind: stdout\n" +
		"history:\n  backend: file\n  path: " + filepath.Join(dir, "posted.json") + "\n" +
		"lock:\n  backend: file\n  path: " + filepath.Join(dir, "run.lock") + "\n" +
		"metrics:\n  textfilePath: " + filepath.Join(dir, "newsposter.prom") + "\n" +
		"composer:\n  seed: 42\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestRunOncePublishesFixtureAndRecordsHistory(t *testing.T) {
	cfg := offlineConfig(t)
	var out bytes.Buffer

	application, err := New(context.Background(), cfg, logging.Discard(), Options{Out: &out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	report, err := application.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RunPublished, report.Status)
	require.NotNil(t, report.Article)
	assert.Contains(t, out.String(), report.Article.URL)

	entries, err := application.History(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, report.Article.URL, entries[0].URL)

	raw, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `newsposter_run_total{status="published"} 1`)

	// Second run takes the other fixture, third finds nothing left.
	report, err = application.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RunPublished, report.Status)

	report, err = application.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RunNoArticle, report.Status)
}

func TestPreviewDoesNotRecord(t *testing.T) {
	cfg := offlineConfig(t)
	var out bytes.Buffer

	application, err := New(context.Background(), cfg, logging.Discard(), Options{Out: &out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	article, post, err := application.Preview(context.Background())
	require.NoError(t, err)
	assert.Contains(t, post.Body, article.URL)
	assert.Empty(t, out.String())

	entries, err := application.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
