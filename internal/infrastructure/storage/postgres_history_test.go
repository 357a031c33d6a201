package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"NewsPoster/internal/domain"
)

func newMockHistory(t *testing.T, limit int) (*PostgresHistory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewPostgresHistory(db, "posted_articles", limit)
	if err != nil {
		t.Fatalf("NewPostgresHistory returned error: %v", err)
	}
	return store, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestPostgresHistoryLoadReturnsOldestFirst(t *testing.T) {
	t.Parallel()

	store, mock := newMockHistory(t, 2)
	newer := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT url, fingerprint, posted_at FROM posted_articles ORDER BY posted_at DESC, id DESC LIMIT 2")).
		WillReturnRows(sqlmock.NewRows([]string{"url", "fingerprint", "posted_at"}).
			AddRow("https://x.test/new", "h2", newer).
			AddRow("https://x.test/old", "h1", older))

	history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	entries := history.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].URL != "https://x.test/old" || entries[1].URL != "https://x.test/new" {
		t.Fatalf("entries not oldest first: %+v", entries)
	}
	if !history.Contains(domain.Article{Fingerprint: "h2"}) {
		t.Fatalf("expected fingerprint h2 in history")
	}
	expectationsMet(t, mock)
}

func TestPostgresHistoryLoadMissingTable(t *testing.T) {
	t.Parallel()

	store, mock := newMockHistory(t, 0)
	mock.ExpectQuery("FROM posted_articles").WillReturnError(&pq.Error{Code: "42P01", Message: "relation does not exist"})

	history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if history.Len() != 0 {
		t.Fatalf("expected empty history, got %d entries", history.Len())
	}
	expectationsMet(t, mock)
}

func TestPostgresHistoryAppendEvictsInTransaction(t *testing.T) {
	t.Parallel()

	store, mock := newMockHistory(t, 100)
	entry := domain.HistoryEntry{URL: "https://x.test/a", Fingerprint: "abc", PostedAt: time.Now().UTC()}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posted_articles (url,fingerprint,posted_at) VALUES ($1,$2,$3)")).
		WithArgs(entry.URL, entry.Fingerprint, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posted_articles WHERE id NOT IN (SELECT id FROM posted_articles ORDER BY posted_at DESC, id DESC LIMIT $1)")).
		WithArgs(100).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := store.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestPostgresHistoryAppendRollsBack(t *testing.T) {
	t.Parallel()

	store, mock := newMockHistory(t, 100)
	insertErr := errors.New("insert failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO posted_articles").WillReturnError(insertErr)
	mock.ExpectRollback()

	err := store.Append(context.Background(), domain.HistoryEntry{URL: "https://x.test/a"})
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestPostgresHistoryEnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newMockHistory(t, 0)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS posted_articles").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestNewPostgresHistoryRejectsBadTable(t *testing.T) {
	t.Parallel()

	if _, err := NewPostgresHistory(nil, "posted; DROP TABLE x", 0); err == nil {
		t.Fatalf("expected error for invalid table name")
	}
}
