package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

var tableNameExpr = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// PostgresHistory persists the posting history into Postgres.
type PostgresHistory struct {
	db    *sql.DB
	table string
	limit int
	qb    sq.StatementBuilderType
}

var _ ports.HistoryStore = (*PostgresHistory)(nil)

// OpenPostgres opens a lib/pq connection pool and verifies it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresHistory wires a sql.DB implementation.
func NewPostgresHistory(db *sql.DB, table string, limit int) (*PostgresHistory, error) {
	if table == "" {
		table = "posted_articles"
	}
	if !tableNameExpr.MatchString(table) {
		return nil, fmt.Errorf("invalid history table name %q", table)
	}
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &PostgresHistory{
		db:    db,
		table: table,
		limit: limit,
		qb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// EnsureSchema creates the history table when it does not exist.
func (r *PostgresHistory) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
              id          BIGSERIAL PRIMARY KEY,
              url         TEXT NOT NULL,
              fingerprint TEXT NOT NULL DEFAULT '',
              posted_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
          )`, r.table)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Load returns the newest entries, oldest first. A missing table reads as empty.
func (r *PostgresHistory) Load(ctx context.Context) (domain.History, error) {
	query, args, err := r.qb.
		Select("url", "fingerprint", "posted_at").
		From(r.table).
		OrderBy("posted_at DESC", "id DESC").
		Limit(uint64(r.limit)).
		ToSql()
	if err != nil {
		return domain.History{}, fmt.Errorf("build history query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isUndefinedTable(err) {
			return domain.NewHistory(nil), nil
		}
		return domain.History{}, fmt.Errorf("query history: %w", err)
	}

	var newestFirst []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(&entry.URL, &entry.Fingerprint, &entry.PostedAt); err != nil {
			_ = rows.Close()
			return domain.History{}, fmt.Errorf("scan history: %w", err)
		}
		newestFirst = append(newestFirst, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return domain.History{}, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return domain.History{}, fmt.Errorf("close rows: %w", closeErr)
	}

	entries := make([]domain.HistoryEntry, len(newestFirst))
	for i, e := range newestFirst {
		entries[len(newestFirst)-1-i] = e
	}
	return domain.NewHistory(entries), nil
}

// Append inserts the entry and evicts rows outside the retention window in one transaction.
func (r *PostgresHistory) Append(ctx context.Context, entry domain.HistoryEntry) error {
	insert, insertArgs, err := r.qb.
		Insert(r.table).
		Columns("url", "fingerprint", "posted_at").
		Values(entry.URL, entry.Fingerprint, entry.PostedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	keep := fmt.Sprintf("id NOT IN (SELECT id FROM %s ORDER BY posted_at DESC, id DESC LIMIT ?)", r.table)
	evict, evictArgs, err := r.qb.
		Delete(r.table).
		Where(sq.Expr(keep, r.limit)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build eviction: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, evict, evictArgs...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("evict history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
