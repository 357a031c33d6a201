package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

// FileHistory keeps the posting history in a JSON array on disk.
// Reads accept bare URL strings and {url, hash, time} objects; writes always emit objects.
type FileHistory struct {
	path   string
	limit  int
	logger *slog.Logger
	mu     sync.Mutex
}

var _ ports.HistoryStore = (*FileHistory)(nil)

// NewFileHistory builds a store for path retaining the newest limit entries.
func NewFileHistory(path string, limit int, logger *slog.Logger) *FileHistory {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &FileHistory{path: path, limit: limit, logger: logger}
}

// Load reads the history. A missing or unreadable file is reset to an empty array.
func (f *FileHistory) Load(ctx context.Context) (domain.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read(ctx)
	if err != nil {
		return domain.History{}, err
	}
	return domain.NewHistory(entries), nil
}

// Append adds an entry and evicts the oldest ones beyond the limit.
func (f *FileHistory) Append(ctx context.Context, entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read(ctx)
	if err != nil {
		return err
	}
	entries = domain.TrimHistory(append(entries, entry), f.limit)
	return f.write(entries)
}

// Entries returns the stored entries, oldest first.
func (f *FileHistory) Entries(ctx context.Context) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(ctx)
}

func (f *FileHistory) read(ctx context.Context) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.info("history file missing, initializing", "path", f.path)
		return nil, f.write(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", f.path, err)
	}

	entries, err := decodeEntries(raw)
	if err != nil {
		f.warn("history file unreadable, reinitializing",
			"path", f.path,
			"error", fmt.Errorf("%w: %v", domain.ErrPersistenceCorrupt, err))
		return nil, f.write(nil)
	}
	return entries, nil
}

func decodeEntries(raw []byte) ([]domain.HistoryEntry, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	entries := make([]domain.HistoryEntry, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '"':
			var url string
			if err := json.Unmarshal(item, &url); err != nil {
				return nil, err
			}
			if url != "" {
				entries = append(entries, domain.HistoryEntry{URL: legacyURL(url)})
			}
		case '{':
			var entry domain.HistoryEntry
			if err := json.Unmarshal(item, &entry); err != nil {
				return nil, err
			}
			if entry.URL != "" || entry.Fingerprint != "" {
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

// legacyURL normalizes a bare-string entry. Those were written after decoding, so
// only a string that still carries a \uXXXX escape is decoded, and only once.
func legacyURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, `\u`) {
		return domain.DecodeURL(raw)
	}
	return raw
}

// write replaces the file atomically through a temp file in the same directory.
func (f *FileHistory) write(entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp history: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

func (f *FileHistory) info(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f *FileHistory) warn(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
