package lock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

// FileLock guards a run with an exclusively created lock file.
// A lock older than ttl is treated as left behind by a crashed run and taken over.
type FileLock struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.Locker = (*FileLock)(nil)

// NewFileLock builds a file lock; ttl defaults to 10 minutes.
func NewFileLock(path string, ttl time.Duration, logger *slog.Logger) *FileLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FileLock{path: path, ttl: ttl, now: time.Now, logger: logger}
}

// Acquire creates the lock file or returns domain.ErrLockHeld.
func (l *FileLock) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	token := []byte(uuid.NewString())
	for attempt := 0; attempt < 2; attempt++ {
		err := l.create(token)
		if err == nil {
			return func() { l.release(token) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		info, statErr := os.Stat(l.path)
		if statErr != nil {
			// Released between create and stat; try again.
			continue
		}
		age := l.now().Sub(info.ModTime())
		if age < l.ttl {
			return nil, domain.ErrLockHeld
		}

		if l.logger != nil {
			l.logger.Warn("taking over stale lock", "path", l.path, "age", age.String())
		}
		if err := l.takeOver(token); err != nil {
			return nil, err
		}
	}
	return nil, domain.ErrLockHeld
}

// takeOver moves the stale lock aside under a name only this caller uses, so two
// processes racing on the same stale lock cannot both delete a fresh one. If the
// file moved aside turns out to be fresh, a concurrent takeover won and it is put back.
func (l *FileLock) takeOver(token []byte) error {
	aside := l.path + ".stale-" + string(token)
	if err := os.Rename(l.path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("move stale lock: %w", err)
	}
	defer os.Remove(aside)

	info, err := os.Stat(aside)
	if err != nil {
		return fmt.Errorf("stat stale lock: %w", err)
	}
	if l.now().Sub(info.ModTime()) < l.ttl {
		// Link does not replace an existing file, unlike Rename.
		if err := os.Link(aside, l.path); err != nil && l.logger != nil {
			l.logger.Warn("restore concurrent lock failed", "path", l.path, "error", err)
		}
		return domain.ErrLockHeld
	}
	return nil
}

func (l *FileLock) create(token []byte) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(token); err != nil {
		_ = f.Close()
		_ = os.Remove(l.path)
		return err
	}
	return f.Close()
}

// release removes the file only while it still carries our token.
func (l *FileLock) release(token []byte) {
	current, err := os.ReadFile(l.path)
	if err != nil || !bytes.Equal(current, token) {
		return
	}
	if err := os.Remove(l.path); err != nil && l.logger != nil {
		l.logger.Warn("release lock failed", "path", l.path, "error", err)
	}
}
