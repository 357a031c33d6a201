package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEligibleArticle is returned when every query variant is exhausted.
	ErrNoEligibleArticle = errors.New("no eligible article")
	// ErrComposeFailure signals a composer invariant violation.
	ErrComposeFailure = errors.New("compose failure")
	// ErrPersistenceCorrupt marks an unreadable history file that was reinitialized.
	ErrPersistenceCorrupt = errors.New("history store corrupt")
	// ErrLockHeld is returned when another run holds the single-instance lock.
	ErrLockHeld = errors.New("run lock held by another instance")
)

// FeedUnavailableError reports a failed query variant. It never aborts selection.
type FeedUnavailableError struct {
	Variant string
	Status  int
	Err     error
}

func (e *FeedUnavailableError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("feed %s unavailable: status %d", e.Variant, e.Status)
	}
	return fmt.Sprintf("feed %s unavailable: %v", e.Variant, e.Err)
}

func (e *FeedUnavailableError) Unwrap() error {
	return e.Err
}

// Temporary reports whether a retry of the same variant may succeed.
func (e *FeedUnavailableError) Temporary() bool {
	return e.Status == 0 || e.Status >= 500 || e.Status == 429
}
