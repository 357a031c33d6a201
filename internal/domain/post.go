package domain

import "fmt"

// ComposedPost is the final text handed to a publisher. It is never persisted.
type ComposedPost struct {
	Body      string
	Hashtags  []string
	Template  string
	Truncated bool
	Minimal   bool
}

// OutcomeKind classifies a publish attempt.
type OutcomeKind string

const (
	OutcomeOK          OutcomeKind = "OK"
	OutcomeDuplicate   OutcomeKind = "DUPLICATE"
	OutcomeRateLimited OutcomeKind = "RATE_LIMITED"
	OutcomeBlocked     OutcomeKind = "BLOCKED"
	OutcomeAuthError   OutcomeKind = "AUTH_ERROR"
	OutcomeTransient   OutcomeKind = "TRANSIENT"
	OutcomeFatal       OutcomeKind = "FATAL"
)

// Retryable reports whether the orchestrator should move on to another article.
func (k OutcomeKind) Retryable() bool {
	switch k {
	case OutcomeDuplicate, OutcomeRateLimited, OutcomeTransient:
		return true
	default:
		return false
	}
}

// PublishOutcome is the classified result of a publish call.
type PublishOutcome struct {
	Kind   OutcomeKind
	Status int
	PostID string
	Detail string
}

// Success reports whether the post went out.
func (o PublishOutcome) Success() bool {
	return o.Kind == OutcomeOK
}

// Err returns nil for OK outcomes and a PublishRejectedError otherwise.
func (o PublishOutcome) Err() error {
	if o.Success() {
		return nil
	}
	return &PublishRejectedError{Outcome: o}
}

// PublishRejectedError wraps a non-OK outcome.
type PublishRejectedError struct {
	Outcome PublishOutcome
}

func (e *PublishRejectedError) Error() string {
	if e.Outcome.Status > 0 {
		return fmt.Sprintf("publish rejected: %s (status %d): %s", e.Outcome.Kind, e.Outcome.Status, e.Outcome.Detail)
	}
	return fmt.Sprintf("publish rejected: %s: %s", e.Outcome.Kind, e.Outcome.Detail)
}
