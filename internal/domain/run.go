package domain

import "time"

// RunStatus describes how a run ended.
type RunStatus string

const (
	RunPublished RunStatus = "published"
	RunNoArticle RunStatus = "no_article"
	RunExhausted RunStatus = "exhausted"
	RunAborted   RunStatus = "aborted"
	RunSkipped   RunStatus = "skipped"
)

// RunReport summarizes a single orchestrator run.
type RunReport struct {
	RunID      string
	Status     RunStatus
	Attempts   int
	Article    *Article
	Post       *ComposedPost
	Outcome    *PublishOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock time spent in the run.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
