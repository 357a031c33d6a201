package ports

import (
	"context"
	"time"

	"NewsPoster/internal/domain"
)

// ArticleFeed fetches candidate articles for a single query variant.
type ArticleFeed interface {
	Fetch(ctx context.Context, variant domain.QueryVariant) ([]domain.Article, error)
}

// HistoryStore persists published articles for deduplication.
type HistoryStore interface {
	Load(ctx context.Context) (domain.History, error)
	Append(ctx context.Context, entry domain.HistoryEntry) error
}

// Summarizer generates an abstractive summary of an article (e.g., via an LLM).
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article) (string, error)
}

// Publisher sends a composed post to the posting collaborator.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, text string) domain.PublishOutcome
}

// Locker guards the at-most-one-concurrent-run invariant.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
