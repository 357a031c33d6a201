package usecase

import (
	"context"
	"errors"
	"sync"

	"NewsPoster/internal/domain"
)

type fakeFeed struct {
	mu       sync.Mutex
	articles map[string][]domain.Article
	errs     map[string]error
	calls    []string
}

func (f *fakeFeed) Fetch(_ context.Context, variant domain.QueryVariant) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, variant.Name)
	if err := f.errs[variant.Name]; err != nil {
		return nil, err
	}
	return f.articles[variant.Name], nil
}

type memHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	loadErr error
}

func (m *memHistory) Load(context.Context) (domain.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.History{}, m.loadErr
	}
	return domain.NewHistory(append([]domain.HistoryEntry(nil), m.entries...)), nil
}

func (m *memHistory) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = domain.TrimHistory(append(m.entries, entry), 0)
	return nil
}

func (m *memHistory) urls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.URL)
	}
	return out
}

type scriptedPublisher struct {
	outcomes []domain.PublishOutcome
	texts    []string
	// outlast blocks each publish until the run context is done.
	outlast bool
}

func (s *scriptedPublisher) Name() string { return "scripted" }

func (s *scriptedPublisher) Publish(ctx context.Context, text string) domain.PublishOutcome {
	s.texts = append(s.texts, text)
	if s.outlast {
		<-ctx.Done()
	}
	if len(s.outcomes) == 0 {
		return domain.PublishOutcome{Kind: domain.OutcomeOK, Status: 201, PostID: "final"}
	}
	next := s.outcomes[0]
	s.outcomes = s.outcomes[1:]
	return next
}

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (l *fakeLocker) Acquire(context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.held {
		return nil, domain.ErrLockHeld
	}
	l.held = true
	return func() {
		l.held = false
		l.released++
	}, nil
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(context.Context, domain.Article) (string, error) {
	f.calls++
	return f.summary, f.err
}

// firstRand always picks index 0.
type firstRand struct{}

func (firstRand) Intn(int) int { return 0 }

// lastRand always picks the last index.
type lastRand struct{}

func (lastRand) Intn(n int) int { return n - 1 }

var errBoom = errors.New("boom")

func article(title, url string) domain.Article {
	return domain.NewArticle(domain.RawArticle{
		Title:       title,
		Description: "A description that is long enough to be a sentence.",
		URL:         url,
	})
}
