package feed

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/scanner"
)

type stubScanner struct {
	name  string
	calls int
	errs  []error
	items []domain.Article
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Scan(context.Context, domain.QueryVariant) ([]domain.Article, error) {
	s.calls++
	if len(s.errs) >= s.calls && s.errs[s.calls-1] != nil {
		return nil, s.errs[s.calls-1]
	}
	return s.items, nil
}

func newSource(t *testing.T, stub *stubScanner, retries int) *StrategySource {
	t.Helper()
	reg := scanner.NewRegistry()
	reg.Register(stub)
	return NewStrategySource(reg, RetryOptions{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, nil)
}

func TestStrategySourceRetriesTemporaryFailures(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name:  "stub",
		errs:  []error{&domain.FeedUnavailableError{Variant: "v", Status: http.StatusServiceUnavailable}},
		items: []domain.Article{domain.NewArticle(domain.RawArticle{Title: "Recovered after retry", URL: "https://a.test/1"})},
	}
	source := newSource(t, stub, 1)

	articles, err := source.Fetch(context.Background(), domain.QueryVariant{Name: "v", Scanner: "stub"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", stub.calls)
	}
	if len(articles) != 1 || articles[0].Source != "v" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestStrategySourceDoesNotRetryPermanentFailures(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name: "stub",
		errs: []error{&domain.FeedUnavailableError{Variant: "v", Status: http.StatusUnauthorized}},
	}
	source := newSource(t, stub, 3)

	_, err := source.Fetch(context.Background(), domain.QueryVariant{Name: "v", Scanner: "stub"})
	var unavailable *domain.FeedUnavailableError
	if !errors.As(err, &unavailable) || unavailable.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 FeedUnavailableError, got %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected a single call, got %d", stub.calls)
	}
}

func TestStrategySourceGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	boom := &domain.FeedUnavailableError{Variant: "v", Err: errors.New("connection refused")}
	stub := &stubScanner{name: "stub", errs: []error{boom, boom, boom}}
	source := newSource(t, stub, 2)

	_, err := source.Fetch(context.Background(), domain.QueryVariant{Name: "v", Scanner: "stub"})
	var unavailable *domain.FeedUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FeedUnavailableError, got %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", stub.calls)
	}
}

func TestStrategySourceUnknownScanner(t *testing.T) {
	t.Parallel()

	source := newSource(t, &stubScanner{name: "stub"}, 0)
	_, err := source.Fetch(context.Background(), domain.QueryVariant{Name: "v", Scanner: "missing"})
	var unavailable *domain.FeedUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FeedUnavailableError, got %v", err)
	}
}

func TestFixtureScanner(t *testing.T) {
	t.Parallel()

	articles, err := NewFixtureScanner().Scan(context.Background(), domain.QueryVariant{})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 fixture articles, got %d", len(articles))
	}
	for _, a := range articles {
		if !a.Eligible(0) {
			t.Fatalf("fixture article should be eligible: %+v", a)
		}
	}
}
