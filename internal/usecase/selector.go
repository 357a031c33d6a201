package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/metrics"
	"NewsPoster/internal/ports"
)

// Rand picks an index in [0, n).
type Rand interface {
	Intn(n int) int
}

// SelectorDeps wires the selector to its feed and tunables.
type SelectorDeps struct {
	Feed           ports.ArticleFeed
	Variants       []domain.QueryVariant
	Timeout        time.Duration
	MinTitleLength int
	Rand           Rand
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// Selector walks query variants in order and picks one unused article.
type Selector struct {
	feed           ports.ArticleFeed
	variants       []domain.QueryVariant
	timeout        time.Duration
	minTitleLength int
	rng            Rand
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewSelector constructs the selector; timeout defaults to 10s.
func NewSelector(deps SelectorDeps) *Selector {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	minTitle := deps.MinTitleLength
	if minTitle <= 0 {
		minTitle = domain.DefaultMinTitleLength
	}
	return &Selector{
		feed:           deps.Feed,
		variants:       deps.Variants,
		timeout:        timeout,
		minTitleLength: minTitle,
		rng:            deps.Rand,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
	}
}

// Select returns a random eligible article from the first variant that has any.
// Articles in history or in tried are skipped. A failing variant never aborts the walk.
func (s *Selector) Select(ctx context.Context, history domain.History, tried *domain.TriedSet) (domain.Article, error) {
	if s.feed == nil {
		return domain.Article{}, fmt.Errorf("article feed is not configured")
	}

	for _, variant := range s.variants {
		if err := ctx.Err(); err != nil {
			return domain.Article{}, err
		}

		candidates, err := s.fetch(ctx, variant)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Article{}, ctx.Err()
			}
			s.metrics.FeedFailed(variant.Name)
			s.warn("feed unavailable", "variant", variant.Name, "error", err)
			continue
		}

		eligible := s.filter(candidates, history, tried)
		s.metrics.EligibleArticles(len(eligible))
		s.debug("variant filtered", "variant", variant.Name, "fetched", len(candidates), "eligible", len(eligible))
		if len(eligible) == 0 {
			continue
		}

		pick := eligible[s.intn(len(eligible))]
		s.debug("article selected", "variant", variant.Name, "url", pick.URL)
		return pick, nil
	}

	return domain.Article{}, domain.ErrNoEligibleArticle
}

func (s *Selector) fetch(ctx context.Context, variant domain.QueryVariant) ([]domain.Article, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	articles, err := s.feed.Fetch(fetchCtx, variant)
	if err != nil {
		var unavailable *domain.FeedUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: err}
	}
	return articles, nil
}

func (s *Selector) filter(candidates []domain.Article, history domain.History, tried *domain.TriedSet) []domain.Article {
	seen := domain.NewTriedSet()
	eligible := make([]domain.Article, 0, len(candidates))
	for _, article := range candidates {
		if !article.Eligible(s.minTitleLength) {
			continue
		}
		if history.Contains(article) || tried.Contains(article) || seen.Contains(article) {
			continue
		}
		seen.Add(article)
		eligible = append(eligible, article)
	}
	return eligible
}

func (s *Selector) intn(n int) int {
	if s.rng == nil || n <= 1 {
		return 0
	}
	return s.rng.Intn(n)
}

func (s *Selector) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Selector) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
