package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
	"NewsPoster/internal/scanner"
)

// StrategySource implements ArticleFeed via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	retry    retrypolicy.RetryPolicy[[]domain.Article]
	logger   *slog.Logger
}

var _ ports.ArticleFeed = (*StrategySource)(nil)

// RetryOptions bounds how often a single variant is re-fetched.
type RetryOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NewStrategySource wires the scanner registry with a retry policy.
// Only temporary feed failures (transport errors, 5xx, 429) are retried.
func NewStrategySource(reg *scanner.Registry, opts RetryOptions, log *slog.Logger) *StrategySource {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 200 * time.Millisecond
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = 2 * time.Second
	}

	policy := retrypolicy.NewBuilder[[]domain.Article]().
		HandleIf(func(_ []domain.Article, err error) bool {
			return retryable(err)
		}).
		WithMaxRetries(opts.MaxRetries).
		WithBackoff(opts.BaseDelay, opts.MaxDelay).
		ReturnLastFailure().
		Build()

	return &StrategySource{
		registry: reg,
		retry:    policy,
		logger:   log,
	}
}

// Fetch resolves the variant's scanner and runs it under the retry policy.
func (s *StrategySource) Fetch(ctx context.Context, variant domain.QueryVariant) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(variant.Scanner)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: err}
	}

	attempt := 0
	articles, err := failsafe.With(s.retry).WithContext(ctx).Get(func() ([]domain.Article, error) {
		attempt++
		s.debug("scan variant", "variant", variant.Name, "scanner", variant.Scanner, "attempt", attempt)
		return strategy.Scan(ctx, variant)
	})
	if err != nil {
		var unavailable *domain.FeedUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: err}
	}

	for i := range articles {
		if articles[i].Source == "" {
			articles[i].Source = variant.Name
		}
	}
	s.debug("variant produced articles", "variant", variant.Name, "count", len(articles))
	return articles, nil
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var unavailable *domain.FeedUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Temporary()
	}
	return true
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
