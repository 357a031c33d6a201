package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/metrics"
	"NewsPoster/internal/ports"
)

const recordTimeout = 10 * time.Second

// ArticleSelector picks the next article to post.
type ArticleSelector interface {
	Select(ctx context.Context, history domain.History, tried *domain.TriedSet) (domain.Article, error)
}

// PostComposer turns an article into a post; a non-positive limit uses its default.
type PostComposer interface {
	Compose(article domain.Article, limit int) (domain.ComposedPost, error)
}

// PipelineOptions bounds a single run.
type PipelineOptions struct {
	MaxAttempts      int
	Budget           time.Duration
	SummaryTimeout   time.Duration
	RecordDuplicates bool
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Selector   ArticleSelector
	History    ports.HistoryStore
	Composer   PostComposer
	Summarizer ports.Summarizer
	Publisher  ports.Publisher
	Locker     ports.Locker
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Options    PipelineOptions

	Now   func() time.Time
	RunID func() string
}

// Pipeline runs SELECT, COMPOSE, PUBLISH and RECORD with bounded retries.
type Pipeline struct {
	selector   ArticleSelector
	history    ports.HistoryStore
	composer   PostComposer
	summarizer ports.Summarizer
	publisher  ports.Publisher
	locker     ports.Locker
	metrics    *metrics.Metrics
	logger     *slog.Logger
	opts       PipelineOptions
	now        func() time.Time
	runID      func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	opts := deps.Options
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Budget <= 0 {
		opts.Budget = 2 * time.Minute
	}
	if opts.SummaryTimeout <= 0 {
		opts.SummaryTimeout = 20 * time.Second
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	runID := deps.RunID
	if runID == nil {
		runID = func() string { return uuid.NewString() }
	}

	return &Pipeline{
		selector:   deps.Selector,
		history:    deps.History,
		composer:   deps.Composer,
		summarizer: deps.Summarizer,
		publisher:  deps.Publisher,
		locker:     deps.Locker,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		opts:       opts,
		now:        now,
		runID:      runID,
	}
}

// Run executes one posting run. Not posting anything is not an error: the outcome is
// carried by the report status. Errors are returned for defects and broken storage.
func (p *Pipeline) Run(ctx context.Context) (report domain.RunReport, err error) {
	report = domain.RunReport{RunID: p.runID(), StartedAt: p.now()}
	log := p.runLogger(report.RunID)

	defer func() {
		report.FinishedAt = p.now()
		p.metrics.RunFinished(report)
		if log != nil {
			log.Info("run finished",
				"status", report.Status,
				"attempts", report.Attempts,
				"duration", report.Duration().String())
		}
	}()

	if err := p.validate(); err != nil {
		report.Status = domain.RunAborted
		return report, err
	}

	if p.locker != nil {
		release, lockErr := p.locker.Acquire(ctx)
		if lockErr != nil {
			report.Status = domain.RunSkipped
			if errors.Is(lockErr, domain.ErrLockHeld) {
				logWarn(log, "another run holds the lock")
				return report, nil
			}
			return report, fmt.Errorf("acquire run lock: %w", lockErr)
		}
		defer release()
	}

	runCtx, cancel := context.WithTimeout(ctx, p.opts.Budget)
	defer cancel()

	history, err := p.history.Load(runCtx)
	if err != nil {
		report.Status = domain.RunAborted
		return report, fmt.Errorf("load history: %w", err)
	}

	tried := domain.NewTriedSet()
	for report.Attempts < p.opts.MaxAttempts {
		if runCtx.Err() != nil {
			logWarn(log, "run budget exhausted", "budget", p.opts.Budget.String())
			report.Status = domain.RunExhausted
			return report, nil
		}

		article, selErr := p.selector.Select(runCtx, history, tried)
		if selErr != nil {
			switch {
			case errors.Is(selErr, domain.ErrNoEligibleArticle):
				report.Status = domain.RunNoArticle
				if report.Attempts > 0 {
					report.Status = domain.RunExhausted
				}
				logWarn(log, "no eligible article", "attempts", report.Attempts)
				return report, nil
			case runCtx.Err() != nil:
				report.Status = domain.RunExhausted
				return report, nil
			default:
				report.Status = domain.RunAborted
				return report, fmt.Errorf("select article: %w", selErr)
			}
		}

		tried.Add(article)
		report.Attempts++
		report.Article = &article

		article = p.summarize(runCtx, log, article)

		post, compErr := p.composer.Compose(article, 0)
		if compErr != nil {
			report.Status = domain.RunAborted
			return report, fmt.Errorf("compose %s: %w", article.URL, compErr)
		}
		p.metrics.Composed(post)
		report.Post = &post

		outcome := p.publisher.Publish(runCtx, post.Body)
		p.metrics.Published(p.publisher.Name(), outcome, p.now())
		report.Outcome = &outcome

		logInfo(log, "publish attempt",
			"attempt", report.Attempts,
			"url", article.URL,
			"template", post.Template,
			"length", len([]rune(post.Body)),
			"outcome", outcome.Kind,
			"status", outcome.Status)

		switch {
		case outcome.Success():
			report.Status = domain.RunPublished
			if err := p.record(runCtx, article); err != nil {
				return report, err
			}
			return report, nil
		case outcome.Kind.Retryable():
			if outcome.Kind == domain.OutcomeDuplicate && p.opts.RecordDuplicates {
				if err := p.record(runCtx, article); err != nil {
					logWarn(log, "record duplicate failed", "error", err)
				}
			}
			continue
		default:
			report.Status = domain.RunAborted
			logError(log, "publish rejected, aborting run", "error", outcome.Err())
			return report, nil
		}
	}

	report.Status = domain.RunExhausted
	logWarn(log, "attempts exhausted", "max_attempts", p.opts.MaxAttempts)
	return report, nil
}

// Preview selects and composes one post without publishing, recording or locking.
func (p *Pipeline) Preview(ctx context.Context) (domain.Article, domain.ComposedPost, error) {
	if err := p.validate(); err != nil {
		return domain.Article{}, domain.ComposedPost{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, p.opts.Budget)
	defer cancel()

	history, err := p.history.Load(runCtx)
	if err != nil {
		return domain.Article{}, domain.ComposedPost{}, fmt.Errorf("load history: %w", err)
	}

	article, err := p.selector.Select(runCtx, history, domain.NewTriedSet())
	if err != nil {
		return domain.Article{}, domain.ComposedPost{}, err
	}

	article = p.summarize(runCtx, p.logger, article)
	post, err := p.composer.Compose(article, 0)
	if err != nil {
		return article, domain.ComposedPost{}, fmt.Errorf("compose %s: %w", article.URL, err)
	}
	return article, post, nil
}

func (p *Pipeline) summarize(ctx context.Context, log *slog.Logger, article domain.Article) domain.Article {
	if p.summarizer == nil || article.Summary != "" {
		return article
	}

	sumCtx, cancel := context.WithTimeout(ctx, p.opts.SummaryTimeout)
	defer cancel()

	summary, err := p.summarizer.Summarize(sumCtx, article)
	if err != nil {
		logWarn(log, "summarizer failed, using extractive summary", "error", err)
		return article
	}
	article.Summary = summary
	return article
}

// record runs detached from the run budget: once a post is live it must be written
// even if the budget expired during publish.
func (p *Pipeline) record(ctx context.Context, article domain.Article) error {
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := p.history.Append(recCtx, domain.NewHistoryEntry(article, p.now())); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

func (p *Pipeline) validate() error {
	switch {
	case p.selector == nil:
		return fmt.Errorf("selector is not configured")
	case p.history == nil:
		return fmt.Errorf("history store is not configured")
	case p.composer == nil:
		return fmt.Errorf("composer is not configured")
	case p.publisher == nil:
		return fmt.Errorf("publisher is not configured")
	}
	return nil
}

func (p *Pipeline) runLogger(runID string) *slog.Logger {
	if p.logger == nil {
		return nil
	}
	return p.logger.With("run_id", runID)
}

func logInfo(log *slog.Logger, msg string, args ...interface{}) {
	if log != nil {
		log.Info(msg, args...)
	}
}

func logWarn(log *slog.Logger, msg string, args ...interface{}) {
	if log != nil {
		log.Warn(msg, args...)
	}
}

func logError(log *slog.Logger, msg string, args ...interface{}) {
	if log != nil {
		log.Error(msg, args...)
	}
}
