package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"NewsPoster/internal/composer"
	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
	"NewsPoster/internal/infrastructure/feed"
	"NewsPoster/internal/infrastructure/llm"
	"NewsPoster/internal/infrastructure/lock"
	"NewsPoster/internal/infrastructure/publisher"
	"NewsPoster/internal/infrastructure/scheduler"
	"NewsPoster/internal/infrastructure/storage"
	"NewsPoster/internal/logging"
	"NewsPoster/internal/metrics"
	"NewsPoster/internal/ports"
	"NewsPoster/internal/scanner"
	"NewsPoster/internal/usecase"
)

// Options adjusts wiring for the CLI.
type Options struct {
	// DryRun prints posts to Out instead of calling the configured publisher.
	DryRun bool
	Out    io.Writer
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	history  ports.HistoryStore
	metrics  *metrics.Metrics
	closers  []func() error
}

// New builds every collaborator described by cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	httpClient := &http.Client{Timeout: cfg.Feed.Timeout}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewNewsAPIScanner(httpClient, cfg.Feed.NewsAPIBaseURL, cfg.Feed.NewsAPIKey))
	registry.Register(feed.NewRSSScanner(httpClient))
	registry.Register(feed.NewFixtureScanner())

	source := feed.NewStrategySource(registry, feed.RetryOptions{MaxRetries: cfg.Feed.Retries},
		baseLogger.With("component", "source"))

	seed := cfg.Composer.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := composer.NewRand(seed)

	selector := usecase.NewSelector(usecase.SelectorDeps{
		Feed:           source,
		Variants:       variants(cfg.Feed.Variants),
		Timeout:        cfg.Feed.Timeout,
		MinTitleLength: cfg.Feed.MinTitleLength,
		Rand:           rng,
		Metrics:        a.metrics,
		Logger:         baseLogger.With("component", "selector"),
	})

	var summarizer ports.Summarizer
	if cfg.ChatGPT.APIKey != "" {
		chat, err := llm.NewChatGPTSummarizer(cfg.ChatGPT)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		summarizer = chat
	}

	pub := newPublisher(cfg, opts, baseLogger.With("component", "publisher"))

	history, err := a.newHistory(ctx, cfg.History, baseLogger.With("component", "history"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.history = history

	locker, err := a.newLocker(cfg.Lock, baseLogger.With("component", "lock"))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Selector:   selector,
		History:    history,
		Composer:   composer.New(composer.OptionsFromConfig(cfg.Composer), rng),
		Summarizer: summarizer,
		Publisher:  pub,
		Locker:     locker,
		Metrics:    a.metrics,
		Logger:     baseLogger.With("component", "pipeline"),
		Options: usecase.PipelineOptions{
			MaxAttempts:      cfg.Run.MaxAttempts,
			Budget:           cfg.Run.Budget,
			SummaryTimeout:   cfg.ChatGPT.Timeout,
			RecordDuplicates: cfg.Run.RecordDuplicates,
		},
	})

	return a, nil
}

// RunOnce executes a single run and flushes metrics afterwards.
func (a *Application) RunOnce(ctx context.Context) (domain.RunReport, error) {
	report, err := a.pipeline.Run(ctx)
	a.flushMetrics()
	return report, err
}

// Serve triggers runs on the configured interval until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := &flushingScheduler{
		Scheduler: scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location()),
		flush:     a.flushMetrics,
	}
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"interval", a.cfg.Scheduler.Interval.String(),
		"timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Run.Budget+5*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Preview selects and composes a post without publishing or recording it.
func (a *Application) Preview(ctx context.Context) (domain.Article, domain.ComposedPost, error) {
	return a.pipeline.Preview(ctx)
}

// History returns the persisted entries, oldest first.
func (a *Application) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	h, err := a.history.Load(ctx)
	if err != nil {
		return nil, err
	}
	return h.Entries(), nil
}

// Close releases database and redis connections.
func (a *Application) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *Application) flushMetrics() {
	if err := a.metrics.Flush(a.cfg.Metrics.TextfilePath); err != nil {
		a.logger.Warn("metrics flush failed", "error", err)
	}
}

func (a *Application) newHistory(ctx context.Context, cfg config.HistoryConfig, logger *slog.Logger) (ports.HistoryStore, error) {
	switch cfg.Backend {
	case "postgres":
		db, err := storage.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return newPostgresHistory(ctx, db, cfg)
	default:
		return storage.NewFileHistory(cfg.Path, cfg.Limit, logger), nil
	}
}

func newPostgresHistory(ctx context.Context, db *sql.DB, cfg config.HistoryConfig) (ports.HistoryStore, error) {
	repo, err := storage.NewPostgresHistory(db, cfg.Table, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *Application) newLocker(cfg config.LockConfig, logger *slog.Logger) (ports.Locker, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		return lock.NewRedisLock(client, cfg.RedisKey, cfg.TTL, logger), nil
	default:
		return lock.NewFileLock(cfg.Path, cfg.TTL, logger), nil
	}
}

func newPublisher(cfg config.Config, opts Options, logger *slog.Logger) ports.Publisher {
	if opts.DryRun {
		return publisher.NewStdoutPublisher(opts.Out, logger)
	}
	switch cfg.Publisher.Kind {
	case "telegram":
		return publisher.NewTelegramPublisher(cfg.Publisher.Telegram, nil, cfg.Publisher.Timeout, logger)
	case "stdout":
		return publisher.NewStdoutPublisher(opts.Out, logger)
	default:
		return publisher.NewXPublisher(cfg.Publisher.X, nil, cfg.Publisher.Timeout, logger)
	}
}

func variants(cfgs []config.VariantConfig) []domain.QueryVariant {
	out := make([]domain.QueryVariant, 0, len(cfgs))
	for _, v := range cfgs {
		out = append(out, domain.QueryVariant{Name: v.Name, Scanner: v.Scanner, Params: v.Params})
	}
	return out
}

// flushingScheduler flushes metrics after every scheduled job.
type flushingScheduler struct {
	ports.Scheduler
	flush func()
}

func (f *flushingScheduler) Start(ctx context.Context, job func(time.Time)) error {
	return f.Scheduler.Start(ctx, func(at time.Time) {
		job(at)
		f.flush()
	})
}
