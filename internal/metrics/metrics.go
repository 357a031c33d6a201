// Package metrics records run, feed and publish counters in a Prometheus registry.
// The poster is a short-lived process, so the registry is flushed to a node-exporter
// textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"NewsPoster/internal/domain"
)

const namespace = "newsposter"

// Metrics groups the collectors of one process. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal            *prometheus.CounterVec
	PublishOutcomes      *prometheus.CounterVec
	FeedFailures         *prometheus.CounterVec
	ArticlesConsidered   prometheus.Counter
	PostsPublished       prometheus.Counter
	PostsTruncated       prometheus.Counter
	RunDuration          prometheus.Histogram
	LastRunTimestamp     prometheus.Gauge
	LastPublishTimestamp prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "total",
				Help:      "Total number of runs by final status",
			},
			[]string{"status"},
		),
		PublishOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "publish",
				Name:      "outcomes_total",
				Help:      "Publish attempts by publisher and outcome kind",
			},
			[]string{"publisher", "kind"},
		),
		FeedFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "failures_total",
				Help:      "Query variants that could not be fetched",
			},
			[]string{"variant"},
		),
		ArticlesConsidered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "eligible_articles_total",
				Help:      "Eligible articles seen by the selector",
			},
		),
		PostsPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "publish",
				Name:      "posts_total",
				Help:      "Posts accepted by the posting service",
			},
		),
		PostsTruncated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compose",
				Name:      "truncated_total",
				Help:      "Composed posts whose summary was cut with an ellipsis",
			},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Wall-clock duration of a run",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "last_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
		LastPublishTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "publish",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last accepted post",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// FeedFailed counts a variant that returned FeedUnavailable.
func (m *Metrics) FeedFailed(variant string) {
	if m == nil {
		return
	}
	m.FeedFailures.WithLabelValues(variant).Inc()
}

// EligibleArticles adds the eligible candidates of one variant.
func (m *Metrics) EligibleArticles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ArticlesConsidered.Add(float64(n))
}

// Composed records a composed post.
func (m *Metrics) Composed(post domain.ComposedPost) {
	if m == nil || !post.Truncated {
		return
	}
	m.PostsTruncated.Inc()
}

// Published records a classified publish attempt.
func (m *Metrics) Published(publisher string, outcome domain.PublishOutcome, at time.Time) {
	if m == nil {
		return
	}
	m.PublishOutcomes.WithLabelValues(publisher, string(outcome.Kind)).Inc()
	if outcome.Success() {
		m.PostsPublished.Inc()
		m.LastPublishTimestamp.Set(float64(at.Unix()))
	}
}

// RunFinished records the final status of a run.
func (m *Metrics) RunFinished(report domain.RunReport) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(string(report.Status)).Inc()
	m.RunDuration.Observe(report.Duration().Seconds())
	m.LastRunTimestamp.Set(float64(report.FinishedAt.Unix()))
}

// Flush writes the registry in text exposition format; an empty path is a no-op.
func (m *Metrics) Flush(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
