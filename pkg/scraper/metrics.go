package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the fetch loop.
type Metrics struct {
	Registry              *prometheus.Registry
	PagesFetchedTotal     prometheus.Counter
	ReviewsCollectedTotal prometheus.Counter
	CheckpointSavesTotal  prometheus.Counter
	FetchErrorsTotal      *prometheus.CounterVec
	RequestDuration       prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steamreviews_pages_fetched_total",
			Help: "Total review pages fetched from the API.",
		},
	)
	reviews := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steamreviews_reviews_collected_total",
			Help: "Total reviews appended to the accumulation buffer.",
		},
	)
	checkpoints := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steamreviews_checkpoint_saves_total",
			Help: "Total checkpoint saves, including terminal-state saves.",
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamreviews_fetch_errors_total",
			Help: "Total fetch errors by classified kind.",
		},
		[]string{"kind"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "steamreviews_request_duration_seconds",
			Help:    "Review page request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, reviews, checkpoints, fetchErrors, requestDuration)

	return &Metrics{
		Registry:              registry,
		PagesFetchedTotal:     pages,
		ReviewsCollectedTotal: reviews,
		CheckpointSavesTotal:  checkpoints,
		FetchErrorsTotal:      fetchErrors,
		RequestDuration:       requestDuration,
	}
}

// ObserveDuration records a review page request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncError increments the error counter for a classified kind.
func (m *Metrics) IncError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(kind).Inc()
}
