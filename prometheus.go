package laguz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusConfig configures PrometheusMetrics.
type PrometheusConfig struct {
	// Namespace is the metrics namespace (default: "laguz").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// PrometheusMetrics is a MetricsProvider backed by Prometheus collectors.
type PrometheusMetrics struct {
	flushes         *prometheus.CounterVec
	flushedPaths    *prometheus.CounterVec
	invalidations   prometheus.Counter
	recomputes      prometheus.Histogram
	feedState       *prometheus.GaugeVec
	feedTransitions *prometheus.CounterVec
	feedApplied     prometheus.Histogram
	feedFailures    *prometheus.CounterVec
	changesReceived prometheus.Counter
}

// NewPrometheusMetrics registers the laguz collectors with cfg.Registry.
// Registering twice on one registry panics, as with promauto.
func NewPrometheusMetrics(cfg PrometheusConfig) *PrometheusMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "laguz"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(cfg.Registry)

	m := &PrometheusMetrics{
		flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "store",
			Name:        "flushes_total",
			Help:        "Total number of store broadcasts",
			ConstLabels: cfg.ConstLabels,
		}, []string{"store"}),

		flushedPaths: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "store",
			Name:        "flushed_paths_total",
			Help:        "Total number of coalesced paths broadcast",
			ConstLabels: cfg.ConstLabels,
		}, []string{"store"}),

		invalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "selection",
			Name:        "invalidations_total",
			Help:        "Total number of selection invalidations",
			ConstLabels: cfg.ConstLabels,
		}),

		recomputes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "selection",
			Name:        "recompute_duration_seconds",
			Help:        "Selector recomputation duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		feedState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "feed",
			Name:        "state",
			Help:        "Number of feeds in each state",
			ConstLabels: cfg.ConstLabels,
		}, []string{"state"}),

		feedTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "feed",
			Name:        "transitions_total",
			Help:        "Total number of feed state transitions",
			ConstLabels: cfg.ConstLabels,
		}, []string{"from", "to"}),

		feedApplied: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "feed",
			Name:        "apply_duration_seconds",
			Help:        "Duration of successful payload processing in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		feedFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "feed",
			Name:        "failures_total",
			Help:        "Total number of failed payloads by stage",
			ConstLabels: cfg.ConstLabels,
		}, []string{"stage"}),

		changesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "feed",
			Name:        "changes_received_total",
			Help:        "Total number of payloads received from watchers",
			ConstLabels: cfg.ConstLabels,
		}),
	}
	return m
}

func (m *PrometheusMetrics) OnFlush(store string, count int) {
	m.flushes.WithLabelValues(store).Inc()
	m.flushedPaths.WithLabelValues(store).Add(float64(count))
}

func (m *PrometheusMetrics) OnInvalidate() {
	m.invalidations.Inc()
}

func (m *PrometheusMetrics) OnRecompute(d time.Duration) {
	m.recomputes.Observe(d.Seconds())
}

// OnFeedStateChange moves one feed from the from gauge to the to gauge.
// Feeds start in loading without being counted there, so leaving loading
// does not decrement.
func (m *PrometheusMetrics) OnFeedStateChange(from, to FeedState) {
	m.feedTransitions.WithLabelValues(from.String(), to.String()).Inc()
	if from != StateLoading {
		m.feedState.WithLabelValues(from.String()).Dec()
	}
	m.feedState.WithLabelValues(to.String()).Inc()
}

func (m *PrometheusMetrics) OnFeedSuccess(d time.Duration) {
	m.feedApplied.Observe(d.Seconds())
}

func (m *PrometheusMetrics) OnFeedFailure(stage string, _ time.Duration) {
	m.feedFailures.WithLabelValues(stage).Inc()
}

func (m *PrometheusMetrics) OnChangeReceived() {
	m.changesReceived.Inc()
}

var _ MetricsProvider = (*PrometheusMetrics)(nil)
