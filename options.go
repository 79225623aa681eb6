package laguz

import (
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

// config holds configuration options for a Store.
type config struct {
	name     string
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock
	metrics  MetricsProvider
}

func defaultConfig() *config {
	return &config{
		name:    uuid.NewString(),
		clock:   clockz.RealClock,
		metrics: NoOpMetricsProvider{},
	}
}

// Option configures a Store.
type Option func(*config)

// WithName sets the name the store reports in events and metrics.
// Without it the store is named with a random UUID.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithDebounce delays the deferred flush by d after the first pending
// report. Reports arriving within the window join the same broadcast.
// The default of zero flushes on the next scheduling turn.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = d
	}
}

// WithSyncMode disables deferred flushing. Pending paths are broadcast only
// by Flush or when the outermost Batch returns, making tests deterministic.
func WithSyncMode() Option {
	return func(c *config) {
		c.syncMode = true
	}
}

// WithClock sets a custom clock for flush scheduling and broadcast
// timestamps. Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithMetrics sets a metrics provider for flush observability.
func WithMetrics(m MetricsProvider) Option {
	return func(c *config) {
		c.metrics = m
	}
}
