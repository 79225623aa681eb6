package laguz

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on store, selection and feed events.
type MetricsProvider interface {
	// OnFlush is called after a store broadcasts. Count is the number of
	// coalesced paths.
	OnFlush(store string, count int)

	// OnInvalidate is called when a selection's version is bumped.
	OnInvalidate()

	// OnRecompute is called after a selection reruns its selector.
	OnRecompute(duration time.Duration)

	// OnFeedStateChange is called when a feed transitions between states.
	OnFeedStateChange(from, to FeedState)

	// OnFeedSuccess is called when a payload is applied.
	// Duration covers decode, validate and apply.
	OnFeedSuccess(duration time.Duration)

	// OnFeedFailure is called when processing fails at any stage.
	// Stage indicates where the failure occurred: "decode", "validate", or "apply".
	OnFeedFailure(stage string, duration time.Duration)

	// OnChangeReceived is called when raw data is received from a watcher.
	OnChangeReceived()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnFlush(_ string, _ int)                 {}
func (NoOpMetricsProvider) OnInvalidate()                           {}
func (NoOpMetricsProvider) OnRecompute(_ time.Duration)             {}
func (NoOpMetricsProvider) OnFeedStateChange(_, _ FeedState)        {}
func (NoOpMetricsProvider) OnFeedSuccess(_ time.Duration)           {}
func (NoOpMetricsProvider) OnFeedFailure(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnChangeReceived()                       {}
