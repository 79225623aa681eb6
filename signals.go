package laguz

import "github.com/zoobzio/capitan"

// Store lifecycle signals.
var (
	// StoreBuilt is emitted when Build returns a store.
	StoreBuilt = capitan.NewSignal(
		"laguz.store.built",
		"Store constructed",
	)

	// StoreFlushed is emitted after a store broadcasts its pending paths.
	StoreFlushed = capitan.NewSignal(
		"laguz.store.flushed",
		"Pending paths broadcast",
	)

	// StoreClosed is emitted when a store is closed.
	StoreClosed = capitan.NewSignal(
		"laguz.store.closed",
		"Store closed",
	)
)

// Selection signals.
var (
	// SelectionInvalidated is emitted when a broadcast touches a path the
	// selection consumed.
	SelectionInvalidated = capitan.NewSignal(
		"laguz.selection.invalidated",
		"Selection invalidated by a related change",
	)

	// SelectionComputed is emitted when a selection reruns its selector.
	SelectionComputed = capitan.NewSignal(
		"laguz.selection.computed",
		"Selection recomputed",
	)
)

// Feed lifecycle signals.
var (
	// FeedStarted is emitted when a Feed begins watching.
	FeedStarted = capitan.NewSignal(
		"laguz.feed.started",
		"Feed watching started",
	)

	// FeedStopped is emitted when a Feed stops watching.
	FeedStopped = capitan.NewSignal(
		"laguz.feed.stopped",
		"Feed watching stopped",
	)

	// FeedStateChanged is emitted when a Feed transitions between states.
	FeedStateChanged = capitan.NewSignal(
		"laguz.feed.state.changed",
		"Feed state transition",
	)
)

// Feed processing signals.
var (
	// FeedChangeReceived is emitted when raw data is received from the watcher.
	FeedChangeReceived = capitan.NewSignal(
		"laguz.feed.change.received",
		"Raw change received from watcher",
	)

	// FeedDecodeFailed is emitted when the codec rejects a payload.
	FeedDecodeFailed = capitan.NewSignal(
		"laguz.feed.decode.failed",
		"Payload decoding failed",
	)

	// FeedValidationFailed is emitted when validation fails.
	FeedValidationFailed = capitan.NewSignal(
		"laguz.feed.validation.failed",
		"Validation failed",
	)

	// FeedApplyFailed is emitted when the apply function fails.
	FeedApplyFailed = capitan.NewSignal(
		"laguz.feed.apply.failed",
		"Apply function failed",
	)

	// FeedApplySucceeded is emitted when a value is applied to the store.
	FeedApplySucceeded = capitan.NewSignal(
		"laguz.feed.apply.succeeded",
		"Value applied to store",
	)
)
