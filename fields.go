package laguz

import "github.com/zoobzio/capitan"

// Field keys for store and selection events.
var (
	// KeyStore is the name of the store an event concerns.
	KeyStore = capitan.NewStringKey("store")

	// KeyPaths is the comma-separated list of broadcast paths.
	KeyPaths = capitan.NewStringKey("paths")

	// KeyCount is the number of paths in a broadcast.
	KeyCount = capitan.NewIntKey("count")

	// KeyVersion is a selection's version after an invalidation.
	KeyVersion = capitan.NewIntKey("version")

	// KeyTrigger is the changed path that invalidated a selection.
	KeyTrigger = capitan.NewStringKey("trigger")
)

// Field keys for Feed events.
var (
	// KeyState is the current state of the Feed.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyWatcherType is the type name of the watcher implementation.
	KeyWatcherType = capitan.NewStringKey("watcher_type")

	// KeyCodec is the content type of the Feed's codec.
	KeyCodec = capitan.NewStringKey("codec")
)
