package laguz

// FeedState represents the current state of a Feed.
type FeedState int32

const (
	// StateLoading indicates the Feed has not yet processed any payload.
	StateLoading FeedState = iota

	// StateHealthy indicates the last payload was applied to the store.
	StateHealthy

	// StateDegraded indicates the last payload failed decoding, validation
	// or application. The store keeps the previously applied value.
	StateDegraded

	// StateEmpty indicates the initial payload failed and nothing has ever
	// been applied. The Feed continues watching for valid updates.
	StateEmpty
)

// String returns the string representation of the state.
func (s FeedState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
