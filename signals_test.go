package laguz

import "testing"

func TestSignalNames(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{StoreBuilt.Name(), "laguz.store.built"},
		{StoreFlushed.Name(), "laguz.store.flushed"},
		{StoreClosed.Name(), "laguz.store.closed"},
		{SelectionInvalidated.Name(), "laguz.selection.invalidated"},
		{SelectionComputed.Name(), "laguz.selection.computed"},
		{FeedStarted.Name(), "laguz.feed.started"},
		{FeedStopped.Name(), "laguz.feed.stopped"},
		{FeedStateChanged.Name(), "laguz.feed.state.changed"},
		{FeedChangeReceived.Name(), "laguz.feed.change.received"},
		{FeedDecodeFailed.Name(), "laguz.feed.decode.failed"},
		{FeedValidationFailed.Name(), "laguz.feed.validation.failed"},
		{FeedApplyFailed.Name(), "laguz.feed.apply.failed"},
		{FeedApplySucceeded.Name(), "laguz.feed.apply.succeeded"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected name %q, got %q", tt.want, tt.got)
		}
	}
}
