// Package testing provides test utilities and helpers for laguz stores,
// selections and feeds.
package testing

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/laguz"
)

// TestConfig is a standard payload type for testing feeds.
// It implements laguz.Validator.
type TestConfig struct {
	Port    int    `yaml:"port" json:"port"`
	Host    string `yaml:"host" json:"host"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// Validate implements laguz.Validator.
func (c TestConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

// ApplyTestConfig writes cfg's fields to the root as port, host and timeout.
func ApplyTestConfig(root *laguz.Object, cfg TestConfig) error {
	root.Set("port", cfg.Port)
	root.Set("host", cfg.Host)
	root.Set("timeout", cfg.Timeout)
	return nil
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the feed reaches the expected state or timeout occurs.
func WaitForState[T any](t *testing.T, f *laguz.Feed[T], expected laguz.FeedState, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return f.State() == expected
	})
}

// RequireState fails the test immediately if the feed is not in the expected state.
func RequireState[T any](t *testing.T, f *laguz.Feed[T], expected laguz.FeedState) {
	t.Helper()
	if got := f.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireCurrent fails the test if Current() returns false or the payload doesn't match.
func RequireCurrent[T any](t *testing.T, f *laguz.Feed[T], check func(T) bool) {
	t.Helper()
	v, ok := f.Current()
	if !ok {
		t.Fatal("expected a current payload, got none")
	}
	if !check(v) {
		t.Fatalf("current payload check failed: %+v", v)
	}
}

// NewTestStore builds a sync-mode store holding state and closes it when the
// test ends.
func NewTestStore(t *testing.T, state map[string]any) *laguz.Store {
	t.Helper()
	if state == nil {
		state = map[string]any{}
	}
	store, err := laguz.Build(func(_ *laguz.Object) any { return state }, laguz.WithSyncMode())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

// NewTestFeed creates a sync-mode feed of TestConfig payloads over store.
// Returns the feed and a channel for sending test data.
func NewTestFeed(t *testing.T, store *laguz.Store) (*laguz.Feed[TestConfig], chan<- []byte) {
	t.Helper()
	ch := make(chan []byte, 10)
	f := laguz.NewFeed(store, laguz.NewSyncChannelWatcher(ch), ApplyTestConfig).SyncMode()
	return f, ch
}

// Recorder captures every broadcast of a Store or Global.
type Recorder struct {
	mu         sync.Mutex
	broadcasts [][]string
	unsub      func()
}

// NewRecorder subscribes to sub until the test ends.
func NewRecorder(t *testing.T, sub laguz.Subscriber) *Recorder {
	t.Helper()
	r := &Recorder{}
	r.unsub = sub.Subscribe(func(paths []string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.broadcasts = append(r.broadcasts, slices.Clone(paths))
	})
	t.Cleanup(r.unsub)
	return r
}

// Broadcasts returns every broadcast received so far.
func (r *Recorder) Broadcasts() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.broadcasts)
}

// Count returns the number of broadcasts received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.broadcasts)
}

// Last returns the most recent broadcast, or nil.
func (r *Recorder) Last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.broadcasts) == 0 {
		return nil
	}
	return r.broadcasts[len(r.broadcasts)-1]
}

// Reset forgets the broadcasts received so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = nil
}

// RequireLast fails the test unless the most recent broadcast is exactly want.
func (r *Recorder) RequireLast(t *testing.T, want ...string) {
	t.Helper()
	if got := r.Last(); !slices.Equal(got, want) {
		t.Fatalf("expected last broadcast %q, got %q", want, got)
	}
}
