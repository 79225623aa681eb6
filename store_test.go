package laguz

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func counterStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Build(func(_ *Object) any {
		return map[string]any{"count": 0, "list": []any{}}
	}, append([]Option{WithSyncMode()}, opts...)...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

// broadcasts collects the paths of every broadcast a store makes.
type broadcasts struct {
	mu  sync.Mutex
	got [][]string
	ch  chan []string
}

func collect(s interface{ Subscribe(func([]string)) func() }) *broadcasts {
	b := &broadcasts{ch: make(chan []string, 16)}
	s.Subscribe(func(paths []string) {
		b.mu.Lock()
		b.got = append(b.got, paths)
		b.mu.Unlock()
		b.ch <- paths
	})
	return b
}

func (b *broadcasts) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.got)
}

func (b *broadcasts) wait(t *testing.T) []string {
	t.Helper()
	select {
	case paths := <-b.ch:
		return paths
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestBuild_NilInitializerYieldsEmptyState(t *testing.T) {
	store, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer store.Close()

	if store.State().Len() != 0 {
		t.Errorf("expected empty state, got %v", store.State().Keys())
	}
	if store.Name() == "" {
		t.Error("expected a generated name")
	}
}

func TestBuild_RejectsNonObjects(t *testing.T) {
	other, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer other.Close()

	var nilMap map[string]any
	tests := []struct {
		name   string
		result any
	}{
		{"nil", nil},
		{"nil map", nilMap},
		{"array", []any{1}},
		{"leaf", 42},
		{"foreign object", other.State()},
		{"nested object", other.Engine().Wrap(map[string]any{}, "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Build(func(_ *Object) any { return tt.result })
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("expected ErrInvalidState, got %v", err)
			}
			if store != nil {
				t.Error("expected no store")
			}
		})
	}
}

func TestBuild_InitialStateIsNotBroadcast(t *testing.T) {
	store, err := Build(func(root *Object) any {
		root.Set("a", 1)
		root.Set("b", map[string]any{"c": 2})
		return root
	}, WithSyncMode())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer store.Close()

	if pending := store.Pending(); len(pending) != 0 {
		t.Errorf("expected nothing pending, got %q", pending)
	}
	if store.State().Get("a") != 1 {
		t.Errorf("expected initial value, got %v", store.State().Get("a"))
	}
}

func TestStore_BroadcastsChangedPaths(t *testing.T) {
	store := counterStore(t)
	b := collect(store)

	store.State().Set("count", 1)
	if got := store.Flush(); !slices.Equal(got, []string{"count"}) {
		t.Errorf("expected [count], got %q", got)
	}

	store.State().Get("list").(*Array).Push(5)
	store.Flush()

	want := [][]string{{"count"}, {`list["0"]`, "list.length"}}
	if got := b.all(); !slices.EqualFunc(got, want, slices.Equal[[]string]) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStore_IdenticalWriteIsNotBroadcast(t *testing.T) {
	store := counterStore(t)
	b := collect(store)

	store.State().Set("count", 0)
	store.State().Set("list", []any{})

	if got := store.Flush(); got != nil {
		t.Errorf("expected nothing to flush, got %q", got)
	}
	if len(b.all()) != 0 {
		t.Error("expected no broadcast")
	}
}

func TestStore_CoalescesPendingPaths(t *testing.T) {
	store := counterStore(t)

	state := store.State()
	state.Set("user", map[string]any{"name": "ada"})
	state.Get("user").(*Object).Set("name", "grace")
	state.Set("count", 1)
	state.Set("count", 2)

	if got := store.Flush(); !slices.Equal(got, []string{"user", "$keys", "count"}) {
		t.Errorf("expected [user $keys count], got %q", got)
	}
}

func TestStore_BatchBroadcastsOnce(t *testing.T) {
	store := counterStore(t)
	b := collect(store)

	store.Batch(func() {
		store.State().Set("a", 1)
		store.Batch(func() {
			store.State().Set("b", 2)
		})
		if got := store.Flush(); got != nil {
			t.Errorf("expected flush inside batch to do nothing, got %q", got)
		}
		store.State().Set("c", 3)
	})

	got := b.all()
	if len(got) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(got))
	}
	if !slices.Equal(got[0], []string{"a", "$keys", "b", "c"}) {
		t.Errorf("expected [a $keys b c], got %q", got[0])
	}
}

func TestStore_BatchFlushesOnPanic(t *testing.T) {
	store := counterStore(t)
	b := collect(store)

	func() {
		defer func() { _ = recover() }()
		store.Batch(func() {
			store.State().Set("count", 1)
			panic("boom")
		})
	}()

	if len(b.all()) != 1 {
		t.Error("expected the batch to flush on the way out")
	}
}

func TestStore_DeferredFlush(t *testing.T) {
	clock := clockz.NewFakeClock()
	store, err := Build(func(_ *Object) any {
		return map[string]any{"count": 0}
	}, WithDebounce(50*time.Millisecond), WithClock(clock))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer store.Close()
	b := collect(store)

	store.State().Set("count", 1)
	store.State().Set("count", 2)
	store.State().Set("other", true)

	if len(b.all()) != 0 {
		t.Fatal("expected no broadcast before the debounce window")
	}
	if got := store.Pending(); !slices.Equal(got, []string{"count", "other", "$keys"}) {
		t.Errorf("expected pending [count other $keys], got %q", got)
	}

	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()

	if got := b.wait(t); !slices.Equal(got, []string{"count", "other", "$keys"}) {
		t.Errorf("expected [count other $keys], got %q", got)
	}

	store.State().Set("count", 3)
	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()

	if got := b.wait(t); !slices.Equal(got, []string{"count"}) {
		t.Errorf("expected [count], got %q", got)
	}
}

func TestStore_ManualFlushCancelsScheduledFlush(t *testing.T) {
	clock := clockz.NewFakeClock()
	store, err := Build(nil, WithDebounce(50*time.Millisecond), WithClock(clock))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer store.Close()
	b := collect(store)

	store.State().Set("a", 1)
	store.Flush()
	b.wait(t)

	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()
	time.Sleep(10 * time.Millisecond)

	if n := len(b.all()); n != 1 {
		t.Errorf("expected one broadcast, got %d", n)
	}
}

func TestStore_WatchTimestamps(t *testing.T) {
	clock := clockz.NewFakeClock()
	store := counterStore(t, WithClock(clock))

	var got Change
	store.Watch(func(c Change) { got = c })

	store.State().Set("count", 1)
	store.Flush()

	if !got.At.Equal(clock.Now()) {
		t.Errorf("expected timestamp %v, got %v", clock.Now(), got.At)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	store := counterStore(t)

	calls := 0
	unsubscribe := store.Subscribe(func([]string) { calls++ })

	store.State().Set("count", 1)
	store.Flush()
	unsubscribe()
	store.State().Set("count", 2)
	store.Flush()

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestStore_Close(t *testing.T) {
	store := counterStore(t)
	b := collect(store)

	store.State().Set("count", 1)
	store.Close()
	store.Close()

	if got := store.Flush(); got != nil {
		t.Errorf("expected closed store not to flush, got %q", got)
	}
	store.State().Set("count", 2)
	if len(store.Pending()) != 0 {
		t.Error("expected writes after close not to be reported")
	}
	if len(b.all()) != 0 {
		t.Error("expected no broadcast after close")
	}
	if store.Engine().Cached() != 0 {
		t.Error("expected identity tables to be evicted")
	}
}

func TestStore_Metrics(t *testing.T) {
	metrics := &recordingMetrics{}
	store := counterStore(t, WithMetrics(metrics), WithName("counter"))

	store.State().Set("count", 1)
	store.State().Set("other", 1)
	store.Flush()
	store.Flush()

	if metrics.flushes != 1 || metrics.flushed != 3 {
		t.Errorf("expected 1 flush of 3 paths, got %d of %d", metrics.flushes, metrics.flushed)
	}
	if store.Name() != "counter" {
		t.Errorf("unexpected name %q", store.Name())
	}
}

func TestSubscriberOf(t *testing.T) {
	store := counterStore(t)

	sub, ok := SubscriberOf(store.State())
	if !ok {
		t.Fatal("expected the root to expose its store")
	}
	b := collect(sub)
	store.State().Set("count", 1)
	store.Flush()
	if len(b.all()) != 1 {
		t.Error("expected broadcast through the subscriber")
	}

	for _, v := range []any{store.State().Get("list"), 1, nil, (*Object)(nil)} {
		if _, ok := SubscriberOf(v); ok {
			t.Errorf("expected no subscriber for %T", v)
		}
	}
}
