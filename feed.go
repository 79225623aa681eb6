package laguz

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for feed changes.
const DefaultDebounce = 100 * time.Millisecond

// validate is the shared validator instance.
var validate = validator.New()

// Validator lets payload types define their own validation. Struct types
// that do not implement it are checked against their `validate` tags.
type Validator interface {
	Validate() error
}

// ApplyFunc writes a decoded payload into a store's root.
type ApplyFunc[T any] func(root *Object, v T) error

// ReplaceValues is an ApplyFunc for map payloads: the root is made to match
// v, so only the paths whose values differ are broadcast.
func ReplaceValues(root *Object, v map[string]any) error {
	if v == nil {
		return errors.New("payload is not an object")
	}
	root.Replace(v)
	return nil
}

// Feed watches a source, decodes and validates each payload, and applies
// it to a store in one batch. A failed payload leaves the store at the last
// applied value.
type Feed[T any] struct {
	store          *Store
	watcher        Watcher
	apply          ApplyFunc[T]
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	metrics        MetricsProvider
	onStop         func(FeedState)

	state        atomic.Int32
	current      atomic.Pointer[T]
	lastError    atomic.Pointer[error]
	errorHistory *ring[error]

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewFeed creates a Feed applying payloads from watcher to store.
//
// Example:
//
//	feed := laguz.NewFeed[map[string]any](store, laguz.NewFileWatcher("flags.yaml"), laguz.ReplaceValues).
//	    Codec(laguz.YAMLCodec{})
//	if err := feed.Start(ctx); err != nil {
//	    log.Printf("initial load failed: %v", err)
//	}
func NewFeed[T any](store *Store, watcher Watcher, apply ApplyFunc[T]) *Feed[T] {
	f := &Feed[T]{
		store:    store,
		watcher:  watcher,
		apply:    apply,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    JSONCodec{},
		metrics:  NoOpMetricsProvider{},
	}
	f.state.Store(int32(StateLoading))
	return f
}

// Debounce sets the debounce duration for changes after the first.
// Changes arriving within this duration are coalesced into one apply.
// Default: 100ms. Must be called before Start().
func (f *Feed[T]) Debounce(d time.Duration) *Feed[T] {
	f.debounce = d
	return f
}

// SyncMode disables the background watch loop. After Start, payloads are
// processed one at a time by Process. Must be called before Start().
func (f *Feed[T]) SyncMode() *Feed[T] {
	f.syncMode = true
	return f
}

// Clock sets a custom clock for debouncing and timing.
// Must be called before Start().
func (f *Feed[T]) Clock(clock clockz.Clock) *Feed[T] {
	f.clock = clock
	return f
}

// Codec sets the payload codec. Default: JSONCodec.
// Must be called before Start().
func (f *Feed[T]) Codec(codec Codec) *Feed[T] {
	f.codec = codec
	return f
}

// StartupTimeout bounds the wait for the watcher's initial payload.
// Default: no timeout. Must be called before Start().
func (f *Feed[T]) StartupTimeout(d time.Duration) *Feed[T] {
	f.startupTimeout = d
	return f
}

// Metrics sets a metrics provider. Must be called before Start().
func (f *Feed[T]) Metrics(provider MetricsProvider) *Feed[T] {
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	f.metrics = provider
	return f
}

// OnStop sets a callback invoked with the final state when the watch loop
// ends. Must be called before Start().
func (f *Feed[T]) OnStop(fn func(FeedState)) *Feed[T] {
	f.onStop = fn
	return f
}

// ErrorHistorySize sets how many recent failures ErrorHistory retains.
// Use 0 (default) to keep only LastError. Must be called before Start().
func (f *Feed[T]) ErrorHistorySize(n int) *Feed[T] {
	f.errorHistory = newRing[error](n)
	return f
}

// State returns the current state of the Feed.
func (f *Feed[T]) State() FeedState {
	return FeedState(f.state.Load())
}

// Current returns the last applied payload and true, or the zero value and
// false if nothing has been applied.
func (f *Feed[T]) Current() (T, bool) {
	ptr := f.current.Load()
	if ptr == nil {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// LastError returns the most recent failure, or nil after a success.
func (f *Feed[T]) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the failures since the last success, oldest first.
// Each is a *FeedError. Returns nil unless ErrorHistorySize was set.
func (f *Feed[T]) ErrorHistory() []error {
	return f.errorHistory.all()
}

// Start begins watching. It blocks until the first payload is processed
// and returns that payload's error, if any; watching continues in the
// background either way. In sync mode later payloads wait for Process.
//
// Start can only be called once.
func (f *Feed[T]) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return errors.New("feed already started")
	}
	f.started = true
	f.mu.Unlock()

	capitan.Emit(ctx, FeedStarted,
		KeyStore.Field(f.store.Name()),
		KeyDebounce.Field(f.debounce),
		KeyWatcherType.Field(fmt.Sprintf("%T", f.watcher)),
		KeyCodec.Field(f.codec.ContentType()),
	)

	changes, err := f.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if f.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = f.clock.WithTimeout(ctx, f.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if f.startupTimeout > 0 && errors.Is(startupCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("startup timeout: watcher did not emit initial value within %v", f.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return errors.New("watcher closed before emitting initial value")
		}
		f.received(ctx)
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		f.changes = changes
		return initialErr
	}

	go f.watch(ctx, changes)
	return initialErr
}

// Process handles the next available payload in sync mode. It returns
// false when not in sync mode, when nothing is waiting, or when the watcher
// has closed.
func (f *Feed[T]) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}
	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		f.received(ctx)
		_ = f.process(ctx, raw) //nolint:errcheck // Errors stored via fail
		return true
	default:
		return false
	}
}

func (f *Feed[T]) received(ctx context.Context) {
	capitan.Emit(ctx, FeedChangeReceived, KeyStore.Field(f.store.Name()))
	f.metrics.OnChangeReceived()
}

// process decodes, validates and applies one payload.
func (f *Feed[T]) process(ctx context.Context, raw []byte) error {
	start := f.clock.Now()
	oldState := f.State()

	var next T
	if err := f.codec.Unmarshal(raw, &next); err != nil {
		return f.fail(ctx, oldState, start, "decode", err)
	}
	if err := validateValue(next); err != nil {
		return f.fail(ctx, oldState, start, "validate", err)
	}

	prev, hasPrev := f.Current()
	var applyErr error
	f.store.Batch(func() {
		root := f.store.State()
		applyErr = f.apply(root, next)
		if applyErr != nil && hasPrev {
			_ = f.apply(root, prev) //nolint:errcheck // best-effort restore of the last good value
		}
	})
	if applyErr != nil {
		return f.fail(ctx, oldState, start, "apply", applyErr)
	}

	f.current.Store(&next)
	f.lastError.Store(nil)
	f.errorHistory.clear()
	f.transition(ctx, oldState, StateHealthy)
	capitan.Emit(ctx, FeedApplySucceeded, KeyStore.Field(f.store.Name()))
	f.metrics.OnFeedSuccess(f.clock.Since(start))
	return nil
}

// fail records a failed stage and moves to the failure state.
func (f *Feed[T]) fail(ctx context.Context, oldState FeedState, start time.Time, stage string, err error) error {
	ferr := &FeedError{Stage: stage, At: f.clock.Now(), Err: err}
	var stored error = ferr
	f.lastError.Store(&stored)
	f.errorHistory.push(ferr)
	f.transition(ctx, oldState, f.failureState())
	store, msg := KeyStore.Field(f.store.Name()), KeyError.Field(err.Error())
	switch stage {
	case "decode":
		capitan.Emit(ctx, FeedDecodeFailed, store, msg)
	case "validate":
		capitan.Emit(ctx, FeedValidationFailed, store, msg)
	default:
		capitan.Emit(ctx, FeedApplyFailed, store, msg)
	}
	f.metrics.OnFeedFailure(stage, f.clock.Since(start))
	return ferr
}

// failureState returns Degraded once anything has been applied, else Empty.
func (f *Feed[T]) failureState() FeedState {
	if f.current.Load() == nil {
		return StateEmpty
	}
	return StateDegraded
}

func (f *Feed[T]) transition(ctx context.Context, oldState, newState FeedState) {
	if oldState == newState {
		return
	}
	f.state.Store(int32(newState))
	capitan.Emit(ctx, FeedStateChanged,
		KeyStore.Field(f.store.Name()),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	f.metrics.OnFeedStateChange(oldState, newState)
}

// watch processes payloads with debouncing until ctx ends or the watcher
// closes. A pending payload is processed before returning on close.
func (f *Feed[T]) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		final := f.State()
		capitan.Emit(ctx, FeedStopped,
			KeyStore.Field(f.store.Name()),
			KeyState.Field(final.String()),
		)
		if f.onStop != nil {
			f.onStop(final)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via fail
				}
				return
			}
			f.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via fail
				hasPending = false
			}
		}
	}
}

// validateValue runs Validate when v implements Validator, otherwise checks
// struct tags on struct values.
func validateValue(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(rv.Interface())
}
