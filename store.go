package laguz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// ErrInvalidState is returned by Build when the initializer does not return
// an object.
var ErrInvalidState = errors.New("initializer must return an object")

// Initializer receives the empty root of a new store and returns its
// initial state: a map[string]any, or the root itself.
type Initializer func(root *Object) any

// Subscriber is the capability to observe a store's broadcasts.
type Subscriber interface {
	Subscribe(fn func(paths []string)) func()
}

// Store owns one root object and batches every change reported beneath it
// into coalesced broadcasts.
type Store struct {
	name     string
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock
	metrics  MetricsProvider

	engine  *Engine
	root    *Object
	emitter *Emitter

	mu           sync.Mutex
	pending      pathSet
	scheduled    bool
	generation   uint64
	depth        int
	constructing bool
	closed       bool
	done         chan struct{}
}

// Build creates a store. init receives the empty root and returns the
// initial state, which is merged onto the root without any broadcast.
//
// Example:
//
//	store, err := laguz.Build(func(root *laguz.Object) any {
//	    return map[string]any{"count": 0, "list": []any{}}
//	})
//	store.State().Set("count", 1) // broadcasts ["count"]
func Build(init Initializer, opts ...Option) (*Store, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	if cfg.metrics == nil {
		cfg.metrics = NoOpMetricsProvider{}
	}

	s := &Store{
		name:         cfg.name,
		debounce:     cfg.debounce,
		syncMode:     cfg.syncMode,
		clock:        cfg.clock,
		metrics:      cfg.metrics,
		emitter:      NewEmitter(cfg.clock),
		constructing: true,
		done:         make(chan struct{}),
	}
	s.engine = NewEngine(s.report)
	s.root = s.engine.Wrap(map[string]any{}, "").(*Object)
	s.root.store = s

	var result any = map[string]any{}
	if init != nil {
		result = init(s.root)
	}
	if err := s.merge(result); err != nil {
		s.engine.Reset()
		return nil, err
	}

	s.mu.Lock()
	s.pending.drain()
	s.constructing = false
	s.mu.Unlock()

	capitan.Emit(context.Background(), StoreBuilt,
		KeyStore.Field(s.name),
		KeyDebounce.Field(s.debounce),
	)
	return s, nil
}

// merge copies the initializer's result onto the root.
func (s *Store) merge(result any) error {
	switch r := result.(type) {
	case *Object:
		if r == s.root {
			return nil
		}
	case map[string]any:
		if r == nil {
			break
		}
		e := s.engine
		e.mu.Lock()
		for k, v := range r {
			s.root.raw[k] = toRaw(v)
		}
		e.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w: got %T", ErrInvalidState, result)
}

// Name returns the store's name.
func (s *Store) Name() string { return s.name }

// State returns the root object. Writes through it, or through any wrapper
// read from it, are broadcast.
func (s *Store) State() *Object { return s.root }

// Engine returns the engine that owns the store's wrappers.
func (s *Store) Engine() *Engine { return s.engine }

// Subscribe registers fn for every broadcast. The returned function removes
// the registration.
func (s *Store) Subscribe(fn func(paths []string)) func() {
	return s.emitter.Subscribe(func(c Change) { fn(c.Paths) })
}

// Watch is Subscribe with the broadcast timestamp.
func (s *Store) Watch(fn Listener) func() {
	return s.emitter.Subscribe(fn)
}

// SubscriberOf returns the subscription capability attached to a store's
// root object.
func SubscriberOf(v any) (Subscriber, bool) {
	o, ok := v.(*Object)
	if !ok || o == nil || o.store == nil {
		return nil, false
	}
	return o.store, true
}

// report is the engine's change callback.
func (s *Store) report(path string) {
	s.mu.Lock()
	if s.closed || s.constructing {
		s.mu.Unlock()
		return
	}
	s.pending.add(path)
	if s.depth > 0 || s.syncMode || s.scheduled {
		s.mu.Unlock()
		return
	}
	s.scheduled = true
	s.generation++
	gen := s.generation
	timer := s.clock.NewTimer(s.debounce)
	s.mu.Unlock()

	go s.await(timer, gen)
}

func (s *Store) await(timer clockz.Timer, gen uint64) {
	select {
	case <-timer.C():
		s.mu.Lock()
		current := s.scheduled && s.generation == gen
		s.mu.Unlock()
		if current {
			s.Flush()
		}
	case <-s.done:
		timer.Stop()
	}
}

// Batch runs fn and broadcasts everything it changed once, when the
// outermost Batch returns.
func (s *Store) Batch(fn func()) {
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.depth--
		outer := s.depth == 0
		s.mu.Unlock()
		if outer {
			s.Flush()
		}
	}()
	fn()
}

// Flush broadcasts the pending paths now and returns them. It does nothing
// inside a Batch or when nothing is pending.
func (s *Store) Flush() []string {
	s.mu.Lock()
	if s.depth > 0 || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.scheduled = false
	paths := s.pending.drain()
	s.mu.Unlock()

	if len(paths) == 0 {
		return nil
	}
	s.emitter.Emit(paths)
	s.metrics.OnFlush(s.name, len(paths))
	capitan.Emit(context.Background(), StoreFlushed,
		KeyStore.Field(s.name),
		KeyPaths.Field(strings.Join(paths, ",")),
		KeyCount.Field(len(paths)),
	)
	return paths
}

// Pending returns a copy of the paths waiting to be broadcast.
func (s *Store) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, s.pending.len())
	copy(out, s.pending.paths)
	return out
}

// Close discards pending paths, cancels any scheduled flush, drops every
// subscriber and evicts the identity tables. Later writes are not reported.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending.drain()
	close(s.done)
	s.mu.Unlock()

	s.emitter.Clear()
	s.engine.Reset()
	capitan.Emit(context.Background(), StoreClosed, KeyStore.Field(s.name))
}
