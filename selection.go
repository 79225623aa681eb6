package laguz

import (
	"context"
	"slices"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Selection memoizes a selector over a Global. It records the paths the
// selector consumed and is invalidated only by broadcasts related to one of
// them.
//
// Subscribe and Snapshot form the pair an external "observe and re-render"
// adapter drives: Snapshot returns the same value until a relevant change
// arrives, and Subscribe is told when that happens.
type Selection[T any] struct {
	selector func(Reader) T
	clock    clockz.Clock
	metrics  MetricsProvider
	detach   func()

	mu            sync.Mutex
	version       uint64
	cachedVersion uint64
	cached        T
	hasCache      bool
	accessed      []string
	consumers     []registration
	nextID        uint64
	closed        bool

	namespace map[string]any
}

// Select creates a Selection over g. The selector runs lazily, on the first
// Snapshot.
func Select[T any](g *Global, selector func(Reader) T) *Selection[T] {
	s := &Selection[T]{
		selector:  selector,
		clock:     g.clock,
		metrics:   g.metrics,
		namespace: g.State(),
	}
	s.detach = g.Watch(s.onChange)
	return s
}

// onChange bumps the version once when any changed path is related to any
// accessed path.
func (s *Selection[T]) onChange(c Change) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	trigger, ok := firstRelated(c.Paths, s.accessed)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.version++
	version := s.version
	consumers := slices.Clone(s.consumers)
	s.mu.Unlock()

	s.metrics.OnInvalidate()
	capitan.Emit(context.Background(), SelectionInvalidated,
		KeyTrigger.Field(trigger),
		KeyVersion.Field(int(version)),
	)
	for _, r := range consumers {
		r.fn(c)
	}
}

func firstRelated(changed, accessed []string) (string, bool) {
	for _, c := range changed {
		for _, a := range accessed {
			if Related(c, a) {
				return c, true
			}
		}
	}
	return "", false
}

// Subscribe registers fn to be called after every invalidation. The
// returned function removes the registration.
func (s *Selection[T]) Subscribe(fn func()) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.consumers = append(s.consumers, registration{id: id, fn: func(Change) { fn() }})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.consumers = slices.DeleteFunc(s.consumers, func(r registration) bool {
				return r.id == id
			})
		})
	}
}

// Snapshot returns the cached value while nothing relevant has changed,
// otherwise reruns the selector and caches a shallow-normalized result.
func (s *Selection[T]) Snapshot() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasCache && s.cachedVersion == s.version {
		return s.cached
	}

	start := s.clock.Now()
	r, accessed := NewReader(s.namespace)
	value := normalize(s.selector(r))

	s.cached = value
	s.hasCache = true
	s.cachedVersion = s.version
	s.accessed = accessed()

	s.metrics.OnRecompute(s.clock.Since(start))
	capitan.Emit(context.Background(), SelectionComputed,
		KeyVersion.Field(int(s.version)),
		KeyCount.Field(len(s.accessed)),
	)
	return value
}

// Stale reports whether the next Snapshot will rerun the selector.
func (s *Selection[T]) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.hasCache || s.cachedVersion != s.version
}

// Version returns the number of invalidations so far.
func (s *Selection[T]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Accessed returns the paths consumed by the last computation.
func (s *Selection[T]) Accessed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.accessed)
}

// Close detaches from the Global and drops every consumer and the cache.
func (s *Selection[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.consumers = nil
	s.accessed = nil
	var zero T
	s.cached = zero
	s.hasCache = false
	s.mu.Unlock()
	s.detach()
}
