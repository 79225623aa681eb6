package laguz

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/zoobzio/clockz"
)

// Global composes several stores under one namespace. Each member's
// broadcasts are re-broadcast with the member's key as a path prefix.
type Global struct {
	stores    map[string]*Store
	namespace map[string]any
	emitter   *Emitter
	clock     clockz.Clock
	metrics   MetricsProvider

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// Compose creates a Global over stores. The map is copied; adding to it
// afterwards has no effect.
//
// Example:
//
//	g := laguz.Compose(map[string]*laguz.Store{"user": users, "settings": settings})
//	theme := laguz.Select(g, func(r laguz.Reader) string {
//	    return r.At("settings.theme").String()
//	})
func Compose(stores map[string]*Store) *Global {
	g := &Global{
		stores:    make(map[string]*Store, len(stores)),
		namespace: make(map[string]any, len(stores)),
		emitter:   NewEmitter(clockz.RealClock),
		clock:     clockz.RealClock,
		metrics:   NoOpMetricsProvider{},
	}
	for _, key := range slices.Sorted(maps.Keys(stores)) {
		s := stores[key]
		if s == nil {
			continue
		}
		g.stores[key] = s
		g.namespace[key] = s.State()
		g.unsubs = append(g.unsubs, s.Subscribe(func(paths []string) {
			g.emitter.Emit(prefixPaths(key, paths))
		}))
	}
	return g
}

// prefixPaths moves member paths under key. A member's root keys are bare,
// so the first segment is re-joined to pick up bracket quoting.
func prefixPaths(key string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if p == "" {
			out[i] = key
			continue
		}
		head := p
		if j := strings.IndexAny(p, ".["); j >= 0 {
			head = p[:j]
		}
		out[i] = JoinPath(key, head) + p[len(head):]
	}
	return out
}

// Clock sets the clock used for broadcast timestamps and selection timing.
func (g *Global) Clock(clock clockz.Clock) *Global {
	if clock == nil {
		clock = clockz.RealClock
	}
	g.clock = clock
	g.emitter.setClock(clock)
	return g
}

// Metrics sets the provider that selections created afterwards report to.
func (g *Global) Metrics(provider MetricsProvider) *Global {
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	g.metrics = provider
	return g
}

// Store returns the member registered under key.
func (g *Global) Store(key string) (*Store, bool) {
	s, ok := g.stores[key]
	return s, ok
}

// Keys returns the member keys in sorted order.
func (g *Global) Keys() []string {
	return slices.Sorted(maps.Keys(g.stores))
}

// State returns the namespace: each member's root keyed by member key.
func (g *Global) State() map[string]any {
	return maps.Clone(g.namespace)
}

// Subscribe registers fn for every composed broadcast.
func (g *Global) Subscribe(fn func(paths []string)) func() {
	return g.emitter.Subscribe(func(c Change) { fn(c.Paths) })
}

// Watch is Subscribe with the broadcast timestamp.
func (g *Global) Watch(fn Listener) func() {
	return g.emitter.Subscribe(fn)
}

// Flush flushes every member store, in key order.
func (g *Global) Flush() {
	for _, key := range g.Keys() {
		g.stores[key].Flush()
	}
}

// Close detaches from every member and drops all subscribers. Member stores
// stay open.
func (g *Global) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsubs := g.unsubs
	g.unsubs = nil
	g.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	g.emitter.Clear()
}
