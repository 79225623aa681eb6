package laguz

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Change is a single broadcast: the paths that changed and when.
type Change struct {
	Paths []string
	At    time.Time
}

// Listener receives change broadcasts.
type Listener func(Change)

type registration struct {
	id uint64
	fn Listener
}

// Emitter is a process-local change broadcaster. Listeners are invoked
// synchronously, in registration order, outside the emitter's lock.
type Emitter struct {
	clock clockz.Clock

	mu        sync.RWMutex
	listeners []registration
	nextID    uint64
	last      time.Time
}

// NewEmitter creates an Emitter stamping broadcasts with clock.
// A nil clock uses clockz.RealClock.
func NewEmitter(clock clockz.Clock) *Emitter {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Emitter{clock: clock}
}

// Subscribe registers fn for every future broadcast. The returned function
// removes exactly this registration and is safe to call more than once.
func (e *Emitter) Subscribe(fn Listener) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, registration{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, r := range e.listeners {
		if r.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Emit broadcasts paths to every registered listener.
// With no listeners it does nothing.
func (e *Emitter) Emit(paths []string) {
	e.mu.Lock()
	if len(e.listeners) == 0 {
		e.mu.Unlock()
		return
	}
	at := e.clock.Now()
	if at.Before(e.last) {
		at = e.last
	}
	e.last = at
	listeners := make([]registration, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	change := Change{Paths: paths, At: at}
	for _, r := range listeners {
		r.fn(change)
	}
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// Clear removes every registration.
func (e *Emitter) Clear() {
	e.mu.Lock()
	e.listeners = nil
	e.mu.Unlock()
}

// setClock replaces the timestamp source.
func (e *Emitter) setClock(clock clockz.Clock) {
	if clock == nil {
		clock = clockz.RealClock
	}
	e.mu.Lock()
	e.clock = clock
	e.mu.Unlock()
}
