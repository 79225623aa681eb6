package laguz

import (
	"runtime"
	"sync"
	"weak"
)

// OnChange receives the fully-qualified path of every effective write.
type OnChange func(path string)

// identity keys a wrapper by the address of its raw container and the path
// it was wrapped at.
type identity struct {
	raw  uintptr
	path string
}

// Engine wraps raw containers so that reads return wrappers and writes report
// paths. One Engine serves one OnChange callback; every wrapper it creates
// shares the engine's lock.
//
// The identity tables hold weak pointers. A wrapper keeps its raw container
// alive, so while an entry's wrapper is alive its raw address cannot be
// reused; once the wrapper is collected the entry is pruned.
type Engine struct {
	onChange OnChange

	mu      sync.Mutex
	objects map[identity]weak.Pointer[Object]
	arrays  map[identity]weak.Pointer[Array]
	maps    map[identity]weak.Pointer[Map]
	sets    map[identity]weak.Pointer[Set]
}

// NewEngine creates an Engine reporting writes to onChange.
func NewEngine(onChange OnChange) *Engine {
	e := &Engine{onChange: onChange}
	e.reset()
	return e
}

// Wrap returns value unchanged when it is a leaf, an opaque built-in, or
// already one of this engine's wrappers. Otherwise it returns the wrapper
// for value at basePath, creating it on first use.
//
// A bare []any has no identity of its own, so each call boxes it anew; wrap
// the *[]any (or Unwrap an *Array) to get a stable wrapper.
func (e *Engine) Wrap(value any, basePath string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wrap(value, basePath)
}

// Owns reports whether v is a wrapper created by this engine.
func (e *Engine) Owns(v any) bool {
	switch w := v.(type) {
	case *Object:
		return w != nil && w.engine == e
	case *Array:
		return w != nil && w.engine == e
	case *Map:
		return w != nil && w.engine == e
	case *Set:
		return w != nil && w.engine == e
	}
	return false
}

// Cached returns the number of live wrappers in the identity tables.
func (e *Engine) Cached() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return live(e.objects) + live(e.arrays) + live(e.maps) + live(e.sets)
}

// Reset evicts every identity entry. Wrappers already handed out keep
// working; later reads create fresh ones.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
}

func (e *Engine) reset() {
	e.objects = make(map[identity]weak.Pointer[Object])
	e.arrays = make(map[identity]weak.Pointer[Array])
	e.maps = make(map[identity]weak.Pointer[Map])
	e.sets = make(map[identity]weak.Pointer[Set])
}

// wrap is Wrap with e.mu held.
func (e *Engine) wrap(value any, path string) any {
	if e.Owns(value) {
		return value
	}
	switch classify(value) {
	case kindObject:
		raw := value.(map[string]any)
		id, _ := rawID(raw)
		key := identity{raw: id, path: path}
		if w := lookup(e.objects, key); w != nil {
			return w
		}
		w := &Object{engine: e, raw: raw, path: path}
		remember(e, e.objects, key, w)
		return w
	case kindArray:
		raw := boxed(value)
		id, _ := rawID(raw)
		key := identity{raw: id, path: path}
		if w := lookup(e.arrays, key); w != nil {
			return w
		}
		w := &Array{engine: e, raw: raw, path: path}
		remember(e, e.arrays, key, w)
		return w
	case kindMap:
		raw := value.(map[any]any)
		id, _ := rawID(raw)
		key := identity{raw: id, path: path}
		if w := lookup(e.maps, key); w != nil {
			return w
		}
		w := &Map{engine: e, raw: raw, path: path}
		remember(e, e.maps, key, w)
		return w
	case kindSet:
		raw := value.(map[any]struct{})
		id, _ := rawID(raw)
		key := identity{raw: id, path: path}
		if w := lookup(e.sets, key); w != nil {
			return w
		}
		w := &Set{engine: e, raw: raw, path: path}
		remember(e, e.sets, key, w)
		return w
	}
	return value
}

// report forwards path to the change callback. Never call with e.mu held.
func (e *Engine) report(paths ...string) {
	if e.onChange == nil {
		return
	}
	for _, p := range paths {
		e.onChange(p)
	}
}

// keysKey is the pseudo-property reported when an object's or map's key
// set changes.
const keysKey = "$keys"

// keyChange returns the paths to report for a write at key, adding
// path.$keys when the write added or removed the key.
func keyChange(path string, key any, membership bool) []string {
	if !membership {
		return []string{JoinPath(path, key)}
	}
	return []string{JoinPath(path, key), JoinPath(path, keysKey)}
}

// forget prunes the entry for id if its wrapper has been collected.
func (e *Engine) forget(id identity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prune(e.objects, id)
	prune(e.arrays, id)
	prune(e.maps, id)
	prune(e.sets, id)
}

func lookup[T any](table map[identity]weak.Pointer[T], id identity) *T {
	if p, ok := table[id]; ok {
		return p.Value()
	}
	return nil
}

func remember[T any](e *Engine, table map[identity]weak.Pointer[T], id identity, w *T) {
	table[id] = weak.Make(w)
	runtime.AddCleanup(w, e.forget, id)
}

func prune[T any](table map[identity]weak.Pointer[T], id identity) {
	if p, ok := table[id]; ok && p.Value() == nil {
		delete(table, id)
	}
}

func live[T any](table map[identity]weak.Pointer[T]) int {
	n := 0
	for _, p := range table {
		if p.Value() != nil {
			n++
		}
	}
	return n
}

// IsWrapped reports whether v is a wrapper from any engine.
func IsWrapped(v any) bool {
	switch w := v.(type) {
	case *Object:
		return w != nil
	case *Array:
		return w != nil
	case *Map:
		return w != nil
	case *Set:
		return w != nil
	}
	return false
}

// Unwrap returns the raw container behind a wrapper, or v itself.
// Arrays unwrap to their *[]any box.
func Unwrap(v any) any {
	switch w := v.(type) {
	case *Object:
		if w != nil {
			return w.raw
		}
	case *Array:
		if w != nil {
			return w.raw
		}
	case *Map:
		if w != nil {
			return w.raw
		}
	case *Set:
		if w != nil {
			return w.raw
		}
	}
	return v
}

// boxed returns the *[]any form of an array value.
func boxed(v any) *[]any {
	switch s := v.(type) {
	case *[]any:
		return s
	case []any:
		return &s
	}
	return nil
}

// toRaw converts a value being written into the form stored in raw
// containers: wrappers are unwrapped and bare slices are boxed.
func toRaw(v any) any {
	v = Unwrap(v)
	if s, ok := v.([]any); ok {
		return &s
	}
	return v
}
