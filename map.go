package laguz

import (
	"iter"
	"slices"
	"strings"
)

// Map wraps a map[any]any. Set and Delete report the key's path, plus
// path.$keys when the key set changes; Clear reports the map's own path.
type Map struct {
	engine *Engine
	raw    map[any]any
	path   string
}

// Path returns the map's location within its store.
func (m *Map) Path() string { return m.path }

// Raw returns the underlying map.
func (m *Map) Raw() map[any]any { return m.raw }

// Get returns the value stored under key, wrapped if it is a container.
func (m *Map) Get(key any) any {
	v, _ := m.Lookup(key)
	return v
}

// Lookup is Get with an existence flag.
func (m *Map) Lookup(key any) (any, bool) {
	if !hashable(key) {
		return nil, false
	}
	e := m.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.at(key)
}

// at requires the engine lock.
func (m *Map) at(key any) (any, bool) {
	v, ok := m.raw[key]
	if !ok {
		return nil, false
	}
	if s, isSlice := v.([]any); isSlice {
		box := &s
		m.raw[key] = box
		v = box
	}
	return m.engine.wrap(v, JoinPath(m.path, key)), true
}

// Set stores value under key. An identical value is a no-op, and so is nil
// under an absent key. Keys that cannot be held by a Go map are ignored.
func (m *Map) Set(key, value any) {
	if !hashable(key) {
		return
	}
	e := m.engine
	e.mu.Lock()
	prev, had := m.raw[key]
	if same(prev, value) {
		e.mu.Unlock()
		return
	}
	m.raw[key] = toRaw(value)
	e.mu.Unlock()
	e.report(keyChange(m.path, key, !had)...)
}

// Delete removes key, reporting its path only if it was present.
func (m *Map) Delete(key any) bool {
	if !hashable(key) {
		return false
	}
	e := m.engine
	e.mu.Lock()
	_, ok := m.raw[key]
	if ok {
		delete(m.raw, key)
	}
	e.mu.Unlock()
	if ok {
		e.report(keyChange(m.path, key, true)...)
	}
	return ok
}

// Clear empties the map and reports the map's path once. Clearing an empty
// map does nothing.
func (m *Map) Clear() {
	e := m.engine
	e.mu.Lock()
	if len(m.raw) == 0 {
		e.mu.Unlock()
		return
	}
	clear(m.raw)
	e.mu.Unlock()
	e.report(m.path)
}

// Has reports whether key is present.
func (m *Map) Has(key any) bool {
	if !hashable(key) {
		return false
	}
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()
	_, ok := m.raw[key]
	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()
	return len(m.raw)
}

// Keys returns the keys ordered by their path encoding.
func (m *Map) Keys() []any {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()
	return m.keys()
}

func (m *Map) keys() []any {
	keys := make([]any, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b any) int {
		return strings.Compare(keyString(a), keyString(b))
	})
	return keys
}

// Values returns the values in key order, wrapped.
func (m *Map) Values() []any {
	e := m.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := m.keys()
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		v, _ := m.at(k)
		out = append(out, v)
	}
	return out
}

// All iterates entries in key order with wrapped values.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, k := range m.Keys() {
			v, ok := m.Lookup(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// ForEach calls fn for every entry with the wrapped value, the key, and the
// map itself.
func (m *Map) ForEach(fn func(value, key any, m *Map)) {
	for k, v := range m.All() {
		fn(v, k, m)
	}
}
