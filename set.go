package laguz

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Set wraps a map[any]struct{}. Membership changes report the set's own
// path; elements have no stable key of their own.
//
// Container elements are held as their wrappers, since raw maps cannot be
// Go map keys.
type Set struct {
	engine *Engine
	raw    map[any]struct{}
	path   string
}

// Path returns the set's location within its store.
func (s *Set) Path() string { return s.path }

// Raw returns the underlying map.
func (s *Set) Raw() map[any]struct{} { return s.raw }

// member returns the form v takes inside the set. Requires the engine lock.
func (s *Set) member(v any) (any, bool) {
	if IsWrapped(v) {
		return v, true
	}
	if classify(v) != kindLeaf {
		return s.engine.wrap(v, s.path), true
	}
	return v, hashable(v)
}

// Add inserts v. Adding a present element does nothing.
func (s *Set) Add(v any) {
	e := s.engine
	e.mu.Lock()
	m, ok := s.member(v)
	if !ok {
		e.mu.Unlock()
		return
	}
	if _, present := s.raw[m]; present {
		e.mu.Unlock()
		return
	}
	s.raw[m] = struct{}{}
	e.mu.Unlock()
	e.report(s.path)
}

// Delete removes v, reporting the set's path only if it was present.
func (s *Set) Delete(v any) bool {
	e := s.engine
	e.mu.Lock()
	m, ok := s.member(v)
	if ok {
		_, ok = s.raw[m]
	}
	if ok {
		delete(s.raw, m)
	}
	e.mu.Unlock()
	if ok {
		e.report(s.path)
	}
	return ok
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := s.member(v)
	if !ok {
		return false
	}
	_, ok = s.raw[m]
	return ok
}

// Clear empties the set and reports its path. Clearing an empty set does
// nothing.
func (s *Set) Clear() {
	e := s.engine
	e.mu.Lock()
	if len(s.raw) == 0 {
		e.mu.Unlock()
		return
	}
	clear(s.raw)
	e.mu.Unlock()
	e.report(s.path)
}

// Len returns the number of elements.
func (s *Set) Len() int {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return len(s.raw)
}

// Values returns the elements, wrapped, ordered by their path encoding.
func (s *Set) Values() []any {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]any, 0, len(s.raw))
	for v := range s.raw {
		out = append(out, e.wrap(v, s.path))
	}
	slices.SortStableFunc(out, func(a, b any) int {
		return strings.Compare(elementKey(a), elementKey(b))
	})
	return out
}

// elementKey orders leaves by their path encoding, then wrappers by address.
func elementKey(v any) string {
	if IsWrapped(v) {
		return "\xff" + fmt.Sprintf("%p", v)
	}
	return keyString(v)
}

// All iterates the elements in Values order.
func (s *Set) All() iter.Seq[any] {
	return slices.Values(s.Values())
}

// ForEach calls fn for every element. As with native sets the element is
// passed as both value and key.
func (s *Set) ForEach(fn func(value, key any, s *Set)) {
	for v := range s.All() {
		fn(v, v, s)
	}
}
