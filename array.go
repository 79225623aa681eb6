package laguz

import "iter"

// lengthKey is the pseudo-property reported when an array's length changes.
const lengthKey = "length"

// Array wraps a *[]any. Index writes report the index path; operations that
// change the length also report path.length.
type Array struct {
	engine *Engine
	raw    *[]any
	path   string
}

// Path returns the array's location within its store.
func (a *Array) Path() string { return a.path }

// Raw returns the current slice.
func (a *Array) Raw() []any {
	a.engine.mu.Lock()
	defer a.engine.mu.Unlock()
	return *a.raw
}

// Len returns the number of elements.
func (a *Array) Len() int {
	a.engine.mu.Lock()
	defer a.engine.mu.Unlock()
	return len(*a.raw)
}

// Get returns the element at i, wrapped if it is a container, or nil when i
// is out of range.
func (a *Array) Get(i int) any {
	v, _ := a.Lookup(i)
	return v
}

// Lookup is Get with an in-range flag.
func (a *Array) Lookup(i int) (any, bool) {
	e := a.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	return a.at(i)
}

// at requires the engine lock.
func (a *Array) at(i int) (any, bool) {
	items := *a.raw
	if i < 0 || i >= len(items) {
		return nil, false
	}
	v := items[i]
	if s, ok := v.([]any); ok {
		box := &s
		items[i] = box
		v = box
	}
	return a.engine.wrap(v, JoinPath(a.path, i)), true
}

// Set writes value at index i. Writing past the end grows the array with
// nil elements and also reports the length. Negative indexes are ignored.
func (a *Array) Set(i int, value any) {
	if i < 0 {
		return
	}
	e := a.engine
	e.mu.Lock()
	items := *a.raw
	var prev any
	if i < len(items) {
		prev = items[i]
	}
	if unchanged(prev, value) {
		e.mu.Unlock()
		return
	}
	grew := i >= len(items)
	for len(items) <= i {
		items = append(items, nil)
	}
	items[i] = toRaw(value)
	*a.raw = items
	e.mu.Unlock()

	if grew {
		e.report(JoinPath(a.path, i), JoinPath(a.path, lengthKey))
		return
	}
	e.report(JoinPath(a.path, i))
}

// Push appends values and returns the new length.
func (a *Array) Push(values ...any) int {
	e := a.engine
	e.mu.Lock()
	items := *a.raw
	start := len(items)
	for _, v := range values {
		items = append(items, toRaw(v))
	}
	*a.raw = items
	n := len(items)
	e.mu.Unlock()

	if len(values) == 0 {
		return n
	}
	paths := make([]string, 0, len(values)+1)
	for i := start; i < n; i++ {
		paths = append(paths, JoinPath(a.path, i))
	}
	e.report(append(paths, JoinPath(a.path, lengthKey))...)
	return n
}

// Pop removes and returns the last element.
func (a *Array) Pop() (any, bool) {
	e := a.engine
	e.mu.Lock()
	items := *a.raw
	if len(items) == 0 {
		e.mu.Unlock()
		return nil, false
	}
	last := len(items) - 1
	v, _ := a.at(last)
	items[last] = nil
	*a.raw = items[:last]
	e.mu.Unlock()

	e.report(JoinPath(a.path, last), JoinPath(a.path, lengthKey))
	return v, true
}

// Delete clears the element at i, leaving a nil hole, and reports the index
// path. Like Object.Delete it always succeeds.
func (a *Array) Delete(i int) bool {
	e := a.engine
	e.mu.Lock()
	if i >= 0 && i < len(*a.raw) {
		(*a.raw)[i] = nil
	}
	e.mu.Unlock()
	e.report(JoinPath(a.path, i))
	return true
}

// Truncate sets the length to n, dropping or nil-padding elements.
func (a *Array) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	e := a.engine
	e.mu.Lock()
	items := *a.raw
	if n == len(items) {
		e.mu.Unlock()
		return
	}
	if n < len(items) {
		clear(items[n:])
		items = items[:n]
	} else {
		for len(items) < n {
			items = append(items, nil)
		}
	}
	*a.raw = items
	e.mu.Unlock()
	e.report(JoinPath(a.path, lengthKey))
}

// All iterates elements in order with wrapped values.
func (a *Array) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i := 0; ; i++ {
			v, ok := a.Lookup(i)
			if !ok || !yield(i, v) {
				return
			}
		}
	}
}

// Values returns a copy of the elements, wrapped.
func (a *Array) Values() []any {
	e := a.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]any, len(*a.raw))
	for i := range out {
		out[i], _ = a.at(i)
	}
	return out
}
