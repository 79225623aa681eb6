package laguz

import (
	"iter"
	"maps"
	"slices"
)

// Object wraps a map[string]any. Reads of container values return wrappers
// at the extended path; effective writes report the written key's path, and
// writes that add or remove a key also report path.$keys.
type Object struct {
	engine *Engine
	raw    map[string]any
	path   string

	// store is set on a store's root only.
	store *Store
}

// Path returns the object's location within its store.
func (o *Object) Path() string { return o.path }

// Raw returns the underlying map. Arrays inside it are held as *[]any.
func (o *Object) Raw() map[string]any { return o.raw }

// Get returns the value at key, wrapped if it is a container.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup is Get with an existence flag.
func (o *Object) Lookup(key string) (any, bool) {
	e := o.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := o.raw[key]
	if !ok {
		return nil, false
	}
	if s, isSlice := v.([]any); isSlice {
		box := &s
		o.raw[key] = box
		v = box
	}
	return e.wrap(v, JoinPath(o.path, key)), true
}

// Set writes value at key. Writing the identical value, or a slice whose
// elements are pairwise identical to the current slice, does nothing.
func (o *Object) Set(key string, value any) {
	o.write(key, value)
}

// Define is property redefinition. Go maps carry no descriptors, so it
// follows the same compare/store/report contract as Set.
func (o *Object) Define(key string, value any) {
	o.write(key, value)
}

func (o *Object) write(key string, value any) {
	e := o.engine
	e.mu.Lock()
	prev, had := o.raw[key]
	if unchanged(prev, value) {
		e.mu.Unlock()
		return
	}
	o.raw[key] = toRaw(value)
	e.mu.Unlock()
	e.report(keyChange(o.path, key, !had)...)
}

// Delete removes key and reports its path. Deleting an absent key still
// succeeds and still reports.
func (o *Object) Delete(key string) bool {
	e := o.engine
	e.mu.Lock()
	_, had := o.raw[key]
	delete(o.raw, key)
	e.mu.Unlock()
	e.report(keyChange(o.path, key, had)...)
	return true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	_, ok := o.raw[key]
	return ok
}

// Keys returns the keys in sorted order.
func (o *Object) Keys() []string {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	return slices.Sorted(maps.Keys(o.raw))
}

// Len returns the number of keys.
func (o *Object) Len() int {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	return len(o.raw)
}

// All iterates keys in sorted order with wrapped values.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range o.Keys() {
			v, ok := o.Lookup(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Assign sets every entry of values, in key order.
func (o *Object) Assign(values map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		o.Set(k, values[k])
	}
}

// Merge deep-merges values: nested maps are merged into existing objects
// so only the leaves that differ report. Keys missing from values are kept.
func (o *Object) Merge(values map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		next := values[k]
		if m, ok := next.(map[string]any); ok && m != nil {
			if cur, ok := o.Get(k).(*Object); ok {
				cur.Merge(m)
				continue
			}
		}
		o.Set(k, next)
	}
}

// Replace makes the object match values: keys missing from values are
// deleted, nested maps are replaced into existing objects, and only the
// leaves that differ report.
func (o *Object) Replace(values map[string]any) {
	for _, k := range o.Keys() {
		if _, ok := values[k]; !ok {
			o.Delete(k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(values)) {
		next := values[k]
		if m, ok := next.(map[string]any); ok && m != nil {
			if cur, ok := o.Get(k).(*Object); ok {
				cur.Replace(m)
				continue
			}
		}
		o.Set(k, next)
	}
}
