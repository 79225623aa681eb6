package laguz

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
)

// recorder collects the paths a selector consumed.
type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  map[string]struct{}
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[string]struct{})}
}

func (r *recorder) record(paths ...string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paths {
		if _, ok := r.seen[p]; ok {
			continue
		}
		r.seen[p] = struct{}{}
		r.paths = append(r.paths, p)
	}
}

func (r *recorder) accessed() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.paths)
}

// Reader is a read-only, read-recording view over a composed namespace.
//
// Navigating with Get or At records nothing. Consuming a node records its
// path: Value, String, Int, Float, Bool, Exists, Len, Keys and Each. Has
// records the child path it asks about. A selector that only consumes a.b is
// therefore unaffected by changes to a.c.
//
// A Reader never writes. Values it returns are the store's own wrappers,
// passed through unchanged.
type Reader struct {
	value  any
	path   string
	exists bool
	rec    *recorder
}

// NewReader returns a Reader over value rooted at the empty path. The paths
// it consumes are reported by the returned function.
func NewReader(value any) (Reader, func() []string) {
	rec := newRecorder()
	return Reader{value: value, exists: true, rec: rec}, rec.accessed
}

// Path returns the reader's location.
func (r Reader) Path() string { return r.path }

// Get returns a reader for the child at key. Missing children yield a
// reader whose Exists is false; consuming it still records its path.
func (r Reader) Get(key any) Reader {
	child := Reader{path: JoinPath(r.path, key), rec: r.rec}
	child.value, child.exists = lookupChild(r.value, key)
	return child
}

// At navigates a path produced by JoinPath. A malformed path yields a
// missing reader at that path.
func (r Reader) At(path string) Reader {
	keys, err := ParsePath(path)
	if err != nil {
		return Reader{path: path, rec: r.rec}
	}
	cur := r
	for _, k := range keys {
		cur = cur.Get(k)
	}
	return cur
}

func lookupChild(parent, key any) (any, bool) {
	switch p := parent.(type) {
	case *Object:
		return p.Lookup(keyString(key))
	case *Array:
		if i, ok := indexOf(key); ok {
			return p.Lookup(i)
		}
	case *Map:
		if v, ok := p.Lookup(key); ok {
			return v, true
		}
		if s, ok := key.(string); ok {
			if i, err := strconv.Atoi(s); err == nil {
				return p.Lookup(i)
			}
		}
	case map[string]any:
		v, ok := p[keyString(key)]
		return v, ok
	case []any:
		if i, ok := indexOf(key); ok && i >= 0 && i < len(p) {
			return p[i], true
		}
	}
	return nil, false
}

func indexOf(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case string:
		i, err := strconv.Atoi(k)
		return i, err == nil
	}
	return 0, false
}

// consume records the reader's path. Children addressed with brackets are
// not dot-descendants, so consuming a whole container records them too.
// Added keys report path.$keys, which the path itself covers.
func (r Reader) consume() {
	if r.rec == nil {
		return
	}
	paths := []string{r.path}
	switch v := r.value.(type) {
	case *Object:
		for _, k := range v.Keys() {
			if !isIdentifier(k) {
				paths = append(paths, JoinPath(r.path, k))
			}
		}
	case *Array:
		paths = append(paths, JoinPath(r.path, lengthKey))
		for i := range v.Len() {
			paths = append(paths, JoinPath(r.path, i))
		}
	case *Map:
		for _, k := range v.Keys() {
			if !isIdentifier(keyString(k)) {
				paths = append(paths, JoinPath(r.path, k))
			}
		}
	}
	r.rec.record(paths...)
}

// Exists reports whether the node is present.
func (r Reader) Exists() bool {
	r.consume()
	return r.exists
}

// Value returns the node's value.
func (r Reader) Value() any {
	r.consume()
	return r.value
}

// String returns the node as a string: strings as-is, other present leaves
// formatted with fmt, and "" for missing nodes.
func (r Reader) String() string {
	r.consume()
	switch v := r.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		if IsWrapped(v) {
			return ""
		}
		return fmt.Sprint(v)
	}
}

// Int returns the node as an int, or 0 when it is not numeric.
func (r Reader) Int() int {
	r.consume()
	switch v := r.value.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the node as a float64, or 0 when it is not numeric.
func (r Reader) Float() float64 {
	switch v := r.value.(type) {
	case float64:
		r.consume()
		return v
	case float32:
		r.consume()
		return float64(v)
	}
	return float64(r.Int())
}

// Bool returns the node as a bool, or false when it is not a bool.
func (r Reader) Bool() bool {
	r.consume()
	b, _ := r.value.(bool)
	return b
}

// Len returns the number of children. Arrays consume path.length and
// objects and maps consume path.$keys, so value writes that keep the size
// do not invalidate it.
func (r Reader) Len() int {
	switch v := r.value.(type) {
	case *Array:
		r.rec.record(JoinPath(r.path, lengthKey))
		return v.Len()
	case *Object:
		r.rec.record(JoinPath(r.path, keysKey))
		return v.Len()
	case *Map:
		r.rec.record(JoinPath(r.path, keysKey))
		return v.Len()
	}
	r.rec.record(r.path)
	switch v := r.value.(type) {
	case *Set:
		return v.Len()
	case map[string]any:
		return len(v)
	case []any:
		return len(v)
	case string:
		return len(v)
	}
	return 0
}

// Keys returns the child keys: sorted keys for objects and maps, indexes
// for arrays.
func (r Reader) Keys() []string {
	r.consume()
	switch v := r.value.(type) {
	case *Object:
		return v.Keys()
	case *Array:
		keys := make([]string, v.Len())
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case *Map:
		keys := v.Keys()
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = keyString(k)
		}
		return out
	case map[string]any:
		return slices.Sorted(maps.Keys(v))
	}
	return nil
}

// Has reports whether the child at key exists. Sets report membership of
// key and record the set's own path.
func (r Reader) Has(key any) bool {
	if s, ok := r.value.(*Set); ok {
		r.rec.record(r.path)
		return s.Has(key)
	}
	r.rec.record(JoinPath(r.path, key))
	_, ok := lookupChild(r.value, key)
	return ok
}

// Each calls fn for every child in Keys order until fn returns false.
// Set elements are passed as both key and value.
func (r Reader) Each(fn func(key any, child Reader) bool) {
	r.consume()
	switch v := r.value.(type) {
	case *Set:
		for _, e := range v.Values() {
			if !fn(e, Reader{value: e, path: r.path, exists: true, rec: r.rec}) {
				return
			}
		}
	case *Array:
		for i := range v.Len() {
			if !fn(i, r.Get(i)) {
				return
			}
		}
	case *Map:
		for _, k := range v.Keys() {
			if !fn(k, r.Get(k)) {
				return
			}
		}
	default:
		for _, k := range r.Keys() {
			if !fn(k, r.Get(k)) {
				return
			}
		}
	}
}
