package laguz

// Plain returns a deep copy of v with every wrapper replaced by plain Go
// values: objects become map[string]any, arrays []any, maps
// map[string]any keyed by path encoding, and sets []any. The result is
// safe to encode and shares nothing with the store.
func Plain(v any) any {
	switch c := v.(type) {
	case *Object:
		out := make(map[string]any, c.Len())
		for k, child := range c.All() {
			out[k] = Plain(child)
		}
		return out
	case *Array:
		out := make([]any, 0, c.Len())
		for _, child := range c.All() {
			out = append(out, Plain(child))
		}
		return out
	case *Map:
		out := make(map[string]any, c.Len())
		for k, child := range c.All() {
			out[keyString(k)] = Plain(child)
		}
		return out
	case *Set:
		out := make([]any, 0, c.Len())
		for e := range c.All() {
			out = append(out, Plain(e))
		}
		return out
	case *[]any:
		if c == nil {
			return nil
		}
		return Plain(*c)
	case map[string]any:
		if c == nil {
			return c
		}
		out := make(map[string]any, len(c))
		for k, child := range c {
			out[k] = Plain(child)
		}
		return out
	case []any:
		if c == nil {
			return c
		}
		out := make([]any, len(c))
		for i, child := range c {
			out[i] = Plain(child)
		}
		return out
	}
	return v
}

// Walk calls fn with the path and value of every leaf beneath v, in key
// order. Empty containers are reported as leaves. Paths are relative to v.
func Walk(v any, fn func(path string, leaf any)) {
	walk(v, "", fn)
}

func walk(v any, path string, fn func(string, any)) {
	empty := true
	switch c := v.(type) {
	case *Object:
		for k, child := range c.All() {
			empty = false
			walk(child, JoinPath(path, k), fn)
		}
	case *Array:
		for i, child := range c.All() {
			empty = false
			walk(child, JoinPath(path, i), fn)
		}
	case *Map:
		for k, child := range c.All() {
			empty = false
			walk(child, JoinPath(path, k), fn)
		}
	default:
		fn(path, v)
		return
	}
	if empty {
		fn(path, v)
	}
}
