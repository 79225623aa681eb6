/*
Package laguz provides fine-grained reactive state containers.

Application code mutates plain nested data (objects, arrays, maps and sets)
through wrapper types, and observers are notified only when data they
actually consumed has changed.

# Stores

A Store owns a root Object. Every effective write beneath it reports its
path, and the store folds reports into a coalesced pending set that is
broadcast once per flush:

	store, err := laguz.Build(func(root *laguz.Object) any {
	    return map[string]any{"count": 0, "list": []any{}}
	})
	if err != nil {
	    return err
	}
	state := store.State()
	state.Set("count", 1)                       // broadcasts ["count"]
	state.Get("list").(*laguz.Array).Push(5)    // broadcasts [list["0"] list.length]

Writes of the identical value, and of a slice whose elements are pairwise
identical to the current one, are silent. Flushing is deferred to the next
scheduling turn (or WithDebounce); WithSyncMode leaves it to Flush and Batch.

# Paths

Paths join identifier keys with dots and quote everything else in
brackets: user.name, list["0"], tags["two words"]. The empty path is the
root. A path is the parent of itself and of every path that extends it
with a dot.

# Wrappers

Object, Array, Map and Set wrap map[string]any, []any, map[any]any and
map[any]struct{}. Reads of nested containers return wrappers, one per raw
container and path. Opaque values (times, errors, byte slices, channels,
functions and anything implementing Opaque) are never wrapped. Writes that
add or remove an object or map key also report path.$keys, the way array
length changes report path.length. Set membership changes report the set's
own path.

# Selections

Compose places several stores under one namespace; Select memoizes a
selector over it. The selector reads through a Reader, which records the
paths it consumes. The selection is invalidated only by broadcasts related
to one of those paths, and Snapshot returns the cached value until then:

	g := laguz.Compose(map[string]*laguz.Store{"user": users, "settings": settings})
	theme := laguz.Select(g, func(r laguz.Reader) string {
	    return r.At("settings.theme").String()
	})
	unsubscribe := theme.Subscribe(func() { render(theme.Snapshot()) })

# Feeds

A Feed keeps a store in step with an external source. Each payload from a
Watcher is decoded with a Codec (JSON, YAML, TOML or CUE), validated, and
applied in one Batch. Failures leave the store at its last applied value
and move the feed to a degraded state:

	feed := laguz.NewFeed[map[string]any](store, laguz.NewFileWatcher("flags.yaml"), laguz.ReplaceValues).
	    Codec(laguz.YAMLCodec{})
	if err := feed.Start(ctx); err != nil {
	    log.Printf("initial load failed: %v", err)
	}

# Observability

Lifecycle events are emitted as capitan signals (see signals.go) with the
field keys in fields.go. MetricsProvider receives flush, selection and feed
callbacks; PrometheusMetrics implements it with Prometheus collectors.
*/
package laguz
