package laguz

import (
	"slices"
	"testing"
)

func wrapMap(t *testing.T, e *Engine, raw map[any]any) *Map {
	t.Helper()
	root := wrapObject(t, e, map[string]any{"m": raw})
	m, ok := root.Get("m").(*Map)
	if !ok {
		t.Fatalf("expected *Map, got %T", root.Get("m"))
	}
	return m
}

func wrapSet(t *testing.T, e *Engine, raw map[any]struct{}) *Set {
	t.Helper()
	root := wrapObject(t, e, map[string]any{"s": raw})
	s, ok := root.Get("s").(*Set)
	if !ok {
		t.Fatalf("expected *Set, got %T", root.Get("s"))
	}
	return s
}

func TestMap_SetReportsKeyPath(t *testing.T) {
	e, r := newTestEngine()
	m := wrapMap(t, e, map[any]any{})

	m.Set("a", 1)
	expectPaths(t, r, "m.a", "m.$keys")

	m.Set(1, "one")
	expectPaths(t, r, `m["1"]`, "m.$keys")

	m.Set("a", 1)
	expectPaths(t, r)

	m.Set("a", 2)
	expectPaths(t, r, "m.a")

	m.Set("b", nil)
	expectPaths(t, r)
	if m.Has("b") {
		t.Error("expected nil under an absent key to be a no-op")
	}

	m.Set("a", nil)
	expectPaths(t, r, "m.a")
	if !m.Has("a") {
		t.Error("expected nil over a present value to be stored")
	}
}

func TestMap_IgnoresUnhashableKeys(t *testing.T) {
	e, r := newTestEngine()
	m := wrapMap(t, e, map[any]any{})

	m.Set([]int{1}, 1)
	expectPaths(t, r)

	if m.Has([]int{1}) || m.Delete([]int{1}) {
		t.Error("expected unhashable key to be absent")
	}
	if _, ok := m.Lookup([]int{1}); ok {
		t.Error("expected lookup of unhashable key to fail")
	}
}

func TestMap_Delete(t *testing.T) {
	e, r := newTestEngine()
	m := wrapMap(t, e, map[any]any{"a": 1})

	if !m.Delete("a") {
		t.Error("expected delete of present key to succeed")
	}
	expectPaths(t, r, "m.a", "m.$keys")

	if m.Delete("a") {
		t.Error("expected delete of absent key to fail")
	}
	expectPaths(t, r)
}

func TestMap_ClearReportsOnce(t *testing.T) {
	e, r := newTestEngine()
	m := wrapMap(t, e, map[any]any{"a": 1, "b": 2, "c": 3})

	m.Clear()
	expectPaths(t, r, "m")
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d entries", m.Len())
	}

	m.Clear()
	expectPaths(t, r)
}

func TestMap_WrapsContainerValues(t *testing.T) {
	e, _ := newTestEngine()
	m := wrapMap(t, e, map[any]any{"cfg": map[string]any{"on": true}, 2: []any{}})

	cfg, ok := m.Get("cfg").(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", m.Get("cfg"))
	}
	if cfg.Path() != "m.cfg" {
		t.Errorf("unexpected path %q", cfg.Path())
	}

	list, ok := m.Get(2).(*Array)
	if !ok {
		t.Fatalf("expected *Array, got %T", m.Get(2))
	}
	if list.Path() != `m["2"]` {
		t.Errorf("unexpected path %q", list.Path())
	}
}

func TestMap_IterationOrder(t *testing.T) {
	e, _ := newTestEngine()
	m := wrapMap(t, e, map[any]any{"b": 2, "a": 1, 3: "three"})

	if got := m.Keys(); !slices.Equal(got, []any{3, "a", "b"}) {
		t.Errorf("unexpected keys %v", got)
	}
	if got := m.Values(); !slices.Equal(got, []any{"three", 1, 2}) {
		t.Errorf("unexpected values %v", got)
	}

	var keys []any
	m.ForEach(func(value, key any, owner *Map) {
		if owner != m {
			t.Error("expected the map itself")
		}
		keys = append(keys, key)
	})
	if !slices.Equal(keys, []any{3, "a", "b"}) {
		t.Errorf("unexpected ForEach keys %v", keys)
	}
}

func TestSet_MembershipReportsSetPath(t *testing.T) {
	e, r := newTestEngine()
	s := wrapSet(t, e, map[any]struct{}{})

	s.Add("x")
	expectPaths(t, r, "s")

	s.Add("x")
	expectPaths(t, r)

	if !s.Has("x") || s.Len() != 1 {
		t.Error("expected x to be a member")
	}

	if !s.Delete("x") {
		t.Error("expected delete of member to succeed")
	}
	expectPaths(t, r, "s")

	if s.Delete("x") {
		t.Error("expected delete of non-member to fail")
	}
	expectPaths(t, r)
}

func TestSet_Clear(t *testing.T) {
	e, r := newTestEngine()
	s := wrapSet(t, e, map[any]struct{}{1: {}, 2: {}})

	s.Clear()
	expectPaths(t, r, "s")

	s.Clear()
	expectPaths(t, r)
}

func TestSet_ContainerMembers(t *testing.T) {
	e, r := newTestEngine()
	s := wrapSet(t, e, map[any]struct{}{})
	item := map[string]any{"id": 1}

	s.Add(item)
	expectPaths(t, r, "s")

	if !s.Has(item) {
		t.Error("expected container to be a member")
	}
	s.Add(item)
	expectPaths(t, r)

	values := s.Values()
	if len(values) != 1 {
		t.Fatalf("expected 1 member, got %d", len(values))
	}
	if _, ok := values[0].(*Object); !ok {
		t.Errorf("expected wrapped member, got %T", values[0])
	}
}

func TestSet_UnhashableLeavesAreIgnored(t *testing.T) {
	e, r := newTestEngine()
	s := wrapSet(t, e, map[any]struct{}{})

	s.Add([]int{1})
	expectPaths(t, r)
	if s.Has([]int{1}) {
		t.Error("expected unhashable value to be absent")
	}
}

func TestSet_Iteration(t *testing.T) {
	e, _ := newTestEngine()
	s := wrapSet(t, e, map[any]struct{}{"b": {}, "a": {}, 1: {}})

	if got := s.Values(); !slices.Equal(got, []any{1, "a", "b"}) {
		t.Errorf("unexpected values %v", got)
	}

	var seen []any
	s.ForEach(func(value, key any, owner *Set) {
		if value != key {
			t.Errorf("expected value and key to match, got %v and %v", value, key)
		}
		if owner != s {
			t.Error("expected the set itself")
		}
		seen = append(seen, value)
	})
	if !slices.Equal(seen, []any{1, "a", "b"}) {
		t.Errorf("unexpected ForEach order %v", seen)
	}
}
