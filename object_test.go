package laguz

import (
	"math"
	"slices"
	"testing"
	"time"
)

func TestObject_SetReportsPath(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"user": map[string]any{"name": "ada"}})

	root.Set("count", 1)
	expectPaths(t, r, "count", "$keys")

	root.Set("count", 2)
	expectPaths(t, r, "count")

	root.Get("user").(*Object).Set("name", "grace")
	expectPaths(t, r, "user.name")

	root.Get("user").(*Object).Set("two words", true)
	expectPaths(t, r, `user["two words"]`, "user.$keys")
}

func TestObject_SetIdenticalValueIsSilent(t *testing.T) {
	e, r := newTestEngine()
	nested := map[string]any{"x": 1}
	root := wrapObject(t, e, map[string]any{
		"count":  1,
		"nested": nested,
		"nan":    math.NaN(),
		"list":   []any{1, "a"},
		"ints":   []int{1, 2},
	})

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"leaf", "count", 1},
		{"raw container", "nested", nested},
		{"wrapper of current value", "nested", root.Get("nested")},
		{"nan over nan", "nan", math.NaN()},
		{"shallow-equal slice", "list", []any{1, "a"}},
		{"shallow-equal typed slice", "ints", []int{1, 2}},
		{"nil under absent key", "absent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root.Set(tt.key, tt.value)
			expectPaths(t, r)
		})
	}
}

func TestObject_SetChangedSliceReports(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"list": []any{1, 2}})

	root.Set("list", []any{2, 1})
	expectPaths(t, r, "list")

	root.Set("list", []any{2, 1, 3})
	expectPaths(t, r, "list")
}

func TestObject_SetTypeChangeReports(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"n": 1})

	root.Set("n", int64(1))
	expectPaths(t, r, "n")
}

func TestObject_WrittenContainersAreTracked(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{})

	root.Set("child", map[string]any{"x": 1})
	expectPaths(t, r, "child", "$keys")

	child, ok := root.Get("child").(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", root.Get("child"))
	}
	child.Set("x", 2)
	expectPaths(t, r, "child.x")

	if _, isWrapper := root.Raw()["child"].(*Object); isWrapper {
		t.Error("expected raw storage, not a wrapper")
	}
}

func TestObject_WritingWrapperStoresRaw(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"a": map[string]any{"x": 1}})

	a := root.Get("a").(*Object)
	root.Set("b", a)
	expectPaths(t, r, "b", "$keys")

	b := root.Get("b").(*Object)
	if a == b {
		t.Fatal("expected a distinct wrapper per path")
	}
	b.Set("x", 2)
	expectPaths(t, r, "b.x")

	if a.Get("x") != 2 {
		t.Errorf("expected shared raw container, got %v", a.Get("x"))
	}
}

func TestObject_DefineBehavesLikeSet(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"a": 1})

	root.Define("a", 1)
	expectPaths(t, r)

	root.Define("a", 2)
	expectPaths(t, r, "a")
}

func TestObject_DeleteAlwaysReports(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"a": 1})

	if !root.Delete("a") {
		t.Error("expected delete to succeed")
	}
	expectPaths(t, r, "a", "$keys")

	if !root.Delete("missing") {
		t.Error("expected delete of absent key to succeed")
	}
	expectPaths(t, r, "missing")

	if root.Has("a") {
		t.Error("expected key to be gone")
	}
}

func TestObject_Queries(t *testing.T) {
	e, _ := newTestEngine()
	root := wrapObject(t, e, map[string]any{"b": 2, "a": 1, "c": []any{}})

	if got := root.Keys(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected keys %v", got)
	}
	if root.Len() != 3 {
		t.Errorf("expected 3 keys, got %d", root.Len())
	}
	if !root.Has("a") || root.Has("z") {
		t.Error("unexpected Has result")
	}
	if v, ok := root.Lookup("z"); ok || v != nil {
		t.Errorf("expected missing lookup, got %v, %v", v, ok)
	}

	var keys []string
	for k, v := range root.All() {
		keys = append(keys, k)
		if k == "c" {
			if _, ok := v.(*Array); !ok {
				t.Errorf("expected wrapped array, got %T", v)
			}
		}
	}
	if !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Errorf("unexpected iteration order %v", keys)
	}
}

func TestObject_OpaqueValuesPassThrough(t *testing.T) {
	e, _ := newTestEngine()
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	root := wrapObject(t, e, map[string]any{"when": when})

	got, ok := root.Get("when").(time.Time)
	if !ok || !got.Equal(when) {
		t.Errorf("expected time to pass through, got %T", root.Get("when"))
	}
}

func TestObject_Assign(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{"a": 1})

	root.Assign(map[string]any{"a": 1, "c": 3, "b": 2})
	expectPaths(t, r, "b", "$keys", "c", "$keys")
}

func TestObject_MergeReportsChangedLeaves(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{
		"user": map[string]any{"name": "ada", "age": 36},
		"keep": true,
	})

	root.Merge(map[string]any{"user": map[string]any{"name": "ada", "age": 37}})
	expectPaths(t, r, "user.age")

	if !root.Has("keep") {
		t.Error("expected merge to keep unmentioned keys")
	}
}

func TestObject_ReplaceDeletesMissingKeys(t *testing.T) {
	e, r := newTestEngine()
	root := wrapObject(t, e, map[string]any{
		"user":  map[string]any{"name": "ada", "age": 36},
		"stale": 1,
	})

	root.Replace(map[string]any{"user": map[string]any{"name": "ada"}})
	expectPaths(t, r, "stale", "$keys", "user.age", "user.$keys")

	if root.Has("stale") {
		t.Error("expected stale key to be deleted")
	}
	if root.Get("user").(*Object).Has("age") {
		t.Error("expected nested key to be deleted")
	}
}
