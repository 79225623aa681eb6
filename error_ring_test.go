package laguz

import (
	"errors"
	"testing"
	"time"
)

func TestRing_NilSafe(t *testing.T) {
	var r *ring[error]

	r.push(errors.New("test"))
	r.clear()

	if r.all() != nil {
		t.Error("expected nil from nil ring")
	}
}

func TestRing_DisabledSizes(t *testing.T) {
	for _, size := range []int{0, -1} {
		if r := newRing[error](size); r != nil {
			t.Errorf("expected nil ring for size %d", size)
		}
	}
}

func TestRing_FillsOldestFirst(t *testing.T) {
	r := newRing[string](3)
	r.push("a")
	r.push("b")

	got := r.all()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestRing_WrapsAndEvictsOldest(t *testing.T) {
	r := newRing[string](3)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		r.push(v)
	}

	got := r.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 values, got %d", len(got))
	}
	if got[0] != "c" || got[1] != "d" || got[2] != "e" {
		t.Errorf("expected [c d e], got %v", got)
	}
}

func TestRing_ClearThenPush(t *testing.T) {
	r := newRing[error](2)
	r.push(errors.New("old1"))
	r.push(errors.New("old2"))
	r.clear()

	if got := r.all(); got != nil {
		t.Errorf("expected nil after clear, got %v", got)
	}

	r.push(errors.New("new"))
	got := r.all()
	if len(got) != 1 || got[0].Error() != "new" {
		t.Errorf("expected [new], got %v", got)
	}
}

func TestRing_SizeOne(t *testing.T) {
	r := newRing[int](1)
	r.push(1)
	r.push(2)

	got := r.all()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("expected [2], got %v", got)
	}
}

func TestFeedError(t *testing.T) {
	cause := errors.New("port out of range")
	err := &FeedError{Stage: "validate", At: time.Unix(0, 0), Err: cause}

	if err.Error() != "validate failed: port out of range" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected FeedError to unwrap to its cause")
	}
}
