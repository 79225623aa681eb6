package integration

import (
	"testing"
	"time"
)

const settle = 2 * time.Second

// eventually fails the test unless cond holds before settle elapses.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	for deadline := time.Now().Add(settle); time.Now().Before(deadline); time.Sleep(5 * time.Millisecond) {
		if cond() {
			return
		}
	}
	t.Fatalf("timed out waiting for %s", what)
}
