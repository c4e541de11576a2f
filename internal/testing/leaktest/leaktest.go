// Package leaktest checks that background workers exit when their owner
// shuts down.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleTimeout = 2 * time.Second
	pollInterval  = 10 * time.Millisecond
)

// Baseline records the goroutine count and returns a check to defer. The
// check polls until the count falls back to at most baseline+tolerance.
func Baseline(t testing.TB, tolerance int) func() {
	t.Helper()
	runtime.Gosched()
	before := runtime.NumGoroutine()

	return func() {
		t.Helper()
		deadline := time.Now().Add(settleTimeout)
		after := runtime.NumGoroutine()
		for after > before+tolerance && time.Now().Before(deadline) {
			time.Sleep(pollInterval)
			runtime.Gosched()
			after = runtime.NumGoroutine()
		}
		if after > before+tolerance {
			t.Errorf("goroutines leaked: before=%d after=%d tolerance=%d", before, after, tolerance)
		}
	}
}
