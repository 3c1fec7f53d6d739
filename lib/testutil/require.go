// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value from ch. The test fails if ch
// closes first or nothing arrives within timeout; what describes the
// wait in the failure message.
func RequireReceive[T any](t TB, ch <-chan T, timeout time.Duration, what string, args ...any) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("%s: channel closed", fmt.Sprintf(what, args...))
		}
		return v
	case <-timer.C:
		t.Fatalf("%s: nothing received after %v", fmt.Sprintf(what, args...), timeout)
	}
	panic("unreachable")
}

// RequireClosed waits for a done channel to close.
func RequireClosed(t TB, done <-chan struct{}, timeout time.Duration, what string, args ...any) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		t.Fatalf("%s: still open after %v", fmt.Sprintf(what, args...), timeout)
	}
}
