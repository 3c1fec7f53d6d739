// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] bound a channel wait with a
// wall-clock timeout so a goroutine that never hands off fails the test
// instead of hanging it.
//
// [FreeUDPPort] finds a loopback port that listener tests can bind
// without colliding with a sensor already streaming on the well-known
// port.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
