// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Facial trackers stamp every sample with the time elapsed since the
// layer started, and the command-line tools pace output and replay
// with tickers and sleeps. All of them take a Clock so tests can run
// against Fake() and control time with Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go player.Run(ctx) // sleeps on c between frames
//	c.WaitForTimers(1)
//	c.Advance(20 * time.Millisecond)
package clock
