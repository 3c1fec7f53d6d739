// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds socket plumbing shared by the UDP listener and
// the command-line tools.
//
// [ListenUDP] binds a datagram socket with SO_REUSEADDR and
// SO_REUSEPORT set, so several processes on one host can receive on the
// same well-known port. [Shutdown] half-closes a socket in both
// directions, which wakes any goroutine blocked in a receive before the
// socket is closed. [IsExpectedCloseError] classifies the error that
// goroutine then observes.
package netutil
