// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package ingest receives OCS datagrams from the network and keeps a
// [channel.Cache] current.
//
// A [Listener] owns one UDP socket and one goroutine. The goroutine
// blocks in a receive, decodes each datagram with [ocs.Decode] and
// applies it to the cache. Malformed or unrelated datagrams are counted
// and dropped without logging. Stop shuts the socket down to wake the
// pending receive, closes it and waits for the goroutine to exit.
//
// A [Source] shares one listener among any number of consumers. Each
// consumer calls [Source.Acquire] and reads channels through the
// returned [Handle]. The first acquisition starts the listener; the
// last [Handle.Release] stops it and does not return until the
// goroutine has exited.
//
// Socket setup failures (bind, socket options) are logged once and
// leave the listener idle rather than failing the caller. Reads through
// a handle whose listener is idle fail with [ErrIdle], which trackers
// report as inactive.
package ingest
