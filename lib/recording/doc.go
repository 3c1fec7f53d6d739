// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package recording captures raw OCS datagrams to a file and plays
// them back with their original timing.
//
// A recording is a zstd stream holding a CBOR sequence: one [Header],
// one [Frame] per datagram, and a [Trailer] written on Close with the
// frame count and a keyed BLAKE3 digest of the frames. Frames carry
// the time since the recording started, so replays reproduce the
// sender's pacing.
// Payloads are stored as received, including datagrams that fail to
// decode, so a recording doubles as a fixture for decoder bugs.
//
// ocs-monitor writes recordings from the listener's datagram hook;
// ocs-send --replay plays them back.
package recording
