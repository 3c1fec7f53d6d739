// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// ocs-monitor listens for OCS datagrams the way the layer does and
// prints the channel values it would report. Use it to check that a
// sensor is streaming and which channels it drives.
//
//	ocs-monitor
//	ocs-monitor --port 9000 --interval 250ms
//	ocs-monitor --json | jq .eye_states
//	ocs-monitor --record session.ocsrec
//
// Each report lists the non-zero channels and the listener's datagram
// counters. --record captures every datagram for later replay with
// ocs-send --replay.
package main
