// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// ocs-send sends OCS messages to a running listener, for testing the
// layer without a face-tracking sensor.
//
// Send one message:
//
//	ocs-send /jawOpen 0.8
//	ocs-send --host 192.168.1.20 --port 9000 /leftEyeX -0.5
//	ocs-send --int /frame 42 43
//
// Flags come before the address; everything after it is a value, so
// negative values need no escaping. Values are float32 parameters
// unless --int is given. Replay a
// recording made by ocs-monitor --record with its original timing:
//
//	ocs-send --replay session.ocsrec
//	ocs-send --replay session.ocsrec --speed 2
package main
