// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// ocsface-probe drives the layer end to end without an XR runtime. It
// negotiates with the layer, creates an instance on top of a simulated
// runtime with both tracking extensions enabled, binds a gaze action,
// creates lip and eye facial trackers, and then reports what an
// application would see:
//
//	ocsface-probe
//	ocsface-probe --config ocsface.yaml --interval 100ms --count 50
//
// Pair it with a sensor or ocs-send to check the whole path from
// datagram to gaze pose and blend-shape weights. The layer writes its
// usual log file; --log overrides the configured path.
package main
