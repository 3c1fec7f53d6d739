// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracking turns cached sensor channels into the values the XR
// runtime reports: a gaze pose for [EyeGaze] and blend-shape weights
// for [Facial].
//
// Trackers read channels through a [ChannelReader], normally an
// [ingest.Handle]. A read failure never fails the query. The tracker
// turns inactive instead: the eye-gaze tracker reports an identity
// pose with no validity flags, and a facial tracker reports its
// previous weights with IsActive false.
//
// Both trackers are safe for concurrent use. Close releases the
// channel reader; the tracker must not be used afterwards.
package tracking
