// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel holds the named scalar channels a face-tracking
// sensor publishes and the lock-guarded cache that stores their latest
// values.
//
// Two fixed channel sets exist: [Expression] (facial blend-shape
// weights, one per OCS address such as "/jawOpen") and [EyeState]
// (the gaze axes "/leftEyeX", "/rightEyeX" and "/eyesY"). Address
// lookup is case-insensitive. Every value written to a [Cache] is
// clamped to [0,1].
//
// A single mutex guards both arrays. Writers hold it only while
// storing one value and readers only while copying an array out, so a
// reader never observes a partially applied message.
package channel
