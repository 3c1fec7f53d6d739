// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package xrerror is the structured error carried from layer internals
// to the entry-point boundary.
//
// An [Error] records a [Kind], the [xr.Result] the boundary should
// return, a description, the source location that raised it and a
// backtrace captured at construction. The assertion helpers ([Check],
// [True], [NotNil]) return nil when their condition holds and an
// *Error located at their caller otherwise:
//
//	if err := xrerror.Check(result, "xrStringToPath"); err != nil {
//		return err
//	}
//
// At the boundary, [Report] logs the error with one line per
// diagnostic field and converts it with [ResultOf]. Errors that are
// not an *Error convert to [xr.ErrorRuntimeFailure].
package xrerror
