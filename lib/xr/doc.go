// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package xr is the Go rendition of the slice of the XR runtime API
// that the tracking layer intercepts: opaque handles, result codes,
// the structures passed through intercepted calls and one function
// type per entry point.
//
// Entry points are resolved by name through a [GetInstanceProcAddrFunc].
// The resolved value is a [Func], which callers assert to the typed
// function they asked for:
//
//	fn, result := next(instance, xr.FuncCreateSession)
//	createSession, ok := fn.(xr.CreateSessionFunc)
//
// Extension structures travel in a [Chain] attached to the structure
// they extend. [Find] locates an element of a given type.
//
// The package contains no behavior beyond small helpers on these
// types. The layer lives in lib/layer; a simulated runtime suitable for
// tests lives in lib/xr/xrsim.
package xr
