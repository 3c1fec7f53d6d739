// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package xrsim is an in-memory XR runtime that sits at the end of a
// layer chain.
//
// [Runtime] implements the entry points the layer forwards to: instance
// creation, path interning, system properties, sessions, action sets,
// actions, spaces and binding suggestions. It validates handles the way
// a runtime does, so a layer that forwards a stale or foreign handle
// sees [xr.ErrorHandleInvalid]. It implements no extensions: facial
// tracking entry points are not resolvable and any requested extension
// fails instance creation, which lets tests observe that the layer
// filters and serves them itself.
//
// Tests and the ocsface-probe tool use it in place of a real runtime:
//
//	runtime := xrsim.New()
//	instance, result := l.CreateAPILayerInstance(&info, runtime.LayerCreateInfo())
//
// [Runtime.FailNext] injects a failure into the next call of a named
// entry point and [Runtime.Calls] counts calls, for exercising the
// layer's error paths.
package xrsim
