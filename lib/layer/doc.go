// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package layer implements the API layer that adds eye-gaze
// interaction (XR_EXT_eye_gaze_interaction) and HTC facial tracking
// (XR_HTC_facial_tracking) to an XR runtime that has neither.
//
// A [Layer] sits between the loader and the next element of the layer
// chain. [Layer.Negotiate] hands the loader two bootstrap entry points:
// [Layer.CreateAPILayerInstance] and [Layer.GetInstanceProcAddr].
// Instance creation strips the two extensions from the request before
// forwarding it, so the runtime never sees extensions it would reject,
// and records which features the application asked for.
//
// GetInstanceProcAddr returns a hook for each intercepted entry point
// and the next element's function for everything else. Hooks forward
// to the next element unless the call concerns the layer's own
// features:
//
//   - Bindings for the eye-gaze interaction profile stay in the layer;
//     pose queries and space locations for the bound actions are
//     answered from the gaze tracker.
//   - Facial trackers exist only in the layer. Their handles never
//     reach the runtime.
//   - System properties report the configured feature support.
//
// Hooks that create handles register them in the [Registry] once the
// next element succeeds; destroy hooks unregister first and then
// forward. Destroying a parent destroys the children the layer
// tracks for it: a session its spaces and facial trackers, an action
// set its actions, an instance everything it owns.
//
// Every hook runs inside a boundary that converts errors and panics
// into result codes and writes the diagnostic to the layer log. No
// error or panic crosses into the host.
//
// Trackers read sensor channels through the Layer's shared
// [ingest.Source]. Its UDP listener runs while any tracker exists.
package layer
