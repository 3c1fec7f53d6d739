// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package layerlog writes the layer's log file.
//
// The layer runs inside another program's process, so it cannot share
// that program's stderr or logging setup. It writes plain-text lines to
// its own file instead, one record per line:
//
//	[2026-10-18 14:03:11] INFO ocseyefacetracking: Enable eye gaze interaction: yes
//	[2026-10-18 14:03:11] WARN ocseyefacetracking: OCS listener setup failed error="bind: address already in use"
//
// The name after the level is the layer name. It starts as the
// configured name and is replaced with the name the loader reports
// during negotiation via [Handler.SetName].
package layerlog
