// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration shared by the layer and
// the command-line tools.
//
// The layer runs inside a host process and cannot take flags, so
// [Load] reads the file named by the OCSFACE_CONFIG environment
// variable and falls back to [Default] when the variable is unset.
// Tools accept a --config flag and call [LoadFile] directly. A file
// only needs the keys it changes:
//
//	layer:
//	  facial: false
//	log:
//	  path: ${HOME}/.local/state/ocsface.log
//	  level: debug
//	listener:
//	  port: 9000
//
// Callers run [Config.Validate] before using a loaded configuration.
package config
