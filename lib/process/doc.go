// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers shared by the ocsface
// commands. Each main() is a single call:
//
//	func main() {
//		process.Exit(run(os.Args[1:]))
//	}
//
// Errors from run are written to stderr without the structured logger,
// which may not exist yet when flag parsing fails. Once flags are
// parsed, [NewCommandLogger] provides one matched to stderr.
package process
