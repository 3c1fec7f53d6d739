// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the ocsface tools.
//
// Four package-level variables are injected at build time via
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/ocsface/ocsface/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// They default to "unknown" and "0.1.0-dev" in development builds and
// test runs. Every command answers --version with [Print].
package version
