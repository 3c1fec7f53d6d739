// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package ocs implements the OCS wire format: the compact binary
// datagram a face-tracking sensor emits once per channel update.
//
// A message is laid out as:
//
//	address  NUL  pad-to-4
//	','  type-tags  NUL  pad-to-4
//	parameter*  (4 bytes each, big-endian)
//
// The address is an ASCII path of at most [MaxAddressLength] bytes
// (e.g. "/jawOpen"). Type tags are one byte per parameter: 'f' for an
// IEEE-754 float32, 'i' for a two's-complement int32. At most
// [MaxParameters] parameters are carried.
//
// [Decode] never reads past the end of its input; every malformed
// layout yields one of the package's sentinel errors so callers can
// drop the datagram. [Message.MarshalBinary] produces the same layout
// and exists for tools and tests that need to emit traffic.
package ocs
