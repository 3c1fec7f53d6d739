// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by every ocsface
// package that writes binary files. Recordings are the main user:
// each frame of a capture is one CBOR item.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so a
// recording written twice from the same datagrams is byte-identical.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stream use:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// Types serialized only as CBOR carry `cbor` struct tags.
package codec
