// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package recording

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest over a recording's frames.
type Digest [32]byte

// frameDomainKey is the BLAKE3 key for frame digests: the domain
// name zero-padded to 32 bytes.
var frameDomainKey = [32]byte{
	'o', 'c', 's', 'f', 'a', 'c', 'e', '.', 'r', 'e', 'c', 'o', 'r', 'd', 'i', 'n',
	'g', '.', 'f', 'r', 'a', 'm', 'e', 's', 0, 0, 0, 0, 0, 0, 0, 0,
}

// frameDigest accumulates the digest of a frame sequence. Each frame
// contributes its offset, its payload length and its payload, so
// reordered, retimed or resized frames change the digest.
type frameDigest struct {
	hasher *blake3.Hasher
	header [16]byte
}

func newFrameDigest() *frameDigest {
	hasher, err := blake3.NewKeyed(frameDomainKey[:])
	if err != nil {
		panic("recording: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return &frameDigest{hasher: hasher}
}

func (d *frameDigest) add(frame Frame) {
	binary.BigEndian.PutUint64(d.header[:8], uint64(frame.Offset))
	binary.BigEndian.PutUint64(d.header[8:], uint64(len(frame.Payload)))
	d.hasher.Write(d.header[:])
	d.hasher.Write(frame.Payload)
}

func (d *frameDigest) sum() Digest {
	var digest Digest
	copy(digest[:], d.hasher.Sum(nil))
	return digest
}
