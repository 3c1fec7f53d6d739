// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package recording

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/codec"
)

// Format identifies recording files.
const Format = "ocsface-recording"

// FormatVersion is the layout written by this package. Readers reject
// other versions.
const FormatVersion = 1

var (
	// ErrFormat is returned when a stream is not a recording this
	// package can read.
	ErrFormat = errors.New("recording: unrecognized format")

	// ErrCorrupt is returned at the end of a recording whose frames do
	// not match its trailer.
	ErrCorrupt = errors.New("recording: frames do not match trailer")
)

// Header opens every recording.
type Header struct {
	Format  string `cbor:"format"`
	Version int    `cbor:"version"`

	// Started is the wall-clock start in Unix nanoseconds.
	Started int64 `cbor:"started"`

	// Source describes where the datagrams were captured, typically
	// the listener address.
	Source string `cbor:"source,omitempty"`
}

// StartTime returns Started as a time.Time.
func (h Header) StartTime() time.Time {
	return time.Unix(0, h.Started)
}

// Frame is one captured datagram.
type Frame struct {
	// Offset is the time since the recording started.
	Offset time.Duration `cbor:"offset"`

	Payload []byte `cbor:"payload"`
}

// Trailer closes a recording written to completion.
type Trailer struct {
	Frames int    `cbor:"frames"`
	Digest Digest `cbor:"digest"`
}

// entry is one item after the header: a frame, or the trailer.
type entry struct {
	Frame *Frame   `cbor:"frame,omitempty"`
	End   *Trailer `cbor:"end,omitempty"`
}

// Writer appends frames to a recording. It is safe for concurrent use
// so a listener goroutine can write while another goroutine closes.
type Writer struct {
	clock clock.Clock
	start time.Time

	mu      sync.Mutex
	zstd    *zstd.Encoder
	encoder *codec.Encoder
	closer  io.Closer
	digest  *frameDigest
	frames  int
	closed  bool
}

// NewWriter starts a recording on w. Frame offsets are measured on clk
// from now. Close flushes the compressed stream but does not close w.
func NewWriter(w io.Writer, clk clock.Clock, source string) (*Writer, error) {
	compressor, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}

	start := clk.Now()
	writer := &Writer{
		clock:   clk,
		start:   start,
		zstd:    compressor,
		encoder: codec.NewEncoder(compressor),
		digest:  newFrameDigest(),
	}
	header := Header{
		Format:  Format,
		Version: FormatVersion,
		Started: start.UnixNano(),
		Source:  source,
	}
	if err := writer.encoder.Encode(header); err != nil {
		compressor.Close()
		return nil, fmt.Errorf("writing recording header: %w", err)
	}
	return writer, nil
}

// Create truncates path and starts a recording in it. Close closes the
// file.
func Create(path string, clk clock.Clock, source string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	writer, err := NewWriter(file, clk, source)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.closer = file
	return writer, nil
}

// Write records payload at the current clock offset. The payload is
// encoded before Write returns, so the caller may reuse it.
func (w *Writer) Write(payload []byte) error {
	offset := clock.Since(w.clock, w.start)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	frame := Frame{Offset: offset, Payload: payload}
	if err := w.encoder.Encode(entry{Frame: &frame}); err != nil {
		return fmt.Errorf("writing frame %d: %w", w.frames, err)
	}
	w.digest.add(frame)
	w.frames++
	return nil
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Close writes the trailer and flushes the recording. Frames written
// after Close fail with os.ErrClosed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.encoder.Encode(entry{End: &Trailer{Frames: w.frames, Digest: w.digest.sum()}})
	if err != nil {
		err = fmt.Errorf("writing trailer: %w", err)
	}
	err = errors.Join(err, w.zstd.Close())
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	return err
}

// Reader reads frames from a recording.
type Reader struct {
	header  Header
	zstd    *zstd.Decoder
	decoder *codec.Decoder
	closer  io.Closer
	digest  *frameDigest
	frames  int
	ended   bool
}

// NewReader reads the header from r and returns a Reader positioned at
// the first frame. Close releases the decompressor but does not close
// r.
func NewReader(r io.Reader) (*Reader, error) {
	decompressor, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	reader := &Reader{
		zstd:    decompressor,
		decoder: codec.NewDecoder(decompressor),
		digest:  newFrameDigest(),
	}
	if err := reader.decoder.Decode(&reader.header); err != nil {
		decompressor.Close()
		return nil, fmt.Errorf("%w: reading header: %v", ErrFormat, err)
	}
	if reader.header.Format != Format {
		decompressor.Close()
		return nil, fmt.Errorf("%w: format %q", ErrFormat, reader.header.Format)
	}
	if reader.header.Version != FormatVersion {
		decompressor.Close()
		return nil, fmt.Errorf("%w: version %d, want %d", ErrFormat, reader.header.Version, FormatVersion)
	}
	return reader, nil
}

// Open opens the recording at path. Close closes the file.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reader.closer = file
	return reader, nil
}

// Header returns the recording header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next frame, or io.EOF after the last one. The
// trailer is checked when it is reached: frames that do not match it
// yield ErrCorrupt instead of io.EOF. A recording without a trailer,
// such as one cut off by a crash, yields io.ErrUnexpectedEOF after its
// last complete frame.
func (r *Reader) Next() (Frame, error) {
	if r.ended {
		return Frame{}, io.EOF
	}
	var item entry
	if err := r.decoder.Decode(&item); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, fmt.Errorf("reading frame %d: %w", r.frames, err)
	}

	switch {
	case item.Frame != nil:
		r.digest.add(*item.Frame)
		r.frames++
		return *item.Frame, nil
	case item.End != nil:
		r.ended = true
		if item.End.Frames != r.frames {
			return Frame{}, fmt.Errorf("%w: read %d frames, trailer counts %d", ErrCorrupt, r.frames, item.End.Frames)
		}
		if item.End.Digest != r.digest.sum() {
			return Frame{}, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
		}
		return Frame{}, io.EOF
	default:
		return Frame{}, fmt.Errorf("%w: empty entry after frame %d", ErrFormat, r.frames)
	}
}

// Close releases the reader.
func (r *Reader) Close() error {
	r.zstd.Close()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
