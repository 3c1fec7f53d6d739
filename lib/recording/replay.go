// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package recording

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ocsface/ocsface/lib/clock"
)

// ReplayOptions configures Replay.
type ReplayOptions struct {
	// Clock paces the replay. Nil uses the real clock.
	Clock clock.Clock

	// Speed scales playback: 2 plays twice as fast. Zero or negative
	// plays at recorded speed.
	Speed float64
}

// Replay reads every frame from r and passes its payload to send,
// waiting until each frame's offset has elapsed since the replay
// started. It stops at the end of the recording, on the first send
// error, or when ctx is cancelled between frames, and returns the
// number of frames sent.
func Replay(ctx context.Context, r *Reader, send func(payload []byte) error, options ReplayOptions) (int, error) {
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	speed := options.Speed
	if speed <= 0 {
		speed = 1
	}

	start := clk.Now()
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}

		due := time.Duration(float64(frame.Offset) / speed)
		if wait := due - clock.Since(clk, start); wait > 0 {
			clk.Sleep(wait)
		}
		if err := send(frame.Payload); err != nil {
			return sent, err
		}
		sent++
	}
}
