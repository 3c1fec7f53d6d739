// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package tracking

import (
	"math"

	"github.com/ocsface/ocsface/lib/channel"
)

// ChannelReader is the channel access trackers need. Reads return
// copies; an error means the channels are unavailable.
type ChannelReader interface {
	Expressions() ([channel.ExpressionCount]float32, error)
	EyeStates() ([channel.EyeStateCount]float32, error)
	Release() error
}

func clamp01(v float32) float32 {
	return max(min(v, 1), 0)
}

// linearStep maps value from [from, to] onto [mapFrom, mapTo], holding
// the ends when value lies outside the input range.
func linearStep(value, from, to, mapFrom, mapTo float32) float32 {
	return clamp01((value-from)/(to-from))*(mapTo-mapFrom) + mapFrom
}

func length2(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}

func degrees(d float32) float32 {
	return d * math.Pi / 180
}
