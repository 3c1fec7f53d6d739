// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package tracking

import (
	"math"
	"sync"
	"time"

	"github.com/ocsface/ocsface/lib/channel"
	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xrerror"
)

// lipCopies lists the lip slots filled directly from one expression
// channel. Mouth position and funnel feed both the upper and lower
// rows.
var lipCopies = []struct {
	slot   int
	source channel.Expression
}{
	{xr.LipExpressionJawRight, channel.JawRight},
	{xr.LipExpressionJawLeft, channel.JawLeft},
	{xr.LipExpressionJawForward, channel.JawForward},
	{xr.LipExpressionJawOpen, channel.JawOpen},
	{xr.LipExpressionMouthPout, channel.MouthPucker},
	{xr.LipExpressionMouthSmileRight, channel.MouthSmileRight},
	{xr.LipExpressionMouthSmileLeft, channel.MouthSmileLeft},
	{xr.LipExpressionMouthSadRight, channel.MouthFrownRight},
	{xr.LipExpressionMouthSadLeft, channel.MouthFrownLeft},
	{xr.LipExpressionCheekPuffRight, channel.CheekPuffRight},
	{xr.LipExpressionCheekPuffLeft, channel.CheekPuffLeft},
	{xr.LipExpressionMouthUpperUpRight, channel.MouthUpperUpRight},
	{xr.LipExpressionMouthUpperUpLeft, channel.MouthUpperUpLeft},
	{xr.LipExpressionMouthLowerDownRight, channel.MouthLowerDownRight},
	{xr.LipExpressionMouthLowerDownLeft, channel.MouthLowerDownLeft},
	{xr.LipExpressionMouthUpperInside, channel.MouthRollUpper},
	{xr.LipExpressionMouthLowerInside, channel.MouthRollLower},
	{xr.LipExpressionMouthLowerOverlay, channel.MouthShrugLower},
	{xr.LipExpressionTongueLeft, channel.TongueLeft},
	{xr.LipExpressionTongueRight, channel.TongueRight},
	{xr.LipExpressionTongueUp, channel.TongueUp},
	{xr.LipExpressionTongueDown, channel.TongueDown},
	{xr.LipExpressionTongueRoll, channel.TongueRoll},
	{xr.LipExpressionMouthApeShape, channel.MouthClose},
	{xr.LipExpressionMouthUpperRight, channel.MouthRight},
	{xr.LipExpressionMouthLowerRight, channel.MouthRight},
	{xr.LipExpressionMouthUpperLeft, channel.MouthLeft},
	{xr.LipExpressionMouthLowerLeft, channel.MouthLeft},
	{xr.LipExpressionMouthUpperOverturn, channel.MouthFunnel},
	{xr.LipExpressionMouthLowerOverturn, channel.MouthFunnel},
}

var invSqrt2 = float32(1 / math.Sqrt2)

// mapLip fills the lip weights from the expression channels.
func mapLip(in *[channel.ExpressionCount]float32, out []float32) {
	for _, c := range lipCopies {
		out[c.slot] = in[c.source]
	}

	out[xr.LipExpressionCheekSuck] = max(in[channel.CheekSuckRight], in[channel.CheekSuckLeft])

	tongueOut := in[channel.TongueOut]
	up, down := in[channel.TongueUp], in[channel.TongueDown]
	left, right := in[channel.TongueLeft], in[channel.TongueRight]

	out[xr.LipExpressionTongueLongStep1] = linearStep(tongueOut, 0, 0.5, 0, 1)
	out[xr.LipExpressionTongueLongStep2] = linearStep(tongueOut, 0.5, 1, 0, 1)

	out[xr.LipExpressionTongueUpRightMorph] = length2(up, right) * invSqrt2 * tongueOut
	out[xr.LipExpressionTongueUpLeftMorph] = length2(up, left) * invSqrt2 * tongueOut
	out[xr.LipExpressionTongueDownRightMorph] = length2(down, right) * invSqrt2 * tongueOut
	out[xr.LipExpressionTongueDownLeftMorph] = length2(down, left) * invSqrt2 * tongueOut
}

// Facial reports blend-shape weights for one facial tracking type.
type Facial struct {
	kind   xr.FacialTrackingType
	reader ChannelReader
	clock  clock.Clock
	epoch  time.Time

	mu      sync.Mutex
	weights []float32
	active  bool
	closed  bool
}

// NewFacial returns a tracker of the given type. Sample times are
// reported as the time elapsed on clk since epoch. The tracker takes
// ownership of reader and releases it on Close, including when
// NewFacial fails.
func NewFacial(kind xr.FacialTrackingType, reader ChannelReader, clk clock.Clock, epoch time.Time) (*Facial, error) {
	count := kind.ExpressionCount()
	if count == 0 {
		reader.Release()
		return nil, xrerror.Newf(xrerror.InvalidParam, xr.ErrorValidationFailure,
			"unknown facial tracking type %d", int32(kind))
	}
	return &Facial{
		kind:    kind,
		reader:  reader,
		clock:   clk,
		epoch:   epoch,
		weights: make([]float32, count),
	}, nil
}

// Type returns the tracker's facial tracking type.
func (f *Facial) Type() xr.FacialTrackingType { return f.kind }

// Expressions fills expressions with the current weights. The
// Weightings slice must have exactly the type's expression count;
// otherwise xr.ErrorValidationFailure is returned and expressions is
// left untouched.
//
// The eye type reports zero weights and is always active. The lip
// type maps the expression channels; when they cannot be read it
// reports its previous weights as inactive.
func (f *Facial) Expressions(expressions *xr.FacialExpressionsHTC) error {
	if err := xrerror.NotNil(expressions, xr.ErrorValidationFailure, "expressions"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return xrerror.New(xrerror.InvalidParam, xr.ErrorHandleInvalid, "facial tracker destroyed")
	}
	if len(expressions.Weightings) != len(f.weights) {
		return xrerror.Newf(xrerror.InvalidParam, xr.ErrorValidationFailure,
			"%s tracker has %d expressions, got buffer of %d", f.kind, len(f.weights), len(expressions.Weightings))
	}

	sampleTime := xr.Time(clock.Since(f.clock, f.epoch).Nanoseconds())

	switch f.kind {
	case xr.FacialTrackingTypeEye:
		f.active = true
	case xr.FacialTrackingTypeLip:
		values, err := f.reader.Expressions()
		if err != nil {
			f.active = false
			break
		}
		mapLip(&values, f.weights)
		f.active = true
	}

	expressions.SampleTime = sampleTime
	copy(expressions.Weightings, f.weights)
	expressions.IsActive = f.active
	return nil
}

// Close releases the channel reader. Further queries fail with
// xr.ErrorHandleInvalid.
func (f *Facial) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return xrerror.New(xrerror.InvalidParam, xr.ErrorHandleInvalid, "facial tracker already destroyed")
	}
	f.closed = true
	return f.reader.Release()
}
