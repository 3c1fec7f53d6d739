// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xr

// FacialTrackingType selects which part of the face a facial tracker
// reports.
type FacialTrackingType int32

const (
	FacialTrackingTypeEye FacialTrackingType = 1
	FacialTrackingTypeLip FacialTrackingType = 2
)

func (t FacialTrackingType) String() string {
	switch t {
	case FacialTrackingTypeEye:
		return "eye"
	case FacialTrackingTypeLip:
		return "lip"
	default:
		return "unknown"
	}
}

// FacialTrackerCreateInfoHTC describes a facial tracker to create.
type FacialTrackerCreateInfoHTC struct {
	Type FacialTrackingType
}

// FacialExpressionsHTC is filled by xrGetFacialExpressionsHTC. The
// caller sizes Weightings to the tracker type's expression count.
type FacialExpressionsHTC struct {
	IsActive   bool
	SampleTime Time
	Weightings []float32
}

// Weight slots reported by an eye facial tracker.
const (
	EyeExpressionLeftBlink = iota
	EyeExpressionLeftWide
	EyeExpressionRightBlink
	EyeExpressionRightWide
	EyeExpressionLeftSqueeze
	EyeExpressionRightSqueeze
	EyeExpressionLeftDown
	EyeExpressionRightDown
	EyeExpressionLeftOut
	EyeExpressionRightIn
	EyeExpressionLeftIn
	EyeExpressionRightOut
	EyeExpressionLeftUp
	EyeExpressionRightUp

	// FacialExpressionEyeCount is the number of eye weight slots.
	FacialExpressionEyeCount = iota
)

// Weight slots reported by a lip facial tracker.
const (
	LipExpressionJawRight = iota
	LipExpressionJawLeft
	LipExpressionJawForward
	LipExpressionJawOpen
	LipExpressionMouthApeShape
	LipExpressionMouthUpperRight
	LipExpressionMouthUpperLeft
	LipExpressionMouthLowerRight
	LipExpressionMouthLowerLeft
	LipExpressionMouthUpperOverturn
	LipExpressionMouthLowerOverturn
	LipExpressionMouthPout
	LipExpressionMouthSmileRight
	LipExpressionMouthSmileLeft
	LipExpressionMouthSadRight
	LipExpressionMouthSadLeft
	LipExpressionCheekPuffRight
	LipExpressionCheekPuffLeft
	LipExpressionCheekSuck
	LipExpressionMouthUpperUpRight
	LipExpressionMouthUpperUpLeft
	LipExpressionMouthLowerDownRight
	LipExpressionMouthLowerDownLeft
	LipExpressionMouthUpperInside
	LipExpressionMouthLowerInside
	LipExpressionMouthLowerOverlay
	LipExpressionTongueLongStep1
	LipExpressionTongueLeft
	LipExpressionTongueRight
	LipExpressionTongueUp
	LipExpressionTongueDown
	LipExpressionTongueRoll
	LipExpressionTongueLongStep2
	LipExpressionTongueUpRightMorph
	LipExpressionTongueUpLeftMorph
	LipExpressionTongueDownRightMorph
	LipExpressionTongueDownLeftMorph

	// FacialExpressionLipCount is the number of lip weight slots.
	FacialExpressionLipCount = iota
)

// ExpressionCount returns the weight count for a tracking type, or 0
// for an unknown type.
func (t FacialTrackingType) ExpressionCount() int {
	switch t {
	case FacialTrackingTypeEye:
		return FacialExpressionEyeCount
	case FacialTrackingTypeLip:
		return FacialExpressionLipCount
	default:
		return 0
	}
}
