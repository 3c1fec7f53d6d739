// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"
	"strings"
)

// Expression identifies one facial-expression channel.
type Expression int

const (
	CheekPuffLeft Expression = iota
	CheekPuffRight
	CheekSuckLeft
	CheekSuckRight
	JawOpen
	JawForward
	JawLeft
	JawRight
	NoseSneerLeft
	NoseSneerRight
	MouthFunnel
	MouthPucker
	MouthLeft
	MouthRight
	MouthRollUpper
	MouthRollLower
	MouthShrugUpper
	MouthShrugLower
	MouthClose
	MouthSmileLeft
	MouthSmileRight
	MouthFrownLeft
	MouthFrownRight
	MouthDimpleLeft
	MouthDimpleRight
	MouthUpperUpLeft
	MouthUpperUpRight
	MouthLowerDownLeft
	MouthLowerDownRight
	MouthPressLeft
	MouthPressRight
	MouthStretchLeft
	MouthStretchRight
	TongueOut
	TongueUp
	TongueDown
	TongueLeft
	TongueRight
	TongueRoll
	TongueBendDown
	TongueCurlUp
	TongueSquish
	TongueFlat
	TongueTwistLeft
	TongueTwistRight
	LeftEyeLidExpandedSqueeze
	RightEyeLidExpandedSqueeze

	// ExpressionCount is the number of facial-expression channels.
	ExpressionCount int = iota
)

var expressionAddresses = [ExpressionCount]string{
	"/cheekPuffLeft",
	"/cheekPuffRight",
	"/cheekSuckLeft",
	"/cheekSuckRight",
	"/jawOpen",
	"/jawForward",
	"/jawLeft",
	"/jawRight",
	"/noseSneerLeft",
	"/noseSneerRight",
	"/mouthFunnel",
	"/mouthPucker",
	"/mouthLeft",
	"/mouthRight",
	"/mouthRollUpper",
	"/mouthRollLower",
	"/mouthShrugUpper",
	"/mouthShrugLower",
	"/mouthClose",
	"/mouthSmileLeft",
	"/mouthSmileRight",
	"/mouthFrownLeft",
	"/mouthFrownRight",
	"/mouthDimpleLeft",
	"/mouthDimpleRight",
	"/mouthUpperUpLeft",
	"/mouthUpperUpRight",
	"/mouthLowerDownLeft",
	"/mouthLowerDownRight",
	"/mouthPressLeft",
	"/mouthPressRight",
	"/mouthStretchLeft",
	"/mouthStretchRight",
	"/tongueOut",
	"/tongueUp",
	"/tongueDown",
	"/tongueLeft",
	"/tongueRight",
	"/tongueRoll",
	"/tongueBendDown",
	"/tongueCurlUp",
	"/tongueSquish",
	"/tongueFlat",
	"/tongueTwistLeft",
	"/tongueTwistRight",
	"/leftEyeLidExpandedSqueeze",
	"/rightEyeLidExpandedSqueeze",
}

// Address returns the OCS address of the channel, e.g. "/jawOpen".
func (e Expression) Address() string {
	if e < 0 || int(e) >= ExpressionCount {
		return fmt.Sprintf("Expression(%d)", int(e))
	}
	return expressionAddresses[e]
}

func (e Expression) String() string { return e.Address() }

// EyeState identifies one gaze-axis channel.
type EyeState int

const (
	LeftEyeX EyeState = iota
	RightEyeX
	EyesY

	// EyeStateCount is the number of eye-state channels.
	EyeStateCount int = iota
)

var eyeStateAddresses = [EyeStateCount]string{
	"/leftEyeX",
	"/rightEyeX",
	"/eyesY",
}

// Address returns the OCS address of the channel, e.g. "/eyesY".
func (s EyeState) Address() string {
	if s < 0 || int(s) >= EyeStateCount {
		return fmt.Sprintf("EyeState(%d)", int(s))
	}
	return eyeStateAddresses[s]
}

func (s EyeState) String() string { return s.Address() }

var (
	expressionsByAddress = make(map[string]Expression, ExpressionCount)
	eyeStatesByAddress   = make(map[string]EyeState, EyeStateCount)
)

func init() {
	for i, address := range expressionAddresses {
		expressionsByAddress[strings.ToLower(address)] = Expression(i)
	}
	for i, address := range eyeStateAddresses {
		eyeStatesByAddress[strings.ToLower(address)] = EyeState(i)
	}
}

// LookupExpression finds the expression channel for an address,
// ignoring case.
func LookupExpression(address string) (Expression, bool) {
	expression, ok := expressionsByAddress[strings.ToLower(address)]
	return expression, ok
}

// LookupEyeState finds the eye-state channel for an address, ignoring
// case.
func LookupEyeState(address string) (EyeState, bool) {
	state, ok := eyeStatesByAddress[strings.ToLower(address)]
	return state, ok
}
