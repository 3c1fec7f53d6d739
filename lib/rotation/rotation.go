// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

// Package rotation converts Euler angles to quaternions.
//
// Angles are in radians. Positive angles rotate clockwise when looking
// along the positive axis, so a rotation by a about X alone yields
// (-sin(a/2), 0, 0, cos(a/2)).
package rotation

import "math"

// Quaternion is a rotation with scalar part W.
type Quaternion struct {
	X, Y, Z, W float32
}

// Identity returns the rotation that changes nothing.
func Identity() Quaternion { return Quaternion{W: 1} }

// FromEuler builds the rotation for angles rx, ry and rz about the X, Y
// and Z axes. The rotation matrix is assembled directly from the
// angles and converted to a quaternion using the largest diagonal
// element for numeric stability.
func FromEuler(rx, ry, rz float32) Quaternion {
	sinX, cosX := sincos(rx)
	sinY, cosY := sincos(ry)
	sinZ, cosZ := sincos(rz)

	g := cosY * cosZ
	h := sinY * cosZ
	i := sinY * sinZ
	j := cosY * sinZ

	a11 := g - sinX*i
	a12 := sinX*h + j
	a13 := -sinY * cosX
	a21 := -cosX * sinZ
	a22 := cosX * cosZ
	a23 := sinX
	a31 := h + sinX*j
	a32 := -sinX*g + i
	a33 := cosX * cosY

	trace := a11 + a22 + a33 + 1
	if trace > 0.0001 {
		s := 0.5 / sqrt(trace)
		return Quaternion{
			X: (a32 - a23) * s,
			Y: (a13 - a31) * s,
			Z: (a21 - a12) * s,
			W: 0.25 / s,
		}
	}

	switch {
	case a11 > a22 && a11 > a33:
		s := 0.5 / sqrt(1+a11-a22-a33)
		return Quaternion{
			X: 0.25 / s,
			Y: (a12 + a21) * s,
			Z: (a13 + a31) * s,
			W: (a23 - a32) * s,
		}
	case a22 > a33:
		s := 0.5 / sqrt(1+a22-a11-a33)
		return Quaternion{
			X: (a12 + a21) * s,
			Y: 0.25 / s,
			Z: (a23 + a32) * s,
			W: (a13 - a31) * s,
		}
	default:
		s := 0.5 / sqrt(1+a33-a11-a22)
		return Quaternion{
			X: (a13 + a31) * s,
			Y: (a23 + a32) * s,
			Z: 0.25 / s,
			W: (a12 - a21) * s,
		}
	}
}

// Length returns the quaternion's norm. Rotations have length 1.
func (q Quaternion) Length() float32 {
	return sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Dot returns the four-component dot product of q and other.
func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

func sincos(angle float32) (float32, float32) {
	sin, cos := math.Sincos(float64(angle))
	return float32(sin), float32(cos)
}

func sqrt(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
