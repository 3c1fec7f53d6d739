// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xr

import "fmt"

// Opaque handles. The zero value of each is the null handle.
type (
	Instance      uint64
	Session       uint64
	Space         uint64
	ActionSet     uint64
	Action        uint64
	FacialTracker uint64
	SystemID      uint64
	Path          uint64
)

// NullPath is the path handle that names no path.
const NullPath Path = 0

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Version packs a major.minor.patch API version as 16.16.32 bits.
type Version uint64

// MakeVersion packs a version number.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(uint64(major&0xffff)<<48 | uint64(minor&0xffff)<<32 | uint64(patch))
}

func (v Version) Major() uint32 { return uint32(v >> 48) }
func (v Version) Minor() uint32 { return uint32(v>>32) & 0xffff }
func (v Version) Patch() uint32 { return uint32(v) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// CurrentAPIVersion is the API version the layer is written against.
var CurrentAPIVersion = MakeVersion(1, 0, 34)

// Result is a status code returned by every entry point. Negative
// values are failures.
type Result int32

const (
	Success                   Result = 0
	ErrorValidationFailure    Result = -1
	ErrorRuntimeFailure       Result = -2
	ErrorOutOfMemory          Result = -3
	ErrorInitializationFailed Result = -6
	ErrorFunctionUnsupported  Result = -7
	ErrorFeatureUnsupported   Result = -8
	ErrorExtensionNotPresent  Result = -9
	ErrorHandleInvalid        Result = -12
	ErrorPathInvalid          Result = -19
	ErrorFileAccessError      Result = -32
	ErrorFileContentsInvalid  Result = -33
	ErrorActionTypeMismatch   Result = -27
)

var resultNames = map[Result]string{
	Success:                   "XR_SUCCESS",
	ErrorValidationFailure:    "XR_ERROR_VALIDATION_FAILURE",
	ErrorRuntimeFailure:       "XR_ERROR_RUNTIME_FAILURE",
	ErrorOutOfMemory:          "XR_ERROR_OUT_OF_MEMORY",
	ErrorInitializationFailed: "XR_ERROR_INITIALIZATION_FAILED",
	ErrorFunctionUnsupported:  "XR_ERROR_FUNCTION_UNSUPPORTED",
	ErrorFeatureUnsupported:   "XR_ERROR_FEATURE_UNSUPPORTED",
	ErrorExtensionNotPresent:  "XR_ERROR_EXTENSION_NOT_PRESENT",
	ErrorHandleInvalid:        "XR_ERROR_HANDLE_INVALID",
	ErrorPathInvalid:          "XR_ERROR_PATH_INVALID",
	ErrorFileAccessError:      "XR_ERROR_FILE_ACCESS_ERROR",
	ErrorFileContentsInvalid:  "XR_ERROR_FILE_CONTENTS_INVALID",
	ErrorActionTypeMismatch:   "XR_ERROR_ACTION_TYPE_MISMATCH",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("XrResult(%d)", int32(r))
}

// Succeeded reports whether r is a success code.
func (r Result) Succeeded() bool { return r >= 0 }

// Failed reports whether r is an error code.
func (r Result) Failed() bool { return r < 0 }

// Extension names filtered from instance creation and implemented by
// the layer.
const (
	ExtensionEyeGazeInteraction = "XR_EXT_eye_gaze_interaction"
	ExtensionFacialTrackingHTC  = "XR_HTC_facial_tracking"
)

// Paths the eye-gaze extension defines.
const (
	PathEyeGazeInteractionProfile = "/interaction_profiles/ext/eye_gaze_interaction"
	PathEyeGazePose               = "/user/eyes_ext/input/gaze_ext/pose"
	PathEyesUser                  = "/user/eyes_ext"
)
