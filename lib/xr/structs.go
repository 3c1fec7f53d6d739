// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xr

// Vector3f is a point or direction in meters.
type Vector3f struct {
	X, Y, Z float32
}

// Quaternionf is a rotation.
type Quaternionf struct {
	X, Y, Z, W float32
}

// IdentityQuaternion is the rotation that leaves vectors unchanged.
var IdentityQuaternion = Quaternionf{W: 1}

// Posef combines an orientation and a position.
type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose is the pose at the origin with no rotation.
var IdentityPose = Posef{Orientation: IdentityQuaternion}

// InstanceCreateInfo describes an instance to create.
type InstanceCreateInfo struct {
	ApplicationName       string
	ApplicationVersion    uint32
	EngineName            string
	APIVersion            Version
	EnabledAPILayerNames  []string
	EnabledExtensionNames []string
	Next                  Chain
}

// SessionCreateInfo describes a session to create.
type SessionCreateInfo struct {
	SystemID SystemID
	Next     Chain
}

// SystemProperties is filled by xrGetSystemProperties. Extension
// property structures are requested through Next.
type SystemProperties struct {
	SystemID   SystemID
	VendorID   uint32
	SystemName string
	Next       Chain
}

// SystemEyeGazeInteractionProperties reports eye-gaze support.
type SystemEyeGazeInteractionProperties struct {
	SupportsEyeGazeInteraction bool
}

// SystemFacialTrackingPropertiesHTC reports facial-tracking support.
type SystemFacialTrackingPropertiesHTC struct {
	SupportEyeFacialTracking bool
	SupportLipFacialTracking bool
}

// ActionSetCreateInfo describes an action set to create.
type ActionSetCreateInfo struct {
	Name          string
	LocalizedName string
	Priority      uint32
}

// ActionType is the kind of value an action reports.
type ActionType int32

const (
	ActionTypeBooleanInput    ActionType = 1
	ActionTypeFloatInput      ActionType = 2
	ActionTypeVector2fInput   ActionType = 3
	ActionTypePoseInput       ActionType = 4
	ActionTypeVibrationOutput ActionType = 100
)

// ActionCreateInfo describes an action to create.
type ActionCreateInfo struct {
	Name           string
	LocalizedName  string
	Type           ActionType
	SubactionPaths []Path
}

// ActionSuggestedBinding binds one action to one input path.
type ActionSuggestedBinding struct {
	Action  Action
	Binding Path
}

// InteractionProfileSuggestedBinding is a batch of bindings for one
// interaction profile.
type InteractionProfileSuggestedBinding struct {
	InteractionProfile Path
	SuggestedBindings  []ActionSuggestedBinding
}

// ActionStateGetInfo selects the action whose state is queried.
type ActionStateGetInfo struct {
	Action        Action
	SubactionPath Path
}

// ActionStatePose is filled by xrGetActionStatePose.
type ActionStatePose struct {
	IsActive bool
}

// ActionSpaceCreateInfo describes a space that follows a pose action.
type ActionSpaceCreateInfo struct {
	Action            Action
	SubactionPath     Path
	PoseInActionSpace Posef
}

// ReferenceSpaceType names a well-known reference space.
type ReferenceSpaceType int32

const (
	ReferenceSpaceTypeView  ReferenceSpaceType = 1
	ReferenceSpaceTypeLocal ReferenceSpaceType = 2
	ReferenceSpaceTypeStage ReferenceSpaceType = 3
)

// ReferenceSpaceCreateInfo describes a reference space to create.
type ReferenceSpaceCreateInfo struct {
	Type                 ReferenceSpaceType
	PoseInReferenceSpace Posef
}

// SpaceLocationFlags report which parts of a located pose are usable.
type SpaceLocationFlags uint64

const (
	SpaceLocationOrientationValid   SpaceLocationFlags = 0x1
	SpaceLocationPositionValid      SpaceLocationFlags = 0x2
	SpaceLocationOrientationTracked SpaceLocationFlags = 0x4
	SpaceLocationPositionTracked    SpaceLocationFlags = 0x8
)

// SpaceLocation is filled by xrLocateSpace. A *SpaceVelocity in Next
// requests velocities as well.
type SpaceLocation struct {
	Flags SpaceLocationFlags
	Pose  Posef
	Next  Chain
}

// SpaceVelocityFlags report which velocities are usable.
type SpaceVelocityFlags uint64

const (
	SpaceVelocityLinearValid  SpaceVelocityFlags = 0x1
	SpaceVelocityAngularValid SpaceVelocityFlags = 0x2
)

// SpaceVelocity extends SpaceLocation with velocities.
type SpaceVelocity struct {
	Flags           SpaceVelocityFlags
	LinearVelocity  Vector3f
	AngularVelocity Vector3f
}
