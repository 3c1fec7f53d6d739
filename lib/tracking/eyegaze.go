// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package tracking

import (
	"slices"
	"sync"

	"github.com/ocsface/ocsface/lib/channel"
	"github.com/ocsface/ocsface/lib/rotation"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xrerror"
)

// GazeLimits are the largest gaze rotations reported, in degrees.
type GazeLimits struct {
	Horizontal float32
	Vertical   float32
}

// DefaultGazeLimits is ±45° horizontally and ±30° vertically.
var DefaultGazeLimits = GazeLimits{Horizontal: 45, Vertical: 30}

// EyeGaze reports a gaze pose for the actions bound to the eye-gaze
// pose input.
type EyeGaze struct {
	posePath xr.Path
	userPath xr.Path
	reader   ChannelReader

	maxHorizontal float32
	maxVertical   float32

	mu      sync.Mutex
	actions []xr.Action
	pose    xr.Posef
	active  bool
}

// NewEyeGaze returns a tracker bound to posePath, the gaze pose input,
// and userPath, the eyes user path accepted as a subaction path. The
// tracker takes ownership of reader and releases it on Close.
func NewEyeGaze(posePath, userPath xr.Path, reader ChannelReader, limits GazeLimits) *EyeGaze {
	return &EyeGaze{
		posePath:      posePath,
		userPath:      userPath,
		reader:        reader,
		maxHorizontal: degrees(limits.Horizontal),
		maxVertical:   degrees(limits.Vertical),
		pose:          xr.IdentityPose,
	}
}

// Matches reports whether action is bound to the gaze pose. A null
// subaction path or the eyes user path matches; any other subaction
// path does not.
func (g *EyeGaze) Matches(action xr.Action, subactionPath xr.Path) bool {
	if subactionPath != xr.NullPath && subactionPath != g.userPath {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Contains(g.actions, action)
}

// SuggestBindings replaces the bound actions with those in bindings.
// Every binding must target the gaze pose input; otherwise the batch
// is rejected with xr.ErrorValidationFailure and the bound actions are
// left unchanged.
func (g *EyeGaze) SuggestBindings(bindings *xr.InteractionProfileSuggestedBinding) error {
	if err := xrerror.NotNil(bindings, xr.ErrorValidationFailure, "bindings"); err != nil {
		return err
	}
	actions := make([]xr.Action, 0, len(bindings.SuggestedBindings))
	for i, binding := range bindings.SuggestedBindings {
		if binding.Binding != g.posePath {
			return xrerror.Newf(xrerror.InvalidParam, xr.ErrorValidationFailure,
				"suggested binding %d targets path %d, not the gaze pose", i, binding.Binding)
		}
		actions = append(actions, binding.Action)
	}

	g.mu.Lock()
	g.actions = actions
	g.mu.Unlock()
	return nil
}

// Actions returns the bound actions.
func (g *EyeGaze) Actions() []xr.Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.actions)
}

// ActionStatePose recomputes the gaze pose and reports whether the
// tracker is active.
func (g *EyeGaze) ActionStatePose(state *xr.ActionStatePose) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.update()
	state.IsActive = g.active
}

// LocateSpace recomputes the gaze pose and writes it into location.
// An active tracker reports position and orientation valid and
// tracked; an inactive one reports the identity pose with no flags. A
// *xr.SpaceVelocity in location.Next receives zero velocities, flagged
// valid only while active.
func (g *EyeGaze) LocateSpace(location *xr.SpaceLocation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.update()

	if g.active {
		location.Pose = g.pose
		location.Flags = xr.SpaceLocationPositionValid | xr.SpaceLocationPositionTracked |
			xr.SpaceLocationOrientationValid | xr.SpaceLocationOrientationTracked
	} else {
		location.Pose = xr.IdentityPose
		location.Flags = 0
	}

	if velocity, ok := xr.Find[xr.SpaceVelocity](location.Next); ok {
		velocity.Flags = 0
		if g.active {
			velocity.LinearVelocity = xr.Vector3f{}
			velocity.AngularVelocity = xr.Vector3f{}
			velocity.Flags = xr.SpaceVelocityLinearValid | xr.SpaceVelocityAngularValid
		}
	}
}

// Active reports the result of the last pose computation.
func (g *EyeGaze) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Pose returns the last computed pose.
func (g *EyeGaze) Pose() xr.Posef {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pose
}

// Close releases the channel reader.
func (g *EyeGaze) Close() error {
	return g.reader.Release()
}

// update reads the eye channels and recomputes pose and activity.
// Callers hold g.mu.
func (g *EyeGaze) update() {
	eyes, err := g.reader.EyeStates()
	if err != nil {
		g.pose = xr.IdentityPose
		g.active = false
		return
	}

	horizontal := linearStep((eyes[channel.LeftEyeX]+eyes[channel.RightEyeX])/2,
		-1, 1, g.maxHorizontal, -g.maxHorizontal)
	vertical := linearStep(eyes[channel.EyesY], -1, 1, -g.maxVertical, g.maxVertical)

	orientation := rotation.FromEuler(vertical, horizontal, 0)
	g.pose = xr.Posef{
		Orientation: xr.Quaternionf{X: orientation.X, Y: orientation.Y, Z: orientation.Z, W: orientation.W},
	}
	g.active = true
}
