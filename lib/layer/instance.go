// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"log/slog"
	"slices"

	"github.com/ocsface/ocsface/lib/tracking"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xrerror"
)

// nextTable holds the next layer's entry points for one instance. It
// is filled once when the instance is created and never changes.
type nextTable struct {
	getInstanceProcAddr               xr.GetInstanceProcAddrFunc
	stringToPath                      xr.StringToPathFunc
	getSystemProperties               xr.GetSystemPropertiesFunc
	suggestInteractionProfileBindings xr.SuggestInteractionProfileBindingsFunc
	destroyInstance                   xr.DestroyInstanceFunc
	createSession                     xr.CreateSessionFunc
	destroySession                    xr.DestroySessionFunc
	getActionStatePose                xr.GetActionStatePoseFunc
	locateSpace                       xr.LocateSpaceFunc
	createActionSpace                 xr.CreateActionSpaceFunc
	createReferenceSpace              xr.CreateReferenceSpaceFunc
	destroySpace                      xr.DestroySpaceFunc
	createActionSet                   xr.CreateActionSetFunc
	destroyActionSet                  xr.DestroyActionSetFunc
	createAction                      xr.CreateActionFunc
	destroyAction                     xr.DestroyActionFunc
}

// resolver accumulates the first failure of a series of lookups so
// that the table can be filled without checking each one.
type resolver struct {
	getProcAddr xr.GetInstanceProcAddrFunc
	instance    xr.Instance
	err         error
}

func bind[F any](r *resolver, name string, target *F) {
	if r.err != nil {
		return
	}
	fn, result := xr.Resolve[F](r.getProcAddr, r.instance, name)
	if err := xrerror.Check(result, "GetInstanceProcAddr "+name); err != nil {
		r.err = err
		return
	}
	*target = fn
}

func resolveNext(getProcAddr xr.GetInstanceProcAddrFunc, instance xr.Instance) (nextTable, error) {
	next := nextTable{getInstanceProcAddr: getProcAddr}
	r := &resolver{getProcAddr: getProcAddr, instance: instance}
	bind(r, xr.FuncStringToPath, &next.stringToPath)
	bind(r, xr.FuncGetSystemProperties, &next.getSystemProperties)
	bind(r, xr.FuncSuggestInteractionProfileBindings, &next.suggestInteractionProfileBindings)
	bind(r, xr.FuncDestroyInstance, &next.destroyInstance)
	bind(r, xr.FuncCreateSession, &next.createSession)
	bind(r, xr.FuncDestroySession, &next.destroySession)
	bind(r, xr.FuncGetActionStatePose, &next.getActionStatePose)
	bind(r, xr.FuncLocateSpace, &next.locateSpace)
	bind(r, xr.FuncCreateActionSpace, &next.createActionSpace)
	bind(r, xr.FuncCreateReferenceSpace, &next.createReferenceSpace)
	bind(r, xr.FuncDestroySpace, &next.destroySpace)
	bind(r, xr.FuncCreateActionSet, &next.createActionSet)
	bind(r, xr.FuncDestroyActionSet, &next.destroyActionSet)
	bind(r, xr.FuncCreateAction, &next.createAction)
	bind(r, xr.FuncDestroyAction, &next.destroyAction)
	return next, r.err
}

// Instance is the layer's state for one instance created through it.
type Instance struct {
	handle xr.Instance
	id     int64
	logger *slog.Logger
	next   nextTable

	eyeGazeEnabled bool
	facialEnabled  bool

	// eyeGazeProfile is the interned eye-gaze interaction profile
	// path, compared against binding suggestions.
	eyeGazeProfile xr.Path

	// eyeGaze is nil unless the application enabled eye gaze.
	eyeGaze *tracking.EyeGaze
}

// extensionRequest records which layer extensions an application
// asked for.
type extensionRequest struct {
	eyeGaze bool
	facial  bool
}

// parseExtensions reads the layer's extensions from names. Asking for
// one the layer is configured not to offer fails with
// xr.ErrorExtensionNotPresent.
func (l *Layer) parseExtensions(names []string) (extensionRequest, error) {
	var request extensionRequest
	if slices.Contains(names, xr.ExtensionEyeGazeInteraction) {
		if !l.config.Layer.EyeGaze {
			l.logger.Info("Enable eye gaze interaction requested but not supported")
			return request, xrerror.Check(xr.ErrorExtensionNotPresent, xr.ExtensionEyeGazeInteraction)
		}
		request.eyeGaze = true
	}
	if slices.Contains(names, xr.ExtensionFacialTrackingHTC) {
		if !l.config.Layer.Facial {
			l.logger.Info("Enable facial tracking requested but not supported")
			return request, xrerror.Check(xr.ErrorExtensionNotPresent, xr.ExtensionFacialTrackingHTC)
		}
		request.facial = true
	}
	return request, nil
}

// filterExtensions returns names without the extensions the layer
// implements, which the next layer may not know.
func filterExtensions(names []string) []string {
	return slices.DeleteFunc(slices.Clone(names), func(name string) bool {
		return name == xr.ExtensionEyeGazeInteraction || name == xr.ExtensionFacialTrackingHTC
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// newInstance builds the layer state for an instance the next layer
// has created.
func (l *Layer) newInstance(handle xr.Instance, request extensionRequest, getProcAddr xr.GetInstanceProcAddrFunc) (*Instance, error) {
	next, err := resolveNext(getProcAddr, handle)
	if err != nil {
		return nil, err
	}

	id := l.lastInstanceID.Add(1)
	instance := &Instance{
		handle:         handle,
		id:             id,
		logger:         l.logger.With("instance", id),
		next:           next,
		eyeGazeEnabled: request.eyeGaze,
		facialEnabled:  request.facial,
	}

	instance.eyeGazeProfile, err = instance.path(xr.PathEyeGazeInteractionProfile)
	if err != nil {
		return nil, err
	}

	instance.logger.Info("Enable eye gaze interaction: " + yesNo(instance.eyeGazeEnabled))
	instance.logger.Info("Enable facial tracking: " + yesNo(instance.facialEnabled))

	if instance.eyeGazeEnabled {
		posePath, err := instance.path(xr.PathEyeGazePose)
		if err != nil {
			return nil, err
		}
		userPath, err := instance.path(xr.PathEyesUser)
		if err != nil {
			return nil, err
		}
		instance.logger.Info("Create eye gaze tracker")
		instance.eyeGaze = tracking.NewEyeGaze(posePath, userPath, l.source.Acquire(), tracking.GazeLimits{
			Horizontal: l.config.EyeGaze.HorizontalDegrees,
			Vertical:   l.config.EyeGaze.VerticalDegrees,
		})
	}
	return instance, nil
}

// path interns s through the next layer.
func (i *Instance) path(s string) (xr.Path, error) {
	path, result := i.next.stringToPath(i.handle, s)
	if err := xrerror.Check(result, "StringToPath "+s); err != nil {
		return xr.NullPath, err
	}
	return path, nil
}

// Handle returns the instance handle.
func (i *Instance) Handle() xr.Instance { return i.handle }

// ID returns the process-unique sequence number of the instance.
func (i *Instance) ID() int64 { return i.id }

// EyeGazeEnabled reports whether the application enabled eye gaze.
func (i *Instance) EyeGazeEnabled() bool { return i.eyeGazeEnabled }

// FacialEnabled reports whether the application enabled facial
// tracking.
func (i *Instance) FacialEnabled() bool { return i.facialEnabled }

// EyeGaze returns the eye-gaze tracker, or nil.
func (i *Instance) EyeGaze() *tracking.EyeGaze { return i.eyeGaze }

// gazeMatches reports whether queries for action belong to the
// eye-gaze tracker.
func (i *Instance) gazeMatches(action xr.Action, subactionPath xr.Path) bool {
	return i.eyeGaze != nil && i.eyeGaze.Matches(action, subactionPath)
}

// close releases the instance's tracker.
func (i *Instance) close() {
	if i.eyeGaze == nil {
		return
	}
	if err := i.eyeGaze.Close(); err != nil {
		i.logger.Warn("releasing eye gaze channel source", "error", err)
	}
}
