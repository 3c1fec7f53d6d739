// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"github.com/ocsface/ocsface/lib/tracking"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xrerror"
)

func (l *Layer) buildHooks() map[string]xr.Func {
	return map[string]xr.Func{
		xr.FuncGetSystemProperties:               xr.GetSystemPropertiesFunc(l.getSystemProperties),
		xr.FuncSuggestInteractionProfileBindings: xr.SuggestInteractionProfileBindingsFunc(l.suggestInteractionProfileBindings),
		xr.FuncDestroyInstance:                   xr.DestroyInstanceFunc(l.destroyInstance),
		xr.FuncCreateSession:                     xr.CreateSessionFunc(l.createSession),
		xr.FuncDestroySession:                    xr.DestroySessionFunc(l.destroySession),
		xr.FuncGetActionStatePose:                xr.GetActionStatePoseFunc(l.getActionStatePose),
		xr.FuncLocateSpace:                       xr.LocateSpaceFunc(l.locateSpace),
		xr.FuncCreateActionSpace:                 xr.CreateActionSpaceFunc(l.createActionSpace),
		xr.FuncCreateReferenceSpace:              xr.CreateReferenceSpaceFunc(l.createReferenceSpace),
		xr.FuncDestroySpace:                      xr.DestroySpaceFunc(l.destroySpace),
		xr.FuncCreateActionSet:                   xr.CreateActionSetFunc(l.createActionSet),
		xr.FuncDestroyActionSet:                  xr.DestroyActionSetFunc(l.destroyActionSet),
		xr.FuncCreateAction:                      xr.CreateActionFunc(l.createAction),
		xr.FuncDestroyAction:                     xr.DestroyActionFunc(l.destroyAction),
		xr.FuncCreateFacialTrackerHTC:            xr.CreateFacialTrackerHTCFunc(l.createFacialTracker),
		xr.FuncDestroyFacialTrackerHTC:           xr.DestroyFacialTrackerHTCFunc(l.destroyFacialTracker),
		xr.FuncGetFacialExpressionsHTC:           xr.GetFacialExpressionsHTCFunc(l.getFacialExpressions),
	}
}

// HookNames returns the names of the entry points the layer
// intercepts.
func (l *Layer) HookNames() []string {
	names := make([]string, 0, len(l.hooks))
	for name := range l.hooks {
		names = append(names, name)
	}
	return names
}

// closeTrackers releases facial trackers removed from the registry.
func (l *Layer) closeTrackers(trackers []*tracking.Facial) {
	for _, tracker := range trackers {
		if err := tracker.Close(); err != nil {
			l.logger.Warn("closing facial tracker", "type", tracker.Type(), "error", err)
		}
	}
}

func (l *Layer) getSystemProperties(instance xr.Instance, system xr.SystemID, properties *xr.SystemProperties) xr.Result {
	return l.call(xr.FuncGetSystemProperties, func() (xr.Result, error) {
		owner, err := l.Instance(instance)
		if err != nil {
			return 0, err
		}
		if err := xrerror.NotNil(properties, xr.ErrorValidationFailure, "properties"); err != nil {
			return 0, err
		}
		for _, element := range properties.Next {
			switch p := element.(type) {
			case *xr.SystemEyeGazeInteractionProperties:
				p.SupportsEyeGazeInteraction = l.config.Layer.EyeGaze
			case *xr.SystemFacialTrackingPropertiesHTC:
				p.SupportEyeFacialTracking = l.config.Layer.Facial
				p.SupportLipFacialTracking = l.config.Layer.Facial
			}
		}
		return owner.next.getSystemProperties(instance, system, properties), nil
	})
}

func (l *Layer) suggestInteractionProfileBindings(instance xr.Instance, bindings *xr.InteractionProfileSuggestedBinding) xr.Result {
	return l.call(xr.FuncSuggestInteractionProfileBindings, func() (xr.Result, error) {
		owner, err := l.Instance(instance)
		if err != nil {
			return 0, err
		}
		if err := xrerror.NotNil(bindings, xr.ErrorValidationFailure, "suggestedBindings"); err != nil {
			return 0, err
		}
		if bindings.InteractionProfile != owner.eyeGazeProfile {
			return owner.next.suggestInteractionProfileBindings(instance, bindings), nil
		}
		if owner.eyeGaze == nil {
			return 0, xrerror.New(xrerror.InvalidAction, xr.ErrorFeatureUnsupported, "eye gaze interaction not enabled")
		}
		if err := owner.eyeGaze.SuggestBindings(bindings); err != nil {
			return 0, err
		}
		return xr.Success, nil
	})
}

// destroyInstance removes the instance and everything registered
// under it, releases its trackers and destroys it downstream.
func (l *Layer) destroyInstance(instance xr.Instance) xr.Result {
	return l.call(xr.FuncDestroyInstance, func() (xr.Result, error) {
		owner, err := l.removeInstance(instance)
		if err != nil {
			return 0, err
		}
		l.closeTrackers(l.registry.Purge(owner))
		owner.close()
		return owner.next.destroyInstance(instance), nil
	})
}

func (l *Layer) createSession(instance xr.Instance, info *xr.SessionCreateInfo) (xr.Session, xr.Result) {
	var session xr.Session
	result := l.call(xr.FuncCreateSession, func() (xr.Result, error) {
		owner, err := l.Instance(instance)
		if err != nil {
			return 0, err
		}
		created, result := owner.next.createSession(instance, info)
		if result.Failed() {
			return result, nil
		}
		if err := l.registry.AddSession(created, owner); err != nil {
			return 0, err
		}
		session = created
		return result, nil
	})
	return session, result
}

func (l *Layer) destroySession(session xr.Session) xr.Result {
	return l.call(xr.FuncDestroySession, func() (xr.Result, error) {
		owner, trackers, err := l.registry.RemoveSession(session)
		if err != nil {
			return 0, err
		}
		l.closeTrackers(trackers)
		return owner.next.destroySession(session), nil
	})
}

func (l *Layer) getActionStatePose(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStatePose) xr.Result {
	return l.call(xr.FuncGetActionStatePose, func() (xr.Result, error) {
		owner, err := l.registry.SessionOwner(session)
		if err != nil {
			return 0, err
		}
		if info != nil && state != nil && owner.gazeMatches(info.Action, info.SubactionPath) {
			owner.eyeGaze.ActionStatePose(state)
			return xr.Success, nil
		}
		return owner.next.getActionStatePose(session, info, state), nil
	})
}

func (l *Layer) locateSpace(space, baseSpace xr.Space, time xr.Time, location *xr.SpaceLocation) xr.Result {
	return l.call(xr.FuncLocateSpace, func() (xr.Result, error) {
		record, err := l.registry.Space(space)
		if err != nil {
			return 0, err
		}
		if location != nil && record.Action != 0 && record.Owner.gazeMatches(record.Action, record.SubactionPath) {
			record.Owner.eyeGaze.LocateSpace(location)
			return xr.Success, nil
		}
		return record.Owner.next.locateSpace(space, baseSpace, time, location), nil
	})
}

func (l *Layer) createActionSpace(session xr.Session, info *xr.ActionSpaceCreateInfo) (xr.Space, xr.Result) {
	var space xr.Space
	result := l.call(xr.FuncCreateActionSpace, func() (xr.Result, error) {
		owner, err := l.registry.SessionOwner(session)
		if err != nil {
			return 0, err
		}
		if err := xrerror.NotNil(info, xr.ErrorValidationFailure, "createInfo"); err != nil {
			return 0, err
		}
		created, result := owner.next.createActionSpace(session, info)
		if result.Failed() {
			return result, nil
		}
		err = l.registry.AddSpace(SpaceRecord{
			Space:         created,
			Session:       session,
			Owner:         owner,
			Action:        info.Action,
			SubactionPath: info.SubactionPath,
		})
		if err != nil {
			return 0, err
		}
		space = created
		return result, nil
	})
	return space, result
}

func (l *Layer) createReferenceSpace(session xr.Session, info *xr.ReferenceSpaceCreateInfo) (xr.Space, xr.Result) {
	var space xr.Space
	result := l.call(xr.FuncCreateReferenceSpace, func() (xr.Result, error) {
		owner, err := l.registry.SessionOwner(session)
		if err != nil {
			return 0, err
		}
		created, result := owner.next.createReferenceSpace(session, info)
		if result.Failed() {
			return result, nil
		}
		err = l.registry.AddSpace(SpaceRecord{
			Space:         created,
			Session:       session,
			Owner:         owner,
			SubactionPath: xr.NullPath,
		})
		if err != nil {
			return 0, err
		}
		space = created
		return result, nil
	})
	return space, result
}

func (l *Layer) destroySpace(space xr.Space) xr.Result {
	return l.call(xr.FuncDestroySpace, func() (xr.Result, error) {
		record, err := l.registry.RemoveSpace(space)
		if err != nil {
			return 0, err
		}
		return record.Owner.next.destroySpace(space), nil
	})
}

func (l *Layer) createActionSet(instance xr.Instance, info *xr.ActionSetCreateInfo) (xr.ActionSet, xr.Result) {
	var actionSet xr.ActionSet
	result := l.call(xr.FuncCreateActionSet, func() (xr.Result, error) {
		owner, err := l.Instance(instance)
		if err != nil {
			return 0, err
		}
		created, result := owner.next.createActionSet(instance, info)
		if result.Failed() {
			return result, nil
		}
		if err := l.registry.AddActionSet(created, owner); err != nil {
			return 0, err
		}
		actionSet = created
		return result, nil
	})
	return actionSet, result
}

func (l *Layer) destroyActionSet(actionSet xr.ActionSet) xr.Result {
	return l.call(xr.FuncDestroyActionSet, func() (xr.Result, error) {
		owner, err := l.registry.RemoveActionSet(actionSet)
		if err != nil {
			return 0, err
		}
		return owner.next.destroyActionSet(actionSet), nil
	})
}

func (l *Layer) createAction(actionSet xr.ActionSet, info *xr.ActionCreateInfo) (xr.Action, xr.Result) {
	var action xr.Action
	result := l.call(xr.FuncCreateAction, func() (xr.Result, error) {
		owner, err := l.registry.ActionSetOwner(actionSet)
		if err != nil {
			return 0, err
		}
		created, result := owner.next.createAction(actionSet, info)
		if result.Failed() {
			return result, nil
		}
		if err := l.registry.AddAction(created, actionSet, owner); err != nil {
			return 0, err
		}
		action = created
		return result, nil
	})
	return action, result
}

func (l *Layer) destroyAction(action xr.Action) xr.Result {
	return l.call(xr.FuncDestroyAction, func() (xr.Result, error) {
		owner, err := l.registry.RemoveAction(action)
		if err != nil {
			return 0, err
		}
		return owner.next.destroyAction(action), nil
	})
}

// createFacialTracker creates a tracker served entirely by the layer.
// The next layer is not involved.
func (l *Layer) createFacialTracker(session xr.Session, info *xr.FacialTrackerCreateInfoHTC) (xr.FacialTracker, xr.Result) {
	var handle xr.FacialTracker
	result := l.call(xr.FuncCreateFacialTrackerHTC, func() (xr.Result, error) {
		owner, err := l.registry.SessionOwner(session)
		if err != nil {
			return 0, err
		}
		if !owner.facialEnabled {
			return 0, xrerror.New(xrerror.InvalidAction, xr.ErrorFeatureUnsupported, "facial tracking not enabled")
		}
		if err := xrerror.NotNil(info, xr.ErrorValidationFailure, "createInfo"); err != nil {
			return 0, err
		}

		tracker, err := tracking.NewFacial(info.Type, l.source.Acquire(), l.clock, l.epoch)
		if err != nil {
			return 0, err
		}
		created := xr.FacialTracker(l.lastFacial.Add(1))
		if err := l.registry.addFacial(created, facialRecord{owner: owner, session: session, tracker: tracker}); err != nil {
			tracker.Close()
			return 0, err
		}
		owner.logger.Info("Create facial tracker", "type", info.Type, "tracker", uint64(created))
		handle = created
		return xr.Success, nil
	})
	return handle, result
}

func (l *Layer) destroyFacialTracker(handle xr.FacialTracker) xr.Result {
	return l.call(xr.FuncDestroyFacialTrackerHTC, func() (xr.Result, error) {
		record, err := l.registry.removeFacial(handle)
		if err != nil {
			return 0, err
		}
		if err := record.tracker.Close(); err != nil {
			return 0, err
		}
		return xr.Success, nil
	})
}

func (l *Layer) getFacialExpressions(handle xr.FacialTracker, expressions *xr.FacialExpressionsHTC) xr.Result {
	return l.call(xr.FuncGetFacialExpressionsHTC, func() (xr.Result, error) {
		record, err := l.registry.facialTracker(handle)
		if err != nil {
			return 0, err
		}
		if err := record.tracker.Expressions(expressions); err != nil {
			return 0, err
		}
		return xr.Success, nil
	})
}
