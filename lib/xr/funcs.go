// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xr

// Func is a resolved entry point. It holds one of the typed function
// types below and is asserted by the caller.
type Func any

// Entry point names.
const (
	FuncGetInstanceProcAddr               = "xrGetInstanceProcAddr"
	FuncStringToPath                      = "xrStringToPath"
	FuncPathToString                      = "xrPathToString"
	FuncGetSystemProperties               = "xrGetSystemProperties"
	FuncSuggestInteractionProfileBindings = "xrSuggestInteractionProfileBindings"
	FuncDestroyInstance                   = "xrDestroyInstance"
	FuncCreateSession                     = "xrCreateSession"
	FuncDestroySession                    = "xrDestroySession"
	FuncGetActionStatePose                = "xrGetActionStatePose"
	FuncLocateSpace                       = "xrLocateSpace"
	FuncCreateActionSpace                 = "xrCreateActionSpace"
	FuncCreateReferenceSpace              = "xrCreateReferenceSpace"
	FuncDestroySpace                      = "xrDestroySpace"
	FuncCreateActionSet                   = "xrCreateActionSet"
	FuncDestroyActionSet                  = "xrDestroyActionSet"
	FuncCreateAction                      = "xrCreateAction"
	FuncDestroyAction                     = "xrDestroyAction"
	FuncCreateFacialTrackerHTC            = "xrCreateFacialTrackerHTC"
	FuncDestroyFacialTrackerHTC           = "xrDestroyFacialTrackerHTC"
	FuncGetFacialExpressionsHTC           = "xrGetFacialExpressionsHTC"
)

type (
	GetInstanceProcAddrFunc               func(instance Instance, name string) (Func, Result)
	StringToPathFunc                      func(instance Instance, path string) (Path, Result)
	PathToStringFunc                      func(instance Instance, path Path) (string, Result)
	GetSystemPropertiesFunc               func(instance Instance, system SystemID, properties *SystemProperties) Result
	SuggestInteractionProfileBindingsFunc func(instance Instance, bindings *InteractionProfileSuggestedBinding) Result
	DestroyInstanceFunc                   func(instance Instance) Result
	CreateSessionFunc                     func(instance Instance, info *SessionCreateInfo) (Session, Result)
	DestroySessionFunc                    func(session Session) Result
	GetActionStatePoseFunc                func(session Session, info *ActionStateGetInfo, state *ActionStatePose) Result
	LocateSpaceFunc                       func(space, baseSpace Space, time Time, location *SpaceLocation) Result
	CreateActionSpaceFunc                 func(session Session, info *ActionSpaceCreateInfo) (Space, Result)
	CreateReferenceSpaceFunc              func(session Session, info *ReferenceSpaceCreateInfo) (Space, Result)
	DestroySpaceFunc                      func(space Space) Result
	CreateActionSetFunc                   func(instance Instance, info *ActionSetCreateInfo) (ActionSet, Result)
	DestroyActionSetFunc                  func(actionSet ActionSet) Result
	CreateActionFunc                      func(actionSet ActionSet, info *ActionCreateInfo) (Action, Result)
	DestroyActionFunc                     func(action Action) Result
	CreateFacialTrackerHTCFunc            func(session Session, info *FacialTrackerCreateInfoHTC) (FacialTracker, Result)
	DestroyFacialTrackerHTCFunc           func(tracker FacialTracker) Result
	GetFacialExpressionsHTCFunc           func(tracker FacialTracker, expressions *FacialExpressionsHTC) Result
)

// Resolve looks up name through getProcAddr and asserts the result to
// F. A successful lookup of the wrong type reports
// ErrorFunctionUnsupported.
func Resolve[F any](getProcAddr GetInstanceProcAddrFunc, instance Instance, name string) (F, Result) {
	var zero F
	fn, result := getProcAddr(instance, name)
	if result.Failed() {
		return zero, result
	}
	typed, ok := fn.(F)
	if !ok {
		return zero, ErrorFunctionUnsupported
	}
	return typed, Success
}
