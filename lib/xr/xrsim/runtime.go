// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xrsim

import (
	"slices"
	"strings"
	"sync"

	"github.com/ocsface/ocsface/lib/xr"
)

// SystemName is reported by GetSystemProperties.
const SystemName = "xrsim"

// VendorID is reported by GetSystemProperties.
const VendorID = 0x0c5f

type instanceState struct {
	info     xr.InstanceCreateInfo
	bindings map[xr.Path][]xr.ActionSuggestedBinding
}

// Runtime is an in-memory runtime. It is safe for concurrent use.
type Runtime struct {
	mu sync.Mutex

	extensions map[string]bool
	hidden     map[string]bool

	lastHandle uint64
	instances  map[xr.Instance]*instanceState
	sessions   map[xr.Session]xr.Instance
	actionSets map[xr.ActionSet]xr.Instance
	actions    map[xr.Action]xr.ActionSet
	spaces     map[xr.Space]xr.Session

	// paths[i] is the string for path handle i+1.
	paths   []string
	pathIDs map[string]xr.Path

	failures map[string]xr.Result
	calls    map[string]int
}

// New returns an empty runtime supporting the given extensions.
func New(extensions ...string) *Runtime {
	r := &Runtime{
		extensions: make(map[string]bool),
		hidden:     make(map[string]bool),
		instances:  make(map[xr.Instance]*instanceState),
		sessions:   make(map[xr.Session]xr.Instance),
		actionSets: make(map[xr.ActionSet]xr.Instance),
		actions:    make(map[xr.Action]xr.ActionSet),
		spaces:     make(map[xr.Space]xr.Session),
		pathIDs:    make(map[string]xr.Path),
		failures:   make(map[string]xr.Result),
		calls:      make(map[string]int),
	}
	for _, extension := range extensions {
		r.extensions[extension] = true
	}
	return r
}

// NextInfo returns the chain element that leads to this runtime.
func (r *Runtime) NextInfo() *xr.APILayerNextInfo {
	return &xr.APILayerNextInfo{
		LayerName:                  SystemName,
		NextGetInstanceProcAddr:    r.GetInstanceProcAddr,
		NextCreateAPILayerInstance: r.CreateAPILayerInstance,
	}
}

// LayerCreateInfo returns the create info a loader passes to the layer
// directly above this runtime.
func (r *Runtime) LayerCreateInfo() *xr.APILayerCreateInfo {
	return &xr.APILayerCreateInfo{NextInfo: r.NextInfo()}
}

// FailNext makes the next call of the named entry point return result
// without any effect.
func (r *Runtime) FailNext(name string, result xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = result
}

// Hide makes GetInstanceProcAddr report name as unsupported.
func (r *Runtime) Hide(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hidden[name] = true
}

// Calls returns how many times the named entry point was called.
func (r *Runtime) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

// enter records a call of name and returns a failure injected with
// FailNext, if any. Callers hold r.mu.
func (r *Runtime) enter(name string) xr.Result {
	r.calls[name]++
	if result, ok := r.failures[name]; ok {
		delete(r.failures, name)
		return result
	}
	return xr.Success
}

func (r *Runtime) newHandle() uint64 {
	r.lastHandle++
	return r.lastHandle
}

// GetInstanceProcAddr resolves an entry point. Facial tracking and
// other extension entry points are not provided.
func (r *Runtime) GetInstanceProcAddr(instance xr.Instance, name string) (xr.Func, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncGetInstanceProcAddr); result.Failed() {
		return nil, result
	}
	if instance != 0 {
		if _, ok := r.instances[instance]; !ok {
			return nil, xr.ErrorHandleInvalid
		}
	}
	if r.hidden[name] {
		return nil, xr.ErrorFunctionUnsupported
	}

	var fn xr.Func
	switch name {
	case xr.FuncGetInstanceProcAddr:
		fn = xr.GetInstanceProcAddrFunc(r.GetInstanceProcAddr)
	case xr.FuncStringToPath:
		fn = xr.StringToPathFunc(r.StringToPath)
	case xr.FuncPathToString:
		fn = xr.PathToStringFunc(r.PathToString)
	case xr.FuncGetSystemProperties:
		fn = xr.GetSystemPropertiesFunc(r.GetSystemProperties)
	case xr.FuncSuggestInteractionProfileBindings:
		fn = xr.SuggestInteractionProfileBindingsFunc(r.SuggestInteractionProfileBindings)
	case xr.FuncDestroyInstance:
		fn = xr.DestroyInstanceFunc(r.DestroyInstance)
	case xr.FuncCreateSession:
		fn = xr.CreateSessionFunc(r.CreateSession)
	case xr.FuncDestroySession:
		fn = xr.DestroySessionFunc(r.DestroySession)
	case xr.FuncGetActionStatePose:
		fn = xr.GetActionStatePoseFunc(r.GetActionStatePose)
	case xr.FuncLocateSpace:
		fn = xr.LocateSpaceFunc(r.LocateSpace)
	case xr.FuncCreateActionSpace:
		fn = xr.CreateActionSpaceFunc(r.CreateActionSpace)
	case xr.FuncCreateReferenceSpace:
		fn = xr.CreateReferenceSpaceFunc(r.CreateReferenceSpace)
	case xr.FuncDestroySpace:
		fn = xr.DestroySpaceFunc(r.DestroySpace)
	case xr.FuncCreateActionSet:
		fn = xr.CreateActionSetFunc(r.CreateActionSet)
	case xr.FuncDestroyActionSet:
		fn = xr.DestroyActionSetFunc(r.DestroyActionSet)
	case xr.FuncCreateAction:
		fn = xr.CreateActionFunc(r.CreateAction)
	case xr.FuncDestroyAction:
		fn = xr.DestroyActionFunc(r.DestroyAction)
	default:
		return nil, xr.ErrorFunctionUnsupported
	}
	return fn, xr.Success
}

// CreateAPILayerInstance creates an instance. Every requested
// extension must be one the runtime was created with.
func (r *Runtime) CreateAPILayerInstance(info *xr.InstanceCreateInfo, _ *xr.APILayerCreateInfo) (xr.Instance, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter("xrCreateApiLayerInstance"); result.Failed() {
		return 0, result
	}
	if info == nil {
		return 0, xr.ErrorValidationFailure
	}
	for _, extension := range info.EnabledExtensionNames {
		if !r.extensions[extension] {
			return 0, xr.ErrorExtensionNotPresent
		}
	}

	stored := *info
	stored.EnabledExtensionNames = slices.Clone(info.EnabledExtensionNames)
	stored.EnabledAPILayerNames = slices.Clone(info.EnabledAPILayerNames)

	instance := xr.Instance(r.newHandle())
	r.instances[instance] = &instanceState{
		info:     stored,
		bindings: make(map[xr.Path][]xr.ActionSuggestedBinding),
	}
	return instance, xr.Success
}

// CreateInfo returns the create info instance was created with.
func (r *Runtime) CreateInfo(instance xr.Instance) (xr.InstanceCreateInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.instances[instance]
	if !ok {
		return xr.InstanceCreateInfo{}, false
	}
	return state.info, true
}

// StringToPath interns path. Paths must be absolute.
func (r *Runtime) StringToPath(instance xr.Instance, path string) (xr.Path, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncStringToPath); result.Failed() {
		return xr.NullPath, result
	}
	if _, ok := r.instances[instance]; !ok {
		return xr.NullPath, xr.ErrorHandleInvalid
	}
	if !strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return xr.NullPath, xr.ErrorPathInvalid
	}
	if id, ok := r.pathIDs[path]; ok {
		return id, xr.Success
	}
	r.paths = append(r.paths, path)
	id := xr.Path(len(r.paths))
	r.pathIDs[path] = id
	return id, xr.Success
}

// PathToString returns the string an interned path stands for.
func (r *Runtime) PathToString(instance xr.Instance, path xr.Path) (string, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncPathToString); result.Failed() {
		return "", result
	}
	if _, ok := r.instances[instance]; !ok {
		return "", xr.ErrorHandleInvalid
	}
	if path == xr.NullPath || int(path) > len(r.paths) {
		return "", xr.ErrorPathInvalid
	}
	return r.paths[path-1], xr.Success
}

// GetSystemProperties fills the base properties and leaves extension
// structures in the chain untouched.
func (r *Runtime) GetSystemProperties(instance xr.Instance, system xr.SystemID, properties *xr.SystemProperties) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncGetSystemProperties); result.Failed() {
		return result
	}
	if _, ok := r.instances[instance]; !ok {
		return xr.ErrorHandleInvalid
	}
	if properties == nil {
		return xr.ErrorValidationFailure
	}
	properties.SystemID = system
	properties.VendorID = VendorID
	properties.SystemName = SystemName
	return xr.Success
}

// SuggestInteractionProfileBindings stores the bindings for the
// profile, replacing earlier ones.
func (r *Runtime) SuggestInteractionProfileBindings(instance xr.Instance, bindings *xr.InteractionProfileSuggestedBinding) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncSuggestInteractionProfileBindings); result.Failed() {
		return result
	}
	state, ok := r.instances[instance]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if bindings == nil || int(bindings.InteractionProfile) > len(r.paths) || bindings.InteractionProfile == xr.NullPath {
		return xr.ErrorPathInvalid
	}
	for _, binding := range bindings.SuggestedBindings {
		if _, ok := r.actions[binding.Action]; !ok {
			return xr.ErrorHandleInvalid
		}
	}
	state.bindings[bindings.InteractionProfile] = slices.Clone(bindings.SuggestedBindings)
	return xr.Success
}

// Bindings returns the bindings last suggested for profile.
func (r *Runtime) Bindings(instance xr.Instance, profile xr.Path) []xr.ActionSuggestedBinding {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.instances[instance]
	if !ok {
		return nil
	}
	return slices.Clone(state.bindings[profile])
}

// DestroyInstance destroys an instance and every handle created from
// it.
func (r *Runtime) DestroyInstance(instance xr.Instance) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncDestroyInstance); result.Failed() {
		return result
	}
	if _, ok := r.instances[instance]; !ok {
		return xr.ErrorHandleInvalid
	}
	for session, owner := range r.sessions {
		if owner == instance {
			r.destroySessionLocked(session)
		}
	}
	for actionSet, owner := range r.actionSets {
		if owner == instance {
			r.destroyActionSetLocked(actionSet)
		}
	}
	delete(r.instances, instance)
	return xr.Success
}

// CreateSession creates a session.
func (r *Runtime) CreateSession(instance xr.Instance, info *xr.SessionCreateInfo) (xr.Session, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncCreateSession); result.Failed() {
		return 0, result
	}
	if _, ok := r.instances[instance]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info == nil {
		return 0, xr.ErrorValidationFailure
	}
	session := xr.Session(r.newHandle())
	r.sessions[session] = instance
	return session, xr.Success
}

// DestroySession destroys a session and its spaces.
func (r *Runtime) DestroySession(session xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncDestroySession); result.Failed() {
		return result
	}
	if _, ok := r.sessions[session]; !ok {
		return xr.ErrorHandleInvalid
	}
	r.destroySessionLocked(session)
	return xr.Success
}

func (r *Runtime) destroySessionLocked(session xr.Session) {
	for space, owner := range r.spaces {
		if owner == session {
			delete(r.spaces, space)
		}
	}
	delete(r.sessions, session)
}

// GetActionStatePose reports every pose action as inactive; the
// runtime has no devices.
func (r *Runtime) GetActionStatePose(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStatePose) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncGetActionStatePose); result.Failed() {
		return result
	}
	if _, ok := r.sessions[session]; !ok {
		return xr.ErrorHandleInvalid
	}
	if info == nil || state == nil {
		return xr.ErrorValidationFailure
	}
	if _, ok := r.actions[info.Action]; !ok {
		return xr.ErrorHandleInvalid
	}
	state.IsActive = false
	return xr.Success
}

// LocateSpace reports the identity pose with no valid flags.
func (r *Runtime) LocateSpace(space, baseSpace xr.Space, _ xr.Time, location *xr.SpaceLocation) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncLocateSpace); result.Failed() {
		return result
	}
	if _, ok := r.spaces[space]; !ok {
		return xr.ErrorHandleInvalid
	}
	if _, ok := r.spaces[baseSpace]; !ok {
		return xr.ErrorHandleInvalid
	}
	if location == nil {
		return xr.ErrorValidationFailure
	}
	location.Flags = 0
	location.Pose = xr.IdentityPose
	if velocity, ok := xr.Find[xr.SpaceVelocity](location.Next); ok {
		velocity.Flags = 0
	}
	return xr.Success
}

// CreateActionSpace creates a space following a pose action.
func (r *Runtime) CreateActionSpace(session xr.Session, info *xr.ActionSpaceCreateInfo) (xr.Space, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncCreateActionSpace); result.Failed() {
		return 0, result
	}
	if _, ok := r.sessions[session]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info == nil {
		return 0, xr.ErrorValidationFailure
	}
	if _, ok := r.actions[info.Action]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	space := xr.Space(r.newHandle())
	r.spaces[space] = session
	return space, xr.Success
}

// CreateReferenceSpace creates a reference space.
func (r *Runtime) CreateReferenceSpace(session xr.Session, info *xr.ReferenceSpaceCreateInfo) (xr.Space, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncCreateReferenceSpace); result.Failed() {
		return 0, result
	}
	if _, ok := r.sessions[session]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info == nil {
		return 0, xr.ErrorValidationFailure
	}
	space := xr.Space(r.newHandle())
	r.spaces[space] = session
	return space, xr.Success
}

// DestroySpace destroys a space.
func (r *Runtime) DestroySpace(space xr.Space) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncDestroySpace); result.Failed() {
		return result
	}
	if _, ok := r.spaces[space]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.spaces, space)
	return xr.Success
}

// CreateActionSet creates an action set.
func (r *Runtime) CreateActionSet(instance xr.Instance, info *xr.ActionSetCreateInfo) (xr.ActionSet, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncCreateActionSet); result.Failed() {
		return 0, result
	}
	if _, ok := r.instances[instance]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info == nil || info.Name == "" {
		return 0, xr.ErrorValidationFailure
	}
	actionSet := xr.ActionSet(r.newHandle())
	r.actionSets[actionSet] = instance
	return actionSet, xr.Success
}

// DestroyActionSet destroys an action set and its actions.
func (r *Runtime) DestroyActionSet(actionSet xr.ActionSet) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncDestroyActionSet); result.Failed() {
		return result
	}
	if _, ok := r.actionSets[actionSet]; !ok {
		return xr.ErrorHandleInvalid
	}
	r.destroyActionSetLocked(actionSet)
	return xr.Success
}

func (r *Runtime) destroyActionSetLocked(actionSet xr.ActionSet) {
	for action, owner := range r.actions {
		if owner == actionSet {
			delete(r.actions, action)
		}
	}
	delete(r.actionSets, actionSet)
}

// CreateAction creates an action.
func (r *Runtime) CreateAction(actionSet xr.ActionSet, info *xr.ActionCreateInfo) (xr.Action, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncCreateAction); result.Failed() {
		return 0, result
	}
	if _, ok := r.actionSets[actionSet]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info == nil || info.Name == "" {
		return 0, xr.ErrorValidationFailure
	}
	action := xr.Action(r.newHandle())
	r.actions[action] = actionSet
	return action, xr.Success
}

// DestroyAction destroys an action.
func (r *Runtime) DestroyAction(action xr.Action) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result := r.enter(xr.FuncDestroyAction); result.Failed() {
		return result
	}
	if _, ok := r.actions[action]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.actions, action)
	return xr.Success
}

// Counts reports the number of live handles of each kind.
type Counts struct {
	Instances  int
	Sessions   int
	ActionSets int
	Actions    int
	Spaces     int
}

// Live returns the number of live handles of each kind.
func (r *Runtime) Live() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{
		Instances:  len(r.instances),
		Sessions:   len(r.sessions),
		ActionSets: len(r.actionSets),
		Actions:    len(r.actions),
		Spaces:     len(r.spaces),
	}
}
