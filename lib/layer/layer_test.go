// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/config"
	"github.com/ocsface/ocsface/lib/layerlog"
	"github.com/ocsface/ocsface/lib/testutil"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xr/xrsim"
	"github.com/ocsface/ocsface/lib/xrerror"
)

// syncBuffer is a bytes.Buffer safe for the listener goroutine and the
// test to use together.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

type fixture struct {
	layer   *Layer
	runtime *xrsim.Runtime
	clock   *clock.FakeClock
	logs    *syncBuffer
}

const otherExtension = "XR_KHR_composition_layer_depth"

func newFixture(t *testing.T, modify func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Listener.Address = "127.0.0.1"
	cfg.Listener.Port = testutil.FreeUDPPort(t)
	if modify != nil {
		modify(cfg)
	}

	logs := &syncBuffer{}
	handler := layerlog.NewHandler(logs, &layerlog.Options{Name: cfg.Layer.Name, Level: slog.LevelDebug})
	fake := clock.Fake(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))

	f := &fixture{
		layer:   New(cfg, Options{Logger: slog.New(handler), LogHandler: handler, Clock: fake}),
		runtime: xrsim.New(otherExtension),
		clock:   fake,
		logs:    logs,
	}
	t.Cleanup(f.destroyInstances)
	return f
}

// destroyInstances destroys what a test left behind so that no
// listener outlives it.
func (f *fixture) destroyInstances() {
	f.layer.mu.Lock()
	handles := make([]xr.Instance, 0, len(f.layer.instances))
	for handle := range f.layer.instances {
		handles = append(handles, handle)
	}
	f.layer.mu.Unlock()
	for _, handle := range handles {
		f.layer.destroyInstance(handle)
	}
}

func (f *fixture) createInstance(t *testing.T, extensions ...string) xr.Instance {
	t.Helper()
	instance, result := f.layer.CreateAPILayerInstance(&xr.InstanceCreateInfo{
		ApplicationName:       "layer-test",
		EnabledExtensionNames: extensions,
	}, f.runtime.LayerCreateInfo())
	if result.Failed() {
		t.Fatalf("CreateAPILayerInstance: %v\n%s", result, f.logs)
	}
	return instance
}

func (f *fixture) path(t *testing.T, instance xr.Instance, s string) xr.Path {
	t.Helper()
	path, result := f.runtime.StringToPath(instance, s)
	if result.Failed() {
		t.Fatalf("StringToPath(%s): %v", s, result)
	}
	return path
}

// hook resolves name through the layer and asserts its type.
func hook[F any](t *testing.T, l *Layer, instance xr.Instance, name string) F {
	t.Helper()
	fn, result := xr.Resolve[F](l.GetInstanceProcAddr, instance, name)
	if result.Failed() {
		t.Fatalf("resolving %s: %v", name, result)
	}
	return fn
}

// objects is a session with a pose action, an action space for it and
// a reference space.
type objects struct {
	session   xr.Session
	actionSet xr.ActionSet
	action    xr.Action
	space     xr.Space
	base      xr.Space
}

func (f *fixture) createObjects(t *testing.T, instance xr.Instance, subactionPath xr.Path) objects {
	t.Helper()
	var o objects
	var result xr.Result

	o.session, result = hook[xr.CreateSessionFunc](t, f.layer, instance, xr.FuncCreateSession)(instance, &xr.SessionCreateInfo{SystemID: 1})
	if result.Failed() {
		t.Fatalf("CreateSession: %v", result)
	}
	o.actionSet, result = hook[xr.CreateActionSetFunc](t, f.layer, instance, xr.FuncCreateActionSet)(instance, &xr.ActionSetCreateInfo{Name: "gameplay"})
	if result.Failed() {
		t.Fatalf("CreateActionSet: %v", result)
	}
	o.action, result = hook[xr.CreateActionFunc](t, f.layer, instance, xr.FuncCreateAction)(o.actionSet, &xr.ActionCreateInfo{
		Name: "gaze",
		Type: xr.ActionTypePoseInput,
	})
	if result.Failed() {
		t.Fatalf("CreateAction: %v", result)
	}
	o.space, result = hook[xr.CreateActionSpaceFunc](t, f.layer, instance, xr.FuncCreateActionSpace)(o.session, &xr.ActionSpaceCreateInfo{
		Action:            o.action,
		SubactionPath:     subactionPath,
		PoseInActionSpace: xr.IdentityPose,
	})
	if result.Failed() {
		t.Fatalf("CreateActionSpace: %v", result)
	}
	o.base, result = hook[xr.CreateReferenceSpaceFunc](t, f.layer, instance, xr.FuncCreateReferenceSpace)(o.session, &xr.ReferenceSpaceCreateInfo{
		Type:                 xr.ReferenceSpaceTypeLocal,
		PoseInReferenceSpace: xr.IdentityPose,
	})
	if result.Failed() {
		t.Fatalf("CreateReferenceSpace: %v", result)
	}
	return o
}

func TestNegotiate(t *testing.T) {
	f := newFixture(t, nil)

	var request xr.NegotiateAPILayerRequest
	result := f.layer.Negotiate(&xr.NegotiateLoaderInfo{
		MinInterfaceVersion: 1,
		MaxInterfaceVersion: 1,
		MinAPIVersion:       xr.MakeVersion(1, 0, 0),
		MaxAPIVersion:       xr.MakeVersion(1, 0, 40),
	}, "XR_APILAYER_test_ocs", &request)
	if result.Failed() {
		t.Fatalf("Negotiate: %v\n%s", result, f.logs)
	}

	if request.LayerInterfaceVersion != 1 {
		t.Errorf("LayerInterfaceVersion = %d, want 1", request.LayerInterfaceVersion)
	}
	if request.LayerAPIVersion != xr.MakeVersion(1, 0, 40) {
		t.Errorf("LayerAPIVersion = %s, want 1.0.40", request.LayerAPIVersion)
	}
	if request.GetInstanceProcAddr == nil || request.CreateAPILayerInstance == nil {
		t.Error("bootstrap entry points not filled")
	}
	if f.layer.Name() != "XR_APILAYER_test_ocs" {
		t.Errorf("Name() = %q", f.layer.Name())
	}

	logs := f.logs.String()
	for _, want := range []string{
		"XR_APILAYER_test_ocs: Using API layer: XR_APILAYER_test_ocs",
		"loader API version min: 1.0.0 max: 1.0.40",
		"loader interface version min: 1 max: 1",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q:\n%s", want, logs)
		}
	}
}

func TestNegotiateDefaultsAPIVersion(t *testing.T) {
	f := newFixture(t, nil)
	var request xr.NegotiateAPILayerRequest
	result := f.layer.Negotiate(&xr.NegotiateLoaderInfo{MinInterfaceVersion: 1, MaxInterfaceVersion: 2}, "", &request)
	if result.Failed() {
		t.Fatalf("Negotiate: %v", result)
	}
	if request.LayerAPIVersion != xr.CurrentAPIVersion {
		t.Errorf("LayerAPIVersion = %s, want %s", request.LayerAPIVersion, xr.CurrentAPIVersion)
	}
	if f.layer.Name() != "ocseyefacetracking" {
		t.Errorf("empty loader name replaced the configured one: %q", f.layer.Name())
	}
}

func TestNegotiateRejects(t *testing.T) {
	tests := []struct {
		name    string
		info    *xr.NegotiateLoaderInfo
		request *xr.NegotiateAPILayerRequest
	}{
		{"interface too new", &xr.NegotiateLoaderInfo{MinInterfaceVersion: 2, MaxInterfaceVersion: 3}, &xr.NegotiateAPILayerRequest{}},
		{"interface too old", &xr.NegotiateLoaderInfo{MinInterfaceVersion: 0, MaxInterfaceVersion: 0}, &xr.NegotiateAPILayerRequest{}},
		{"nil loader info", nil, &xr.NegotiateAPILayerRequest{}},
		{"nil request", &xr.NegotiateLoaderInfo{MinInterfaceVersion: 1, MaxInterfaceVersion: 1}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if result := f.layer.Negotiate(test.info, "x", test.request); result != xr.ErrorInitializationFailed {
				t.Errorf("Negotiate = %v, want ErrorInitializationFailed", result)
			}
			if test.request != nil && test.request.GetInstanceProcAddr != nil {
				t.Error("request filled despite failure")
			}
			if !strings.Contains(f.logs.String(), "Negotiate failed:") {
				t.Errorf("failure not logged:\n%s", f.logs)
			}
		})
	}
}

func TestCreateInstanceFiltersExtensions(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t, xr.ExtensionEyeGazeInteraction, otherExtension, xr.ExtensionFacialTrackingHTC)

	info, ok := f.runtime.CreateInfo(instance)
	if !ok {
		t.Fatal("runtime has no such instance")
	}
	if !slices.Equal(info.EnabledExtensionNames, []string{otherExtension}) {
		t.Errorf("forwarded extensions = %v, want [%s]", info.EnabledExtensionNames, otherExtension)
	}

	state, err := f.layer.Instance(instance)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if !state.EyeGazeEnabled() || !state.FacialEnabled() || state.EyeGaze() == nil {
		t.Errorf("instance flags: eye gaze %v facial %v tracker %v", state.EyeGazeEnabled(), state.FacialEnabled(), state.EyeGaze())
	}
	if state.Handle() != instance || state.ID() != 1 {
		t.Errorf("instance handle %d id %d", state.Handle(), state.ID())
	}
	if refs := f.layer.Source().Refs(); refs != 1 {
		t.Errorf("source refs = %d, want 1 for the eye gaze tracker", refs)
	}

	logs := f.logs.String()
	for _, want := range []string{
		"Created api layer instance for app layer-test",
		"Enable eye gaze interaction: yes instance=1",
		"Enable facial tracking: yes instance=1",
		"Create eye gaze tracker",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q:\n%s", want, logs)
		}
	}
}

func TestCreateInstanceWithoutExtensions(t *testing.T) {
	f := newFixture(t, nil)
	first := f.createInstance(t)
	second := f.createInstance(t)

	state, err := f.layer.Instance(second)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if state.EyeGazeEnabled() || state.FacialEnabled() || state.EyeGaze() != nil {
		t.Error("extensions enabled without being requested")
	}
	if state.ID() != 2 {
		t.Errorf("second instance id = %d, want 2", state.ID())
	}
	if first == second {
		t.Error("instances share a handle")
	}
	if f.layer.Source().Refs() != 0 {
		t.Error("channel source acquired without eye gaze")
	}
	if !strings.Contains(f.logs.String(), "Enable eye gaze interaction: no") {
		t.Errorf("log missing disabled eye gaze:\n%s", f.logs)
	}
}

func TestCreateInstanceUnsupportedExtension(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*config.Config)
		extension string
	}{
		{"eye gaze", func(c *config.Config) { c.Layer.EyeGaze = false }, xr.ExtensionEyeGazeInteraction},
		{"facial", func(c *config.Config) { c.Layer.Facial = false }, xr.ExtensionFacialTrackingHTC},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, test.modify)
			_, result := f.layer.CreateAPILayerInstance(&xr.InstanceCreateInfo{
				EnabledExtensionNames: []string{test.extension},
			}, f.runtime.LayerCreateInfo())
			if result != xr.ErrorExtensionNotPresent {
				t.Errorf("result = %v, want ErrorExtensionNotPresent", result)
			}
			if calls := f.runtime.Calls("xrCreateApiLayerInstance"); calls != 0 {
				t.Errorf("runtime called %d times", calls)
			}
			if f.layer.InstanceCount() != 0 {
				t.Error("instance registered")
			}
			if !strings.Contains(f.logs.String(), "requested but not supported") {
				t.Errorf("log missing refusal:\n%s", f.logs)
			}
		})
	}
}

func TestCreateInstanceDownstreamFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.runtime.FailNext("xrCreateApiLayerInstance", xr.ErrorRuntimeFailure)

	_, result := f.layer.CreateAPILayerInstance(&xr.InstanceCreateInfo{}, f.runtime.LayerCreateInfo())
	if result != xr.ErrorRuntimeFailure {
		t.Errorf("result = %v, want the downstream failure", result)
	}
	if f.layer.InstanceCount() != 0 {
		t.Error("instance registered after downstream failure")
	}
}

func TestCreateInstanceSetupFailureDestroysDownstream(t *testing.T) {
	f := newFixture(t, nil)
	f.runtime.Hide(xr.FuncLocateSpace)

	_, result := f.layer.CreateAPILayerInstance(&xr.InstanceCreateInfo{
		EnabledExtensionNames: []string{xr.ExtensionEyeGazeInteraction},
	}, f.runtime.LayerCreateInfo())
	if result != xr.ErrorFunctionUnsupported {
		t.Errorf("result = %v, want ErrorFunctionUnsupported", result)
	}
	if live := f.runtime.Live(); live.Instances != 0 {
		t.Errorf("downstream instance leaked: %+v", live)
	}
	if f.layer.InstanceCount() != 0 || f.layer.Source().Refs() != 0 {
		t.Error("layer state left behind")
	}

	logs := f.logs.String()
	for _, want := range []string{"CreateApiLayerInstance failed:", "Exception: invalid action", "xrLocateSpace"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q:\n%s", want, logs)
		}
	}
}

func TestCreateInstanceRejectsMissingChain(t *testing.T) {
	f := newFixture(t, nil)
	if _, result := f.layer.CreateAPILayerInstance(&xr.InstanceCreateInfo{}, &xr.APILayerCreateInfo{}); result != xr.ErrorInitializationFailed {
		t.Errorf("result = %v, want ErrorInitializationFailed", result)
	}
	if _, result := f.layer.CreateAPILayerInstance(nil, f.runtime.LayerCreateInfo()); result != xr.ErrorValidationFailure {
		t.Errorf("nil info result = %v, want ErrorValidationFailure", result)
	}
}

func TestGetInstanceProcAddr(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t)

	names := f.layer.HookNames()
	if len(names) != 17 {
		t.Errorf("layer intercepts %d entry points, want 17", len(names))
	}
	for _, name := range names {
		fn, result := f.layer.GetInstanceProcAddr(instance, name)
		if result.Failed() || fn == nil {
			t.Errorf("%s: %v", name, result)
		}
	}

	// Facial tracking is not provided by the runtime, so a successful
	// lookup can only be the layer's hook.
	hook[xr.CreateFacialTrackerHTCFunc](t, f.layer, instance, xr.FuncCreateFacialTrackerHTC)

	pathToString := hook[xr.PathToStringFunc](t, f.layer, instance, xr.FuncPathToString)
	path := f.path(t, instance, xr.PathEyesUser)
	if text, result := pathToString(instance, path); result.Failed() || text != xr.PathEyesUser {
		t.Errorf("forwarded PathToString = %q, %v", text, result)
	}

	if _, result := f.layer.GetInstanceProcAddr(instance, "xrNoSuchFunction"); result != xr.ErrorFunctionUnsupported {
		t.Errorf("unknown name: %v, want the runtime's ErrorFunctionUnsupported", result)
	}
	if _, result := f.layer.GetInstanceProcAddr(instance+1000, xr.FuncCreateSession); result != xr.ErrorHandleInvalid {
		t.Errorf("unknown instance: %v, want ErrorHandleInvalid", result)
	}
}

func TestHandleLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t)
	o := f.createObjects(t, instance, xr.NullPath)

	want := Counts{Sessions: 1, ActionSets: 1, Actions: 1, Spaces: 2}
	if counts := f.layer.Registry().Counts(); counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
	record, err := f.layer.Registry().Space(o.space)
	if err != nil {
		t.Fatalf("Space: %v", err)
	}
	if record.Action != o.action || record.Session != o.session || record.Owner.Handle() != instance {
		t.Errorf("space record = %+v", record)
	}
	base, err := f.layer.Registry().Space(o.base)
	if err != nil {
		t.Fatalf("Space(base): %v", err)
	}
	if base.Action != 0 || base.SubactionPath != xr.NullPath {
		t.Errorf("reference space record = %+v", base)
	}

	destroySpace := hook[xr.DestroySpaceFunc](t, f.layer, instance, xr.FuncDestroySpace)
	if result := destroySpace(o.space); result.Failed() {
		t.Errorf("DestroySpace: %v", result)
	}
	if result := destroySpace(o.space); result != xr.ErrorHandleInvalid {
		t.Errorf("second DestroySpace = %v, want ErrorHandleInvalid", result)
	}

	destroyAction := hook[xr.DestroyActionFunc](t, f.layer, instance, xr.FuncDestroyAction)
	if result := destroyAction(o.action); result.Failed() {
		t.Errorf("DestroyAction: %v", result)
	}
	destroyActionSet := hook[xr.DestroyActionSetFunc](t, f.layer, instance, xr.FuncDestroyActionSet)
	if result := destroyActionSet(o.actionSet); result.Failed() {
		t.Errorf("DestroyActionSet: %v", result)
	}
	destroySession := hook[xr.DestroySessionFunc](t, f.layer, instance, xr.FuncDestroySession)
	if result := destroySession(o.session); result.Failed() {
		t.Errorf("DestroySession: %v", result)
	}

	if counts := f.layer.Registry().Counts(); counts != (Counts{}) {
		t.Errorf("handles still registered: %+v", counts)
	}
	if live := f.runtime.Live(); live != (xrsim.Counts{Instances: 1}) {
		t.Errorf("runtime handles = %+v", live)
	}
}

func TestDestroyActionSetRemovesActions(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t)
	o := f.createObjects(t, instance, xr.NullPath)

	if result := hook[xr.DestroyActionSetFunc](t, f.layer, instance, xr.FuncDestroyActionSet)(o.actionSet); result.Failed() {
		t.Fatalf("DestroyActionSet: %v", result)
	}
	if _, err := f.layer.Registry().ActionOwner(o.action); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("action still registered: %v", err)
	}
}

func TestDestroySessionRemovesSpaces(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t, xr.ExtensionFacialTrackingHTC)
	o := f.createObjects(t, instance, xr.NullPath)

	createTracker := hook[xr.CreateFacialTrackerHTCFunc](t, f.layer, instance, xr.FuncCreateFacialTrackerHTC)
	if _, result := createTracker(o.session, &xr.FacialTrackerCreateInfoHTC{Type: xr.FacialTrackingTypeLip}); result.Failed() {
		t.Fatalf("CreateFacialTrackerHTC: %v", result)
	}

	if result := hook[xr.DestroySessionFunc](t, f.layer, instance, xr.FuncDestroySession)(o.session); result.Failed() {
		t.Fatalf("DestroySession: %v", result)
	}
	counts := f.layer.Registry().Counts()
	if counts.Spaces != 0 || counts.FacialTrackers != 0 || counts.Sessions != 0 {
		t.Errorf("session children still registered: %+v", counts)
	}
	if counts.Actions != 1 {
		t.Errorf("actions belong to the instance, not the session: %+v", counts)
	}
	if f.layer.Source().Refs() != 0 {
		t.Errorf("facial tracker reference not released")
	}
}

func TestCreateFailureDoesNotRegister(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t)

	f.runtime.FailNext(xr.FuncCreateSession, xr.ErrorRuntimeFailure)
	session, result := hook[xr.CreateSessionFunc](t, f.layer, instance, xr.FuncCreateSession)(instance, &xr.SessionCreateInfo{})
	if result != xr.ErrorRuntimeFailure || session != 0 {
		t.Errorf("CreateSession = %d, %v; want 0, ErrorRuntimeFailure", session, result)
	}
	if counts := f.layer.Registry().Counts(); counts != (Counts{}) {
		t.Errorf("failed create registered a handle: %+v", counts)
	}
	if strings.Contains(f.logs.String(), "failed:") {
		t.Errorf("downstream result logged as a layer failure:\n%s", f.logs)
	}
}

func TestDestroyRemovesDespiteDownstreamFailure(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t)
	o := f.createObjects(t, instance, xr.NullPath)

	f.runtime.FailNext(xr.FuncDestroySpace, xr.ErrorRuntimeFailure)
	if result := hook[xr.DestroySpaceFunc](t, f.layer, instance, xr.FuncDestroySpace)(o.base); result != xr.ErrorRuntimeFailure {
		t.Errorf("DestroySpace = %v, want the downstream failure", result)
	}
	if _, err := f.layer.Registry().Space(o.base); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("space still registered after destroy: %v", err)
	}
	if calls := f.runtime.Calls(xr.FuncDestroySpace); calls != 1 {
		t.Errorf("downstream DestroySpace called %d times", calls)
	}
}

func TestDestroyInstanceCascades(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t, xr.ExtensionEyeGazeInteraction, xr.ExtensionFacialTrackingHTC)
	other := f.createInstance(t)
	o := f.createObjects(t, instance, xr.NullPath)
	otherObjects := f.createObjects(t, other, xr.NullPath)

	createTracker := hook[xr.CreateFacialTrackerHTCFunc](t, f.layer, instance, xr.FuncCreateFacialTrackerHTC)
	tracker, result := createTracker(o.session, &xr.FacialTrackerCreateInfoHTC{Type: xr.FacialTrackingTypeEye})
	if result.Failed() {
		t.Fatalf("CreateFacialTrackerHTC: %v", result)
	}
	if refs := f.layer.Source().Refs(); refs != 2 {
		t.Fatalf("source refs = %d, want 2", refs)
	}

	destroyInstance := hook[xr.DestroyInstanceFunc](t, f.layer, instance, xr.FuncDestroyInstance)
	if result := destroyInstance(instance); result.Failed() {
		t.Fatalf("DestroyInstance: %v", result)
	}

	registry := f.layer.Registry()
	if _, err := registry.SessionOwner(o.session); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("session lookup after destroy: %v", err)
	}
	if _, err := registry.ActionSetOwner(o.actionSet); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("action set lookup after destroy: %v", err)
	}
	if _, err := registry.ActionOwner(o.action); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("action lookup after destroy: %v", err)
	}
	if _, err := registry.Space(o.space); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("space lookup after destroy: %v", err)
	}
	if _, err := registry.facialTracker(tracker); xrerror.ResultOf(err) != xr.ErrorHandleInvalid {
		t.Errorf("facial tracker lookup after destroy: %v", err)
	}
	if refs := f.layer.Source().Refs(); refs != 0 {
		t.Errorf("source refs after destroy = %d, want 0", refs)
	}

	want := Counts{Sessions: 1, ActionSets: 1, Actions: 1, Spaces: 2}
	if counts := registry.Counts(); counts != want {
		t.Errorf("other instance's handles = %+v, want %+v", counts, want)
	}
	if owner, err := registry.SessionOwner(otherObjects.session); err != nil || owner.Handle() != other {
		t.Errorf("other instance's session: %v, %v", owner, err)
	}

	if result := destroyInstance(instance); result != xr.ErrorHandleInvalid {
		t.Errorf("second DestroyInstance = %v, want ErrorHandleInvalid", result)
	}
	if _, result := f.layer.GetInstanceProcAddr(instance, xr.FuncCreateSession); result != xr.ErrorHandleInvalid {
		t.Errorf("GetInstanceProcAddr after destroy = %v", result)
	}
	if live := f.runtime.Live(); live.Instances != 1 {
		t.Errorf("runtime instances = %d, want 1", live.Instances)
	}
}

func TestGetSystemProperties(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		eyeGaze bool
		facial  bool
	}{
		{"both supported", nil, true, true},
		{"eye gaze only", func(c *config.Config) { c.Layer.Facial = false }, true, false},
		{"facial only", func(c *config.Config) { c.Layer.EyeGaze = false }, false, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, test.modify)
			instance := f.createInstance(t)

			eyeGaze := &xr.SystemEyeGazeInteractionProperties{SupportsEyeGazeInteraction: !test.eyeGaze}
			facial := &xr.SystemFacialTrackingPropertiesHTC{
				SupportEyeFacialTracking: !test.facial,
				SupportLipFacialTracking: !test.facial,
			}
			properties := xr.SystemProperties{Next: xr.Chain{facial, eyeGaze}}

			get := hook[xr.GetSystemPropertiesFunc](t, f.layer, instance, xr.FuncGetSystemProperties)
			if result := get(instance, 3, &properties); result.Failed() {
				t.Fatalf("GetSystemProperties: %v", result)
			}
			if eyeGaze.SupportsEyeGazeInteraction != test.eyeGaze {
				t.Errorf("SupportsEyeGazeInteraction = %v, want %v", eyeGaze.SupportsEyeGazeInteraction, test.eyeGaze)
			}
			if facial.SupportEyeFacialTracking != test.facial || facial.SupportLipFacialTracking != test.facial {
				t.Errorf("facial support = %+v, want %v", facial, test.facial)
			}
			if properties.SystemName != xrsim.SystemName || properties.SystemID != 3 {
				t.Errorf("base properties not forwarded: %+v", properties)
			}
		})
	}
}

func TestCallRecoversPanic(t *testing.T) {
	f := newFixture(t, nil)
	result := f.layer.call("xrExplode", func() (xr.Result, error) {
		panic("boom")
	})
	if result != xr.ErrorRuntimeFailure {
		t.Errorf("result = %v, want ErrorRuntimeFailure", result)
	}
	logs := f.logs.String()
	if !strings.Contains(logs, "xrExplode failed:") || !strings.Contains(logs, "panic: boom") {
		t.Errorf("panic not reported:\n%s", logs)
	}
}

func TestNilArgumentsFailValidation(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t, xr.ExtensionEyeGazeInteraction)
	o := f.createObjects(t, instance, xr.NullPath)

	if result := hook[xr.GetSystemPropertiesFunc](t, f.layer, instance, xr.FuncGetSystemProperties)(instance, 1, nil); result != xr.ErrorValidationFailure {
		t.Errorf("GetSystemProperties(nil) = %v", result)
	}
	if result := hook[xr.SuggestInteractionProfileBindingsFunc](t, f.layer, instance, xr.FuncSuggestInteractionProfileBindings)(instance, nil); result != xr.ErrorValidationFailure {
		t.Errorf("SuggestInteractionProfileBindings(nil) = %v", result)
	}
	if _, result := hook[xr.CreateActionSpaceFunc](t, f.layer, instance, xr.FuncCreateActionSpace)(o.session, nil); result != xr.ErrorValidationFailure {
		t.Errorf("CreateActionSpace(nil) = %v", result)
	}
}

func TestConcurrentSessions(t *testing.T) {
	f := newFixture(t, nil)
	instance := f.createInstance(t)
	createSession := hook[xr.CreateSessionFunc](t, f.layer, instance, xr.FuncCreateSession)
	destroySession := hook[xr.DestroySessionFunc](t, f.layer, instance, xr.FuncDestroySession)

	var wg sync.WaitGroup
	failures := make(chan xr.Result, 64)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				session, result := createSession(instance, &xr.SessionCreateInfo{})
				if result.Failed() {
					failures <- result
					return
				}
				if result := destroySession(session); result.Failed() {
					failures <- result
					return
				}
			}
		}()
	}
	wg.Wait()
	close(failures)

	for result := range failures {
		t.Errorf("concurrent session call failed: %v", result)
	}
	if counts := f.layer.Registry().Counts(); counts.Sessions != 0 {
		t.Errorf("sessions left registered: %d", counts.Sessions)
	}
}

func TestOpenWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Path = filepath.Join(t.TempDir(), "XrApiLayer_ocseyefacetracking.log")

	l, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var request xr.NegotiateAPILayerRequest
	if result := l.Negotiate(&xr.NegotiateLoaderInfo{MinInterfaceVersion: 1, MaxInterfaceVersion: 1}, "XR_APILAYER_ocs", &request); result.Failed() {
		t.Fatalf("Negotiate: %v", result)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.Log.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "INFO XR_APILAYER_ocs: Using API layer: XR_APILAYER_ocs") {
		t.Errorf("log file contents:\n%s", data)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Listener.Port = -1
	if _, err := Open(cfg); err == nil {
		t.Fatal("expected error for invalid configuration")
	}
}
