// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/config"
	"github.com/ocsface/ocsface/lib/layer"
	"github.com/ocsface/ocsface/lib/process"
	"github.com/ocsface/ocsface/lib/version"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xr/xrsim"
	"github.com/ocsface/ocsface/lib/xrerror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	process.Exit(run(ctx, os.Args[1:], os.Stdout, clock.Real()))
}

type options struct {
	configPath string
	logPath    string
	port       int
	interval   time.Duration
	count      int
	top        int
}

func run(ctx context.Context, args []string, stdout io.Writer, clk clock.Clock) error {
	var opts options
	var showVersion bool

	flagSet := pflag.NewFlagSet("ocsface-probe", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "configuration file (default $"+config.EnvironmentVariable+" or built-in defaults)")
	flagSet.StringVar(&opts.logPath, "log", "", "layer log file (overrides the configuration)")
	flagSet.IntVar(&opts.port, "port", 0, "UDP port to listen on (overrides the configuration)")
	flagSet.DurationVar(&opts.interval, "interval", 500*time.Millisecond, "time between samples")
	flagSet.IntVar(&opts.count, "count", 10, "number of samples (0 samples until interrupted)")
	flagSet.IntVar(&opts.top, "top", 5, "number of strongest lip weights to print")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.SetOutput(stdout)

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if showVersion {
		version.Print(stdout, "ocsface-probe")
		return nil
	}
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	l, err := layer.Open(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	session, err := start(l, xrsim.New(), cfg)
	if err != nil {
		return err
	}
	defer session.close()

	fmt.Fprintf(stdout, "layer %s: instance %d, eye gaze %v, facial %v, logging to %s\n",
		l.Name(), session.instance, cfg.Layer.EyeGaze, cfg.Layer.Facial, cfg.Log.Path)

	ticker := clk.NewTicker(opts.interval)
	defer ticker.Stop()
	for samples := 0; opts.count == 0 || samples < opts.count; samples++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		line, err := session.sample(opts.top)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.logPath != "" {
		cfg.Log.Path = opts.logPath
	}
	if opts.port != 0 {
		cfg.Listener.Port = opts.port
	}
	return cfg, nil
}

// probeSession holds the objects an application would create.
type probeSession struct {
	instance xr.Instance
	session  xr.Session
	gaze     xr.Action
	space    xr.Space
	base     xr.Space
	lip      xr.FacialTracker
	eye      xr.FacialTracker

	destroyInstance xr.DestroyInstanceFunc
	getActionState  xr.GetActionStatePoseFunc
	locateSpace     xr.LocateSpaceFunc
	getExpressions  xr.GetFacialExpressionsHTCFunc
}

// start negotiates with l and creates an instance on runtime with the
// extensions cfg enables, then the session objects that exercise them.
func start(l *layer.Layer, runtime *xrsim.Runtime, cfg *config.Config) (*probeSession, error) {
	var request xr.NegotiateAPILayerRequest
	loaderInfo := &xr.NegotiateLoaderInfo{
		MinInterfaceVersion: xr.CurrentLoaderAPILayerInterfaceVersion,
		MaxInterfaceVersion: xr.CurrentLoaderAPILayerInterfaceVersion,
		MinAPIVersion:       xr.MakeVersion(1, 0, 0),
		MaxAPIVersion:       xr.CurrentAPIVersion,
	}
	if err := xrerror.Check(l.Negotiate(loaderInfo, "", &request), "negotiating with layer"); err != nil {
		return nil, err
	}

	var extensions []string
	if cfg.Layer.EyeGaze {
		extensions = append(extensions, xr.ExtensionEyeGazeInteraction)
	}
	if cfg.Layer.Facial {
		extensions = append(extensions, xr.ExtensionFacialTrackingHTC)
	}
	instance, result := request.CreateAPILayerInstance(&xr.InstanceCreateInfo{
		ApplicationName:       "ocsface-probe",
		APIVersion:            request.LayerAPIVersion,
		EnabledExtensionNames: extensions,
	}, runtime.LayerCreateInfo())
	if err := xrerror.Check(result, "creating instance"); err != nil {
		return nil, err
	}

	p := &probeSession{instance: instance}
	b := binder{getProcAddr: request.GetInstanceProcAddr, instance: instance}
	bind(&b, xr.FuncDestroyInstance, &p.destroyInstance)
	if b.err != nil {
		return nil, b.err
	}
	if err := p.setup(&b, runtime, cfg); err != nil {
		p.close()
		return nil, err
	}
	return p, nil
}

func (p *probeSession) setup(b *binder, runtime *xrsim.Runtime, cfg *config.Config) error {
	var (
		getSystemProperties xr.GetSystemPropertiesFunc
		createSession       xr.CreateSessionFunc
		createActionSet     xr.CreateActionSetFunc
		createAction        xr.CreateActionFunc
		suggestBindings     xr.SuggestInteractionProfileBindingsFunc
		createActionSpace   xr.CreateActionSpaceFunc
		createReference     xr.CreateReferenceSpaceFunc
		createFacial        xr.CreateFacialTrackerHTCFunc
	)
	bind(b, xr.FuncGetSystemProperties, &getSystemProperties)
	bind(b, xr.FuncCreateSession, &createSession)
	bind(b, xr.FuncCreateActionSet, &createActionSet)
	bind(b, xr.FuncCreateAction, &createAction)
	bind(b, xr.FuncSuggestInteractionProfileBindings, &suggestBindings)
	bind(b, xr.FuncCreateActionSpace, &createActionSpace)
	bind(b, xr.FuncCreateReferenceSpace, &createReference)
	bind(b, xr.FuncCreateFacialTrackerHTC, &createFacial)
	bind(b, xr.FuncGetActionStatePose, &p.getActionState)
	bind(b, xr.FuncLocateSpace, &p.locateSpace)
	bind(b, xr.FuncGetFacialExpressionsHTC, &p.getExpressions)
	if b.err != nil {
		return b.err
	}

	gazeSupport := &xr.SystemEyeGazeInteractionProperties{}
	facialSupport := &xr.SystemFacialTrackingPropertiesHTC{}
	properties := &xr.SystemProperties{Next: xr.Chain{gazeSupport, facialSupport}}
	if err := xrerror.Check(getSystemProperties(p.instance, 1, properties), "getting system properties"); err != nil {
		return err
	}
	if gazeSupport.SupportsEyeGazeInteraction != cfg.Layer.EyeGaze ||
		facialSupport.SupportLipFacialTracking != cfg.Layer.Facial {
		return fmt.Errorf("system properties report eye gaze %v, lip %v; configuration enables %v, %v",
			gazeSupport.SupportsEyeGazeInteraction, facialSupport.SupportLipFacialTracking,
			cfg.Layer.EyeGaze, cfg.Layer.Facial)
	}

	var result xr.Result
	p.session, result = createSession(p.instance, &xr.SessionCreateInfo{SystemID: properties.SystemID})
	if err := xrerror.Check(result, "creating session"); err != nil {
		return err
	}
	p.base, result = createReference(p.session, &xr.ReferenceSpaceCreateInfo{
		Type:                 xr.ReferenceSpaceTypeLocal,
		PoseInReferenceSpace: xr.IdentityPose,
	})
	if err := xrerror.Check(result, "creating reference space"); err != nil {
		return err
	}

	if cfg.Layer.EyeGaze {
		actionSet, result := createActionSet(p.instance, &xr.ActionSetCreateInfo{Name: "probe", LocalizedName: "Probe"})
		if err := xrerror.Check(result, "creating action set"); err != nil {
			return err
		}
		p.gaze, result = createAction(actionSet, &xr.ActionCreateInfo{
			Name:          "gaze",
			LocalizedName: "Gaze",
			Type:          xr.ActionTypePoseInput,
		})
		if err := xrerror.Check(result, "creating gaze action"); err != nil {
			return err
		}

		profile, result := runtime.StringToPath(p.instance, xr.PathEyeGazeInteractionProfile)
		if err := xrerror.Check(result, "resolving eye gaze profile"); err != nil {
			return err
		}
		pose, result := runtime.StringToPath(p.instance, xr.PathEyeGazePose)
		if err := xrerror.Check(result, "resolving gaze pose path"); err != nil {
			return err
		}
		result = suggestBindings(p.instance, &xr.InteractionProfileSuggestedBinding{
			InteractionProfile: profile,
			SuggestedBindings:  []xr.ActionSuggestedBinding{{Action: p.gaze, Binding: pose}},
		})
		if err := xrerror.Check(result, "binding gaze action"); err != nil {
			return err
		}

		p.space, result = createActionSpace(p.session, &xr.ActionSpaceCreateInfo{
			Action:            p.gaze,
			PoseInActionSpace: xr.IdentityPose,
		})
		if err := xrerror.Check(result, "creating gaze space"); err != nil {
			return err
		}
	}

	if cfg.Layer.Facial {
		p.lip, result = createFacial(p.session, &xr.FacialTrackerCreateInfoHTC{Type: xr.FacialTrackingTypeLip})
		if err := xrerror.Check(result, "creating lip tracker"); err != nil {
			return err
		}
		p.eye, result = createFacial(p.session, &xr.FacialTrackerCreateInfoHTC{Type: xr.FacialTrackingTypeEye})
		if err := xrerror.Check(result, "creating eye tracker"); err != nil {
			return err
		}
	}
	return nil
}

// sample queries every tracker once and formats the result as a line.
func (p *probeSession) sample(top int) (string, error) {
	line := ""
	if p.space != 0 {
		state := xr.ActionStatePose{}
		err := xrerror.Check(p.getActionState(p.session, &xr.ActionStateGetInfo{Action: p.gaze}, &state), "getting gaze state")
		if err != nil {
			return "", err
		}
		location := xr.SpaceLocation{}
		if err := xrerror.Check(p.locateSpace(p.space, p.base, 0, &location), "locating gaze space"); err != nil {
			return "", err
		}
		yaw, pitch := yawPitch(location.Pose.Orientation)
		line += fmt.Sprintf("gaze active=%v yaw=%+6.1f pitch=%+6.1f", state.IsActive, yaw, pitch)
	}

	if p.lip != 0 {
		expressions := xr.FacialExpressionsHTC{Weightings: make([]float32, xr.FacialExpressionLipCount)}
		if err := xrerror.Check(p.getExpressions(p.lip, &expressions), "getting lip expressions"); err != nil {
			return "", err
		}
		if line != "" {
			line += "  "
		}
		line += fmt.Sprintf("lip active=%v t=%s", expressions.IsActive, time.Duration(expressions.SampleTime).Round(time.Millisecond))
		for _, weight := range strongest(expressions.Weightings, top) {
			line += fmt.Sprintf(" %d=%.2f", weight.slot, weight.value)
		}
	}
	if line == "" {
		line = "no tracking extensions enabled"
	}
	return line, nil
}

func (p *probeSession) close() {
	if p.destroyInstance != nil {
		p.destroyInstance(p.instance)
	}
}

type weight struct {
	slot  int
	value float32
}

// strongest returns the n largest non-zero weights, largest first.
func strongest(weights []float32, n int) []weight {
	var result []weight
	for slot, value := range weights {
		if value > 0 {
			result = append(result, weight{slot, value})
		}
	}
	slices.SortStableFunc(result, func(a, b weight) int { return cmp.Compare(b.value, a.value) })
	if len(result) > n {
		result = result[:n]
	}
	return result
}

// yawPitch converts a gaze orientation to degrees: positive yaw looks
// left, positive pitch looks up.
func yawPitch(q xr.Quaternionf) (yaw, pitch float64) {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)
	yaw = math.Atan2(2*(w*y+x*z), 1-2*(x*x+y*y))
	pitch = math.Asin(max(-1, min(1, 2*(w*x-y*z))))
	return yaw * 180 / math.Pi, pitch * 180 / math.Pi
}

// binder resolves entry points through the layer, keeping the first
// failure.
type binder struct {
	getProcAddr xr.GetInstanceProcAddrFunc
	instance    xr.Instance
	err         error
}

func bind[F any](b *binder, name string, target *F) {
	if b.err != nil {
		return
	}
	fn, result := xr.Resolve[F](b.getProcAddr, b.instance, name)
	if result.Failed() {
		b.err = xrerror.Check(result, "resolving "+name)
		return
	}
	*target = fn
}
