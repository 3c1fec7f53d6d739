// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/config"
	"github.com/ocsface/ocsface/lib/ingest"
	"github.com/ocsface/ocsface/lib/layerlog"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xrerror"
)

// Options supplies a Layer's collaborators. Zero fields get defaults.
type Options struct {
	// Logger receives the layer's log. Nil discards it.
	Logger *slog.Logger

	// LogHandler, when set, is renamed to the layer name the loader
	// reports during negotiation.
	LogHandler *layerlog.Handler

	// Clock is the time source for facial tracker sample times. Nil
	// uses the real clock.
	Clock clock.Clock

	// Source supplies channel readers to trackers. Nil creates one
	// listening as configured.
	Source *ingest.Source
}

// Layer is the state of the API layer in one process: the instances
// created through it, the registry of their handles, and the channel
// source their trackers share.
type Layer struct {
	config     *config.Config
	logger     *slog.Logger
	logHandler *layerlog.Handler
	logFile    *layerlog.File
	clock      clock.Clock
	epoch      time.Time
	source     *ingest.Source
	registry   *Registry
	hooks      map[string]xr.Func

	name atomic.Pointer[string]

	lastInstanceID atomic.Int64
	lastFacial     atomic.Uint64

	mu        sync.Mutex
	instances map[xr.Instance]*Instance
}

// New returns a Layer configured by cfg.
func New(cfg *config.Config, options Options) *Layer {
	l := &Layer{
		config:     cfg,
		logger:     options.Logger,
		logHandler: options.LogHandler,
		clock:      options.Clock,
		source:     options.Source,
		registry:   NewRegistry(),
		instances:  make(map[xr.Instance]*Instance),
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.clock == nil {
		l.clock = clock.Real()
	}
	l.epoch = l.clock.Now()
	if l.source == nil {
		l.source = ingest.NewSource(ingest.ListenerConfig{
			Address:       cfg.Listener.Address,
			Port:          cfg.Listener.Port,
			ReceiveBuffer: cfg.Listener.ReceiveBuffer,
			Logger:        l.logger,
		})
	}
	name := cfg.Layer.Name
	l.name.Store(&name)
	l.hooks = l.buildHooks()
	return l
}

// Open returns a Layer logging to the file cfg names. The file is
// truncated. Close closes it.
func Open(cfg *config.Config) (*Layer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	file, err := layerlog.Open(cfg.Log.Path, &layerlog.Options{
		Level: cfg.LogLevel(),
		Name:  cfg.Layer.Name,
	})
	if err != nil {
		return nil, err
	}
	l := New(cfg, Options{Logger: file.Logger(), LogHandler: file.Handler()})
	l.logFile = file
	return l, nil
}

// Close closes the log file opened by Open.
func (l *Layer) Close() error {
	if l.logFile == nil {
		return nil
	}
	return l.logFile.Close()
}

// Name returns the layer name: the configured one until the loader
// reports one during negotiation.
func (l *Layer) Name() string { return *l.name.Load() }

// Registry returns the handle registry.
func (l *Layer) Registry() *Registry { return l.registry }

// Source returns the channel source shared by all trackers.
func (l *Layer) Source() *ingest.Source { return l.source }

// Instance returns the layer state for handle.
func (l *Layer) Instance(handle xr.Instance) (*Instance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	instance, ok := l.instances[handle]
	if !ok {
		return nil, notRegistered("instance", uint64(handle))
	}
	return instance, nil
}

// InstanceCount returns the number of live instances.
func (l *Layer) InstanceCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.instances)
}

func (l *Layer) addInstance(instance *Instance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.instances[instance.handle]; exists {
		return alreadyRegistered("instance", uint64(instance.handle))
	}
	l.instances[instance.handle] = instance
	return nil
}

func (l *Layer) removeInstance(handle xr.Instance) (*Instance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	instance, ok := l.instances[handle]
	if !ok {
		return nil, notRegistered("instance", uint64(handle))
	}
	delete(l.instances, handle)
	return instance, nil
}

// call runs one entry point. A returned error, or a panic, is logged
// and converted to its result code; otherwise the result fn returned
// is passed through.
func (l *Layer) call(operation string, fn func() (xr.Result, error)) (result xr.Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err := xrerror.Newf(xrerror.Assertion, xr.ErrorRuntimeFailure, "panic: %v", recovered)
			result = xrerror.Report(l.logger, operation, err)
		}
	}()
	result, err := fn()
	if err != nil {
		return xrerror.Report(l.logger, operation, err)
	}
	return result
}

// Negotiate checks that the loader speaks interface version 1 and
// fills request with the layer's versions and bootstrap entry points.
func (l *Layer) Negotiate(loaderInfo *xr.NegotiateLoaderInfo, layerName string, request *xr.NegotiateAPILayerRequest) xr.Result {
	return l.call("Negotiate", func() (xr.Result, error) {
		if err := xrerror.NotNil(loaderInfo, xr.ErrorInitializationFailed, "loaderInfo"); err != nil {
			return 0, err
		}
		if err := xrerror.NotNil(request, xr.ErrorInitializationFailed, "apiLayerRequest"); err != nil {
			return 0, err
		}

		if layerName != "" {
			l.name.Store(&layerName)
			if l.logHandler != nil {
				l.logHandler.SetName(layerName)
			}
		}
		l.logger.Info("Using API layer: " + l.Name())
		l.logger.Info(fmt.Sprintf("loader API version min: %s max: %s", loaderInfo.MinAPIVersion, loaderInfo.MaxAPIVersion))
		l.logger.Info(fmt.Sprintf("loader interface version min: %d max: %d",
			loaderInfo.MinInterfaceVersion, loaderInfo.MaxInterfaceVersion))

		if loaderInfo.MinInterfaceVersion > xr.CurrentLoaderAPILayerInterfaceVersion ||
			loaderInfo.MaxInterfaceVersion < xr.CurrentLoaderAPILayerInterfaceVersion {
			return 0, xrerror.Newf(xrerror.InvalidParam, xr.ErrorInitializationFailed,
				"loader interface versions %d to %d exclude version %d",
				loaderInfo.MinInterfaceVersion, loaderInfo.MaxInterfaceVersion,
				xr.CurrentLoaderAPILayerInterfaceVersion)
		}

		apiVersion := loaderInfo.MaxAPIVersion
		if apiVersion == 0 {
			apiVersion = xr.CurrentAPIVersion
		}
		request.LayerInterfaceVersion = xr.CurrentLoaderAPILayerInterfaceVersion
		request.LayerAPIVersion = apiVersion
		request.GetInstanceProcAddr = l.GetInstanceProcAddr
		request.CreateAPILayerInstance = l.CreateAPILayerInstance
		return xr.Success, nil
	})
}

// CreateAPILayerInstance creates an instance through the rest of the
// chain with the layer's extensions removed, then sets up the layer's
// state for it. If that setup fails the new instance is destroyed
// again.
func (l *Layer) CreateAPILayerInstance(info *xr.InstanceCreateInfo, layerInfo *xr.APILayerCreateInfo) (xr.Instance, xr.Result) {
	var created xr.Instance
	result := l.call("CreateApiLayerInstance", func() (xr.Result, error) {
		if err := xrerror.NotNil(info, xr.ErrorValidationFailure, "info"); err != nil {
			return 0, err
		}
		if err := xrerror.NotNil(layerInfo, xr.ErrorInitializationFailed, "apiLayerInfo"); err != nil {
			return 0, err
		}
		if err := xrerror.NotNil(layerInfo.NextInfo, xr.ErrorInitializationFailed, "apiLayerInfo.nextInfo"); err != nil {
			return 0, err
		}
		nextInfo := layerInfo.NextInfo

		request, err := l.parseExtensions(info.EnabledExtensionNames)
		if err != nil {
			return 0, err
		}

		forwardInfo := *info
		forwardInfo.EnabledExtensionNames = filterExtensions(info.EnabledExtensionNames)
		forwardLayerInfo := *layerInfo
		forwardLayerInfo.NextInfo = nextInfo.Next

		handle, result := nextInfo.NextCreateAPILayerInstance(&forwardInfo, &forwardLayerInfo)
		if result.Failed() {
			return result, nil
		}
		l.logger.Info("Created api layer instance for app " + info.ApplicationName)

		instance, err := l.newInstance(handle, request, nextInfo.NextGetInstanceProcAddr)
		if err == nil {
			err = l.addInstance(instance)
			if err != nil {
				instance.close()
			}
		}
		if err != nil {
			l.destroyOrphan(handle, nextInfo.NextGetInstanceProcAddr)
			return 0, err
		}
		created = handle
		return xr.Success, nil
	})
	return created, result
}

// destroyOrphan destroys an instance the layer failed to set up.
func (l *Layer) destroyOrphan(handle xr.Instance, getProcAddr xr.GetInstanceProcAddrFunc) {
	destroy, result := xr.Resolve[xr.DestroyInstanceFunc](getProcAddr, handle, xr.FuncDestroyInstance)
	if result.Failed() {
		l.logger.Error("cannot resolve xrDestroyInstance to clean up instance", "result", result)
		return
	}
	if result := destroy(handle); result.Failed() {
		l.logger.Error("destroying instance after failed setup", "result", result)
	}
}

// GetInstanceProcAddr returns the layer's hook for name, or what the
// next layer returns for it.
func (l *Layer) GetInstanceProcAddr(instance xr.Instance, name string) (xr.Func, xr.Result) {
	var fn xr.Func
	result := l.call("GetInstanceProcAddr", func() (xr.Result, error) {
		owner, err := l.Instance(instance)
		if err != nil {
			return 0, err
		}
		if hook, ok := l.hooks[name]; ok {
			fn = hook
			return xr.Success, nil
		}
		var result xr.Result
		fn, result = owner.next.getInstanceProcAddr(instance, name)
		return result, nil
	})
	return fn, result
}
