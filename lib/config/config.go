// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable holding the config file path.
const EnvironmentVariable = "OCSFACE_CONFIG"

// Config is the complete configuration of the layer and its tools.
type Config struct {
	// Layer selects the layer name and the features it offers.
	Layer LayerConfig `yaml:"layer"`

	// Log configures the layer's log file.
	Log LogConfig `yaml:"log"`

	// Listener configures the UDP socket sensor data arrives on.
	Listener ListenerConfig `yaml:"listener"`

	// EyeGaze configures the gaze mapping.
	EyeGaze EyeGazeConfig `yaml:"eye_gaze"`
}

// LayerConfig selects the layer name and supported extensions.
type LayerConfig struct {
	// Name is the layer name used in log lines until the loader
	// supplies one during negotiation.
	// Default: ocseyefacetracking
	Name string `yaml:"name"`

	// EyeGaze enables XR_EXT_eye_gaze_interaction.
	// Default: true
	EyeGaze bool `yaml:"eye_gaze"`

	// Facial enables XR_HTC_facial_tracking.
	// Default: true
	Facial bool `yaml:"facial"`
}

// LogConfig configures the log file.
type LogConfig struct {
	// Path is the log file, truncated when the layer starts. Supports
	// ${VAR} and ${VAR:-default} expansion.
	// Default: XrApiLayer_ocseyefacetracking.log
	Path string `yaml:"path"`

	// Level is the minimum level written: debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`
}

// ListenerConfig configures the UDP socket.
type ListenerConfig struct {
	// Address is the local IP to bind. Empty binds every interface.
	Address string `yaml:"address"`

	// Port is the UDP port sensors stream to.
	// Default: 8888
	Port int `yaml:"port"`

	// ReceiveBuffer is the largest datagram accepted, in bytes.
	// Default: 4096
	ReceiveBuffer int `yaml:"receive_buffer"`
}

// EyeGazeConfig configures the gaze mapping.
type EyeGazeConfig struct {
	// HorizontalDegrees is the gaze rotation reported at full
	// left or right eye deflection.
	// Default: 45
	HorizontalDegrees float32 `yaml:"horizontal_degrees"`

	// VerticalDegrees is the gaze rotation reported at full up or
	// down deflection.
	// Default: 30
	VerticalDegrees float32 `yaml:"vertical_degrees"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Layer: LayerConfig{
			Name:    "ocseyefacetracking",
			EyeGaze: true,
			Facial:  true,
		},
		Log: LogConfig{
			Path:  "XrApiLayer_ocseyefacetracking.log",
			Level: "info",
		},
		Listener: ListenerConfig{
			Port:          8888,
			ReceiveBuffer: 4096,
		},
		EyeGaze: EyeGazeConfig{
			HorizontalDegrees: 45,
			VerticalDegrees:   30,
		},
	}
}

// Load reads the file named by OCSFACE_CONFIG. The layer is loaded
// into host processes that cannot pass flags, so an unset variable
// yields Default() rather than an error.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from path on top of Default(). Keys
// absent from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in the log path.
func (c *Config) expandVariables() {
	c.Log.Path = expandVars(c.Log.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel returns the configured log level. Unknown names map to
// info; Validate reports them.
func (c *Config) LogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.Log.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Layer.Name == "" {
		errs = append(errs, errors.New("layer.name is required"))
	}
	if c.Log.Path == "" {
		errs = append(errs, errors.New("log.path is required"))
	}
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Listener.Port < 1 || c.Listener.Port > 65535 {
		errs = append(errs, fmt.Errorf("listener.port must be between 1 and 65535, got %d", c.Listener.Port))
	}
	if c.Listener.ReceiveBuffer < 64 || c.Listener.ReceiveBuffer > 65536 {
		errs = append(errs, fmt.Errorf("listener.receive_buffer must be between 64 and 65536, got %d", c.Listener.ReceiveBuffer))
	}
	if c.EyeGaze.HorizontalDegrees <= 0 || c.EyeGaze.HorizontalDegrees > 180 {
		errs = append(errs, fmt.Errorf("eye_gaze.horizontal_degrees must be in (0, 180], got %v", c.EyeGaze.HorizontalDegrees))
	}
	if c.EyeGaze.VerticalDegrees <= 0 || c.EyeGaze.VerticalDegrees > 90 {
		errs = append(errs, fmt.Errorf("eye_gaze.vertical_degrees must be in (0, 90], got %v", c.EyeGaze.VerticalDegrees))
	}

	return errors.Join(errs...)
}
