// Package drowsy wires the camera, detector, alarm and renderers into a
// running drowsiness monitor.
package drowsy

import (
	"time"

	"github.com/teslashibe/drowsy/internal/config"
	"github.com/teslashibe/drowsy/pkg/alarm"
	"github.com/teslashibe/drowsy/pkg/audioio"
	"github.com/teslashibe/drowsy/pkg/camera"
	"github.com/teslashibe/drowsy/pkg/detection"
	"github.com/teslashibe/drowsy/pkg/drowsiness"
	"github.com/teslashibe/drowsy/pkg/monitor"
	"github.com/teslashibe/drowsy/pkg/web"
)

// Config holds all configuration for the drowsy command.
// Flag parsing is done in cmd/drowsy/main.go; this struct is data only.
type Config struct {
	Camera    camera.Config     `yaml:"camera"`
	Detection detection.Config  `yaml:"detection"`
	Timer     drowsiness.Config `yaml:"timer"`
	Alarm     alarm.Config      `yaml:"alarm"`
	Audio     audioio.Config    `yaml:"audio"`

	// Web is the dashboard. It is enabled when Web.Addr is set.
	Web web.Config `yaml:"web"`

	// KeyWait is how long each frame waits for a key press.
	KeyWait time.Duration `yaml:"key_wait"`

	// Headless disables the preview windows.
	Headless bool `yaml:"headless"`

	// Debug enables verbose logs; DebugFrames adds per-frame detection logs.
	Debug       bool   `yaml:"debug"`
	DebugFrames bool   `yaml:"debug_frames"`
	LogLevel    string `yaml:"log_level"`

	// LogFile adds a rotating log file next to stdout.
	LogFile string `yaml:"log_file"`
}

// DefaultConfig reproduces the plain webcam setup: device 0, the bundled
// cascades, a repeating 3 second alert, a 10ms key poll and no dashboard.
func DefaultConfig() Config {
	w := web.DefaultConfig()
	w.Addr = ""

	return Config{
		Camera:    camera.DefaultConfig(),
		Detection: detection.DefaultConfig(),
		Timer:     drowsiness.DefaultConfig(),
		Alarm:     alarm.DefaultConfig(),
		Audio:     audioio.DefaultConfig(),
		Web:       w,
		KeyWait:   monitor.DefaultKeyWait,
		LogLevel:  "info",
	}
}

// LoadEnvConfig applies DROWSY_* and LOG_LEVEL overrides.
// Call this after loading the config file and before applying flags.
func (c *Config) LoadEnvConfig() {
	c.Camera.Device = config.CameraDevice(c.Camera.Device)
	c.Detection.FaceModel = config.FaceCascade(c.Detection.FaceModel)
	c.Detection.EyeModel = config.EyeCascade(c.Detection.EyeModel)
	c.Web.Addr = config.WebAddr(c.Web.Addr)
	c.LogLevel = config.LogLevel(c.LogLevel)
	c.LogFile = config.LogFile(c.LogFile)
}

// WebEnabled reports whether the dashboard should run.
func (c *Config) WebEnabled() bool {
	return c.Web.Addr != ""
}

// Validate checks every section and reports the first problem.
func (c *Config) Validate() error {
	if errs := c.Camera.Validate(); len(errs) > 0 {
		return &ConfigError{Field: "camera", Message: errs[0]}
	}
	if err := c.Detection.Validate(); err != nil {
		return &ConfigError{Field: "detection", Message: err.Error()}
	}
	if err := c.Timer.Validate(); err != nil {
		return &ConfigError{Field: "timer", Message: err.Error()}
	}
	if err := c.Alarm.Validate(); err != nil {
		return &ConfigError{Field: "alarm", Message: err.Error()}
	}
	if err := c.Audio.Validate(); err != nil {
		return &ConfigError{Field: "audio", Message: err.Error()}
	}
	if c.WebEnabled() {
		if err := c.Web.Validate(); err != nil {
			return &ConfigError{Field: "web", Message: err.Error()}
		}
	}
	if c.KeyWait <= 0 {
		return &ConfigError{Field: "key_wait", Message: "key_wait must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
