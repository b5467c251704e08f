package drowsy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/drowsy/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	if cfg.Camera.Device != "0" {
		t.Errorf("camera device: got %q, want %q", cfg.Camera.Device, "0")
	}
	if cfg.Timer.Threshold != 3*time.Second || cfg.Timer.ResetOnAlert {
		t.Errorf("timer: got %+v", cfg.Timer)
	}
	if cfg.KeyWait != 10*time.Millisecond {
		t.Errorf("key wait: got %v", cfg.KeyWait)
	}
	if cfg.Headless || cfg.WebEnabled() {
		t.Error("windows on, dashboard off by default")
	}
}

func TestConfig_ValidateReportsField(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*Config)
	}{
		{"camera", "camera", func(c *Config) { c.Camera.Device = "" }},
		{"detection", "detection", func(c *Config) { c.Detection.FaceModel = "" }},
		{"timer", "timer", func(c *Config) { c.Timer.Threshold = -time.Second }},
		{"alarm", "alarm", func(c *Config) { c.Alarm.Frequency = 0 }},
		{"audio", "audio", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"web", "web", func(c *Config) { c.Web.Addr = ":8080"; c.Web.JPEGQuality = 0 }},
		{"key wait", "key_wait", func(c *Config) { c.KeyWait = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("field: got %q, want %q", cfgErr.Field, tc.field)
			}
		})
	}
}

func TestConfig_DisabledWebIsNotValidated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Web.JPEGQuality = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("dashboard is off, got %v", err)
	}
}

func TestConfig_LoadEnvConfig(t *testing.T) {
	t.Setenv(config.EnvCamera, "/dev/video2")
	t.Setenv(config.EnvFaceCascade, "/models/face.xml")
	t.Setenv(config.EnvEyeCascade, "")
	t.Setenv(config.EnvWebAddr, ":9090")
	t.Setenv(config.EnvLogLevel, "debug")

	cfg := DefaultConfig()
	cfg.LoadEnvConfig()

	if cfg.Camera.Device != "/dev/video2" {
		t.Errorf("camera: got %q", cfg.Camera.Device)
	}
	if cfg.Detection.FaceModel != "/models/face.xml" {
		t.Errorf("face model: got %q", cfg.Detection.FaceModel)
	}
	if cfg.Detection.EyeModel != config.DefaultEyeCascade {
		t.Errorf("eye model should keep its default, got %q", cfg.Detection.EyeModel)
	}
	if !cfg.WebEnabled() || cfg.Web.Addr != ":9090" {
		t.Errorf("web: got %q", cfg.Web.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
}

func TestConfig_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drowsy.yaml")
	data := `
camera:
  device: "1"
  width: 640
  height: 480
timer:
  threshold: 2s
  reset_on_alert: true
alarm:
  frequency: 1200
web:
  addr: "127.0.0.1:8081"
headless: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := config.LoadYAML(path, &cfg); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Camera.Device != "1" || cfg.Camera.Width != 640 {
		t.Errorf("camera: %+v", cfg.Camera)
	}
	if cfg.Timer.Threshold != 2*time.Second || !cfg.Timer.ResetOnAlert {
		t.Errorf("timer: %+v", cfg.Timer)
	}
	if cfg.Alarm.Frequency != 1200 || cfg.Alarm.Duration != 500*time.Millisecond {
		t.Errorf("alarm: %+v", cfg.Alarm)
	}
	if cfg.Web.Addr != "127.0.0.1:8081" || cfg.Web.JPEGQuality != 70 {
		t.Errorf("web: %+v", cfg.Web)
	}
	if !cfg.Headless || cfg.Detection.Face.ScaleFactor != 1.1 {
		t.Error("untouched sections should keep their defaults")
	}
}
