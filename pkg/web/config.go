package web

import (
	"fmt"
	"time"
)

// Config holds dashboard settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// FrameInterval throttles the camera feed. Zero sends every frame.
	FrameInterval time.Duration `yaml:"frame_interval"`

	// JPEGQuality is 1-100.
	JPEGQuality int `yaml:"jpeg_quality"`

	// MaxAlerts is how many alert events are kept for /api/alerts.
	MaxAlerts int `yaml:"max_alerts"`
}

// DefaultConfig returns a 5 fps preview on :8080.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		FrameInterval: 200 * time.Millisecond,
		JPEGQuality:   70,
		MaxAlerts:     100,
	}
}

// Validate checks the dashboard settings.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("frame_interval must not be negative, got %v", c.FrameInterval)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.MaxAlerts <= 0 {
		return fmt.Errorf("max_alerts must be positive, got %d", c.MaxAlerts)
	}
	return nil
}
