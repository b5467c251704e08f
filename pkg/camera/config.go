// Package camera opens the capture device that feeds the detection loop.
package camera

import "fmt"

// Config holds capture settings.
type Config struct {
	// Device is a device index ("0") or a video file / stream URL.
	Device string `yaml:"device" json:"device"`

	// === Resolution ===
	// Zero leaves the driver default in place.
	Width  int `yaml:"width" json:"width"`   // Frame width in pixels
	Height int `yaml:"height" json:"height"` // Frame height in pixels
	FPS    int `yaml:"fps" json:"fps"`       // Requested frame rate
}

// Capture limits accepted by Validate.
const (
	MaxWidth  = 4096
	MaxHeight = 2160
	MaxFPS    = 120
)

// DefaultConfig returns the first webcam at its native resolution.
func DefaultConfig() Config {
	return Config{
		Device: "0",
		Width:  0,
		Height: 0,
		FPS:    0,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device is required")
	}
	if c.Width != 0 && (c.Width < 160 || c.Width > MaxWidth) {
		errors = append(errors, fmt.Sprintf("width must be 0 (driver default) or between 160 and %d", MaxWidth))
	}
	if c.Height != 0 && (c.Height < 120 || c.Height > MaxHeight) {
		errors = append(errors, fmt.Sprintf("height must be 0 (driver default) or between 120 and %d", MaxHeight))
	}
	if c.FPS < 0 || c.FPS > MaxFPS {
		errors = append(errors, fmt.Sprintf("fps must be between 0 and %d", MaxFPS))
	}

	return errors
}
