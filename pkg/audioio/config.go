// Package audioio provides audio playback for the drowsiness alarm.
//
// This package supports multiple backends:
//   - exec - pipes PCM16 to a command-line player (aplay on Linux, sox play elsewhere)
//   - bell - writes the terminal bell character; no audio device needed
//   - mock - CI/Testing without hardware
//
// The backend is selected automatically based on the platform,
// or can be explicitly specified via configuration.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto selects exec when a player is installed, bell otherwise.
	BackendAuto Backend = "auto"
	// BackendExec pipes raw PCM to an external player process.
	BackendExec Backend = "exec"
	// BackendBell rings the terminal bell instead of playing samples.
	BackendBell Backend = "bell"
	// BackendMock uses a mock implementation for testing.
	BackendMock Backend = "mock"
)

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto"
	Backend Backend `yaml:"backend" json:"backend"`

	// SampleRate is the audio sample rate in Hz.
	// Default: 22050
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`

	// Channels is the number of audio channels.
	// Default: 1 (mono)
	Channels int `yaml:"channels" json:"channels"`

	// BufferDuration is the size of audio buffers.
	// Default: 20ms
	BufferDuration time.Duration `yaml:"buffer_duration" json:"buffer_duration"`

	// Device is the platform-specific device identifier passed to the player.
	// Examples:
	//   - exec/aplay: "default", "plughw:1,0"
	//   - bell, mock: ignored
	Device string `yaml:"device" json:"device"`

	// Command overrides the player program for the exec backend.
	// Empty selects aplay or play based on the platform.
	Command []string `yaml:"command" json:"command"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     22050,
		Channels:       1, // Mono
		BufferDuration: 20 * time.Millisecond,
		Device:         "", // Use system default
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	switch c.Backend {
	case "", BackendAuto, BackendExec, BackendBell, BackendMock:
	default:
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}
	return nil
}

// BufferSize returns the number of samples per buffer.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}

// BufferBytes returns the size of a buffer in bytes (assuming int16 samples).
func (c *Config) BufferBytes() int {
	return c.BufferSize() * c.Channels * 2 // 2 bytes per int16 sample
}
