// Package alarm sounds the wake-up tone through an audio sink.
package alarm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/drowsy/pkg/audioio"
)

// Config holds the tone settings.
type Config struct {
	Frequency float64       `yaml:"frequency" json:"frequency"` // Hz
	Duration  time.Duration `yaml:"duration" json:"duration"`
	Volume    float64       `yaml:"volume" json:"volume"` // 0-1
}

// DefaultConfig returns a 900 Hz, half-second beep.
func DefaultConfig() Config {
	return Config{
		Frequency: 900,
		Duration:  500 * time.Millisecond,
		Volume:    0.8,
	}
}

// Validate checks the tone settings.
func (c *Config) Validate() error {
	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %v", c.Frequency)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %v", c.Volume)
	}
	return nil
}

// Event describes one alert that was sounded.
type Event struct {
	ID   string        `json:"id"`
	At   time.Time     `json:"at"`
	Idle time.Duration `json:"idle"` // Time since eyes were last confirmed
}

// Alarm plays a fixed tone each time Sound is called.
type Alarm struct {
	cfg    Config
	sink   audioio.Sink
	logger *slog.Logger
	tone   []audioio.AudioChunk
}

// New renders the tone once and starts the sink.
func New(ctx context.Context, cfg Config, sink audioio.Sink, logger *slog.Logger) (*Alarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid alarm config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := sink.Start(ctx); err != nil {
		return nil, fmt.Errorf("start audio sink: %w", err)
	}

	return &Alarm{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		tone:   audioio.Tone(cfg.Frequency, cfg.Duration, cfg.Volume, sink.Config()),
	}, nil
}

// Sound plays the tone and blocks until the sink has played it.
// The returned event is filled in even when playback fails.
func (a *Alarm) Sound(ctx context.Context, now time.Time, idle time.Duration) (Event, error) {
	ev := Event{ID: uuid.NewString(), At: now, Idle: idle}

	a.logger.Warn("asleep", "alert_id", ev.ID, "idle", idle.Round(time.Millisecond))

	for _, chunk := range a.tone {
		if err := a.sink.Write(ctx, chunk); err != nil {
			return ev, fmt.Errorf("write tone: %w", err)
		}
	}
	if err := a.sink.Flush(ctx); err != nil {
		return ev, fmt.Errorf("flush tone: %w", err)
	}
	return ev, nil
}

// Config returns the tone settings.
func (a *Alarm) Config() Config {
	return a.cfg
}

// Close releases the sink.
func (a *Alarm) Close() error {
	return a.sink.Close()
}
