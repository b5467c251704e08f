package drowsiness

import (
	"fmt"
	"time"
)

// DefaultThreshold is how long eyes may go unconfirmed before the alert fires.
const DefaultThreshold = 3 * time.Second

// Decision is what the caller should do after a frame.
type Decision int

const (
	// None means keep going.
	None Decision = iota
	// Sound means raise the audible alert for this frame.
	Sound
)

func (d Decision) String() string {
	if d == Sound {
		return "sound"
	}
	return "none"
}

// Config holds the alert policy.
type Config struct {
	// Threshold is the minimum time since the last Success before a NoEyes
	// frame raises the alert.
	Threshold time.Duration `yaml:"threshold" json:"threshold"`

	// ResetOnAlert moves the awake timestamp forward when the alert fires,
	// so it sounds at most once per Threshold. When false, every NoEyes frame
	// past the threshold sounds.
	ResetOnAlert bool `yaml:"reset_on_alert" json:"reset_on_alert"`
}

// DefaultConfig returns the repeating 3 second policy.
func DefaultConfig() Config {
	return Config{
		Threshold:    DefaultThreshold,
		ResetOnAlert: false,
	}
}

// Validate checks the policy.
func (c *Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %v", c.Threshold)
	}
	return nil
}

// Timer tracks when eyes were last confirmed open.
// It is owned by a single loop and is not safe for concurrent use.
type Timer struct {
	cfg       Config
	lastAwake time.Time
}

// NewTimer starts the timer at start, which counts as the last awake moment.
func NewTimer(start time.Time, cfg Config) *Timer {
	return &Timer{cfg: cfg, lastAwake: start}
}

// OnResult feeds one frame's result observed at now and returns the decision.
func (t *Timer) OnResult(r Result, now time.Time) Decision {
	switch r.Outcome {
	case Success:
		t.advance(now)
		return None
	case NoEyes:
		if t.Idle(now) < t.cfg.Threshold {
			return None
		}
		if t.cfg.ResetOnAlert {
			t.advance(now)
		}
		return Sound
	default:
		// A missing face is treated as looking away, not as drowsiness.
		return None
	}
}

// advance only ever moves lastAwake forward.
func (t *Timer) advance(now time.Time) {
	if now.After(t.lastAwake) {
		t.lastAwake = now
	}
}

// LastAwake returns when eyes were last confirmed.
func (t *Timer) LastAwake() time.Time {
	return t.lastAwake
}

// Idle returns the time elapsed since eyes were last confirmed.
func (t *Timer) Idle(now time.Time) time.Duration {
	return now.Sub(t.lastAwake)
}

// Config returns the alert policy.
func (t *Timer) Config() Config {
	return t.cfg
}
