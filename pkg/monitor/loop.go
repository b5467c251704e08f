// Package monitor runs the capture → detect → render → alert loop.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/drowsy/pkg/alarm"
	"github.com/teslashibe/drowsy/pkg/display"
	"github.com/teslashibe/drowsy/pkg/drowsiness"
	"gocv.io/x/gocv"
)

// DefaultKeyWait is the per-frame key poll, which also paces the loop.
const DefaultKeyWait = 10 * time.Millisecond

// FrameSource produces frames until the stream ends.
type FrameSource interface {
	Next(frame *gocv.Mat) bool
}

// Detector classifies a frame and keeps the eye close-up of the last Success.
type Detector interface {
	Detect(frame *gocv.Mat) drowsiness.Result
	Detail() (gocv.Mat, bool)
}

// Alarm sounds the alert.
type Alarm interface {
	Sound(ctx context.Context, now time.Time, idle time.Duration) (alarm.Event, error)
}

// StatusSink receives per-frame status and alert events (e.g. the dashboard).
type StatusSink interface {
	Publish(s Status)
	Alert(ev alarm.Event)
}

// StopReason says why Run returned.
type StopReason int

const (
	// StopEndOfStream means the source ran out of frames.
	StopEndOfStream StopReason = iota
	// StopKey means Enter or Space was pressed.
	StopKey
	// StopCancelled means the context was cancelled.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfStream:
		return "end_of_stream"
	case StopKey:
		return "key"
	case StopCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("stop(%d)", int(r))
	}
}

// Status is the snapshot published after every frame.
type Status struct {
	SessionID string              `json:"session_id"`
	At        time.Time           `json:"at"`
	Outcome   string              `json:"outcome"`
	Face      *drowsiness.Region  `json:"face,omitempty"`
	Eyes      []drowsiness.Region `json:"eyes,omitempty"`
	Idle      float64             `json:"idle_seconds"`
	Alerting  bool                `json:"alerting"`
	Stats     Stats               `json:"stats"`
}

// Stats counts what the loop has seen.
type Stats struct {
	Frames      int64 `json:"frames"`
	NoFace      int64 `json:"no_face"`
	NoEyes      int64 `json:"no_eyes"`
	Success     int64 `json:"success"`
	Alerts      int64 `json:"alerts"`
	AlarmErrors int64 `json:"alarm_errors"`
}

func (s *Stats) record(o drowsiness.Outcome) {
	s.Frames++
	switch o {
	case drowsiness.NoFace:
		s.NoFace++
	case drowsiness.NoEyes:
		s.NoEyes++
	case drowsiness.Success:
		s.Success++
	}
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(l *Loop) { l.clock = clock }
}

// WithStatusSink adds a status receiver.
func WithStatusSink(sink StatusSink) Option {
	return func(l *Loop) { l.status = append(l.status, sink) }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithTimerConfig sets the alert policy.
func WithTimerConfig(cfg drowsiness.Config) Option {
	return func(l *Loop) { l.timerCfg = cfg }
}

// WithKeyWait sets how long each iteration polls for a key. It is the only
// frame pacing.
func WithKeyWait(d time.Duration) Option {
	return func(l *Loop) { l.keyWait = d }
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(l *Loop) { l.sessionID = id }
}

// Loop is single-threaded: Run and Step must not be called concurrently.
type Loop struct {
	source   FrameSource
	detector Detector
	renderer display.Renderer
	alarm    Alarm
	status   []StatusSink

	clock     func() time.Time
	logger    *slog.Logger
	keyWait   time.Duration
	timerCfg  drowsiness.Config
	sessionID string

	timer *drowsiness.Timer
	frame gocv.Mat
	stats Stats
}

// New builds a loop. The drowsiness timer starts now, so the first
// threshold window counts from startup.
func New(source FrameSource, detector Detector, renderer display.Renderer, alarm Alarm, opts ...Option) *Loop {
	l := &Loop{
		source:   source,
		detector: detector,
		renderer: renderer,
		alarm:    alarm,
		clock:    time.Now,
		logger:   slog.Default(),
		keyWait:  DefaultKeyWait,
		timerCfg: drowsiness.DefaultConfig(),
		frame:    gocv.NewMat(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sessionID == "" {
		l.sessionID = uuid.NewString()
	}
	l.logger = l.logger.With("session", l.sessionID)
	l.timer = drowsiness.NewTimer(l.clock(), l.timerCfg)
	return l
}

// Run processes frames until the stream ends, an exit key is pressed or ctx
// is cancelled. Cancellation is only observed between frames.
func (l *Loop) Run(ctx context.Context) StopReason {
	l.logger.Info("monitoring started",
		"threshold", l.timerCfg.Threshold,
		"reset_on_alert", l.timerCfg.ResetOnAlert,
		"key_wait", l.keyWait,
	)

	reason := StopCancelled
	for ctx.Err() == nil {
		if r, running := l.Step(ctx); !running {
			reason = r
			break
		}
	}

	s := l.stats
	l.logger.Info("monitoring stopped",
		"reason", reason,
		"frames", s.Frames,
		"success", s.Success,
		"no_eyes", s.NoEyes,
		"no_face", s.NoFace,
		"alerts", s.Alerts,
	)
	return reason
}

// Step runs one iteration. It returns false with the reason when the loop
// should stop.
func (l *Loop) Step(ctx context.Context) (StopReason, bool) {
	if !l.source.Next(&l.frame) {
		return StopEndOfStream, false
	}

	result := l.detector.Detect(&l.frame)

	var detail *gocv.Mat
	if result.Outcome == drowsiness.Success {
		if m, ok := l.detector.Detail(); ok {
			detail = &m
		}
	}
	l.renderer.Show(l.frame, detail)

	now := l.clock()
	decision := l.timer.OnResult(result, now)
	l.stats.record(result.Outcome)

	if decision == drowsiness.Sound {
		l.soundAlarm(ctx, now)
	}
	l.publish(result, now, decision)

	if key := l.renderer.PollKey(l.keyWait); display.IsExitKey(key) {
		l.logger.Info("exit key pressed", "key", key)
		return StopKey, false
	}
	return 0, true
}

func (l *Loop) soundAlarm(ctx context.Context, now time.Time) {
	l.stats.Alerts++
	ev, err := l.alarm.Sound(ctx, now, l.timer.Idle(now))
	if err != nil {
		l.stats.AlarmErrors++
		l.logger.Warn("alarm failed", "error", err)
	}
	for _, s := range l.status {
		s.Alert(ev)
	}
}

func (l *Loop) publish(result drowsiness.Result, now time.Time, decision drowsiness.Decision) {
	if len(l.status) == 0 {
		return
	}

	st := Status{
		SessionID: l.sessionID,
		At:        now,
		Outcome:   result.Outcome.String(),
		Eyes:      result.Eyes,
		Idle:      l.timer.Idle(now).Seconds(),
		Alerting:  decision == drowsiness.Sound,
		Stats:     l.stats,
	}
	if result.FaceFound() {
		face := result.Face
		st.Face = &face
	}
	for _, s := range l.status {
		s.Publish(st)
	}
}

// Stats returns the counters so far.
func (l *Loop) Stats() Stats {
	return l.stats
}

// SessionID identifies this run in logs and on the dashboard.
func (l *Loop) SessionID() string {
	return l.sessionID
}

// Close frees the loop's frame buffer. It does not close injected components.
func (l *Loop) Close() error {
	return l.frame.Close()
}
