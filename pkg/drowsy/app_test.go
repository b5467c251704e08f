package drowsy

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/drowsy/pkg/alarm"
	"github.com/teslashibe/drowsy/pkg/detection"
	"github.com/teslashibe/drowsy/pkg/display"
	"github.com/teslashibe/drowsy/pkg/drowsiness"
	"github.com/teslashibe/drowsy/pkg/monitor"
	"github.com/teslashibe/drowsy/pkg/web"
	"gocv.io/x/gocv"
)

// endlessSource yields frames until limit is reached; zero means forever.
type endlessSource struct {
	limit int
	n     int
}

func (s *endlessSource) Next(frame *gocv.Mat) bool {
	if s.limit > 0 && s.n >= s.limit {
		return false
	}
	s.n++
	return true
}

type noFaceDetector struct{}

func (noFaceDetector) Detect(frame *gocv.Mat) drowsiness.Result { return drowsiness.NoFaceResult() }
func (noFaceDetector) Detail() (gocv.Mat, bool)                 { return gocv.Mat{}, false }

type silentAlarm struct{}

func (silentAlarm) Sound(ctx context.Context, now time.Time, idle time.Duration) (alarm.Event, error) {
	return alarm.Event{At: now, Idle: idle}, nil
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyWait = 0

	_, err := New(cfg, nil, nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "key_wait" {
		t.Errorf("expected key_wait ConfigError, got %v", err)
	}
}

func TestInit_MissingClassifierStopsBeforeCamera(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Detection.FaceModel = filepath.Join(dir, "face.xml")
	cfg.Detection.EyeModel = filepath.Join(dir, "eye.xml")
	cfg.Camera.Device = filepath.Join(dir, "no-such-camera.avi")

	app, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = app.Init(context.Background())
	if !errors.Is(err, detection.ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
	if app.source != nil {
		t.Error("camera must not be opened when a classifier fails to load")
	}
	if err := app.Shutdown(); err != nil {
		t.Errorf("Shutdown after failed Init: %v", err)
	}
}

// newWiredApp builds an App around fakes, skipping Init.
func newWiredApp(t *testing.T, src monitor.FrameSource, webAddr string) *App {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Headless = true
	cfg.Web.Addr = webAddr

	app, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.WebEnabled() {
		app.webServer, err = web.NewServer(cfg.Web, nil)
		if err != nil {
			t.Fatalf("NewServer: %v", err)
		}
	}
	app.renderer = display.NewHeadless(nil)

	opts := []monitor.Option{monitor.WithKeyWait(time.Millisecond)}
	if app.webServer != nil {
		opts = append(opts, monitor.WithStatusSink(app.webServer))
	}
	app.loop = monitor.New(src, noFaceDetector{}, app.renderer, silentAlarm{}, opts...)
	t.Cleanup(func() { app.Shutdown() })
	return app
}

func TestRun_EndOfStreamStopsDashboard(t *testing.T) {
	app := newWiredApp(t, &endlessSource{limit: 5}, "127.0.0.1:0")

	done := make(chan struct{})
	var (
		reason monitor.StopReason
		err    error
	)
	go func() {
		reason, err = app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the stream ended")
	}
	if err != nil {
		t.Errorf("Run: %v", err)
	}
	if reason != monitor.StopEndOfStream {
		t.Errorf("reason: got %v, want end_of_stream", reason)
	}
	if app.SessionID() == "" {
		t.Error("session ID should be set")
	}
}

func TestRun_CancelStopsLoop(t *testing.T) {
	app := newWiredApp(t, &endlessSource{}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reason, err := app.Run(ctx)
	if err != nil {
		t.Errorf("Run: %v", err)
	}
	if reason != monitor.StopCancelled {
		t.Errorf("reason: got %v, want cancelled", reason)
	}
}

func TestRun_DashboardFailureStopsLoop(t *testing.T) {
	app := newWiredApp(t, &endlessSource{}, "127.0.0.1:-1")

	reason, err := app.Run(context.Background())
	if err == nil {
		t.Error("expected listen error")
	}
	if reason != monitor.StopCancelled {
		t.Errorf("reason: got %v, want cancelled", reason)
	}
}
