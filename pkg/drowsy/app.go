package drowsy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/teslashibe/drowsy/pkg/alarm"
	"github.com/teslashibe/drowsy/pkg/audioio"
	"github.com/teslashibe/drowsy/pkg/camera"
	"github.com/teslashibe/drowsy/pkg/debug"
	"github.com/teslashibe/drowsy/pkg/detection"
	"github.com/teslashibe/drowsy/pkg/display"
	"github.com/teslashibe/drowsy/pkg/monitor"
	"github.com/teslashibe/drowsy/pkg/web"
	"golang.org/x/sync/errgroup"
)

// App is the drowsiness monitor process.
type App struct {
	config Config
	logger *slog.Logger

	// Input read by the headless renderer for the exit key
	stdin io.Reader

	// Vision
	source   *camera.Source
	detector *detection.FaceEyeDetector

	// Alert
	sink  audioio.Sink
	alarm *alarm.Alarm

	// Output
	renderer  display.Renderer
	webServer *web.Server

	loop *monitor.Loop
}

// New creates the application with the given configuration.
func New(cfg Config, logger *slog.Logger, stdin io.Reader) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	debug.Enabled = cfg.Debug
	debug.Frames = cfg.DebugFrames

	return &App{
		config: cfg,
		logger: logger,
		stdin:  stdin,
	}, nil
}

// Init loads the classifiers, opens the camera and builds the alarm and
// renderers. Call this after New() and before Run(). On error, Shutdown
// releases whatever was opened.
func (a *App) Init(ctx context.Context) error {
	var err error

	// Models first: a missing cascade should fail before the camera turns on.
	a.detector, err = detection.Open(a.config.Detection)
	if err != nil {
		return fmt.Errorf("classifier init: %w", err)
	}
	a.logger.Info("classifiers loaded",
		"face", a.config.Detection.FaceModel,
		"eye", a.config.Detection.EyeModel,
	)

	a.source, err = camera.Open(a.config.Camera, a.logger)
	if err != nil {
		return fmt.Errorf("camera init: %w", err)
	}

	a.sink, err = audioio.NewSink(a.config.Audio, a.logger)
	if err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	a.alarm, err = alarm.New(ctx, a.config.Alarm, a.sink, a.logger)
	if err != nil {
		return fmt.Errorf("alarm init: %w", err)
	}

	if err := a.initRenderers(); err != nil {
		return err
	}

	a.initLoop()
	return nil
}

func (a *App) initRenderers() error {
	var renderers display.Multi
	if a.config.Headless {
		renderers = append(renderers, display.NewHeadless(a.stdin))
	} else {
		renderers = append(renderers, display.NewWindows(display.MainWindow, display.DetailWindow))
	}

	if a.config.WebEnabled() {
		srv, err := web.NewServer(a.config.Web, a.logger)
		if err != nil {
			return fmt.Errorf("web init: %w", err)
		}
		a.webServer = srv
		renderers = append(renderers, srv)
	}

	debug.Log("🖼️  %d renderer(s), headless=%v, web=%v\n", len(renderers), a.config.Headless, a.webServer != nil)
	if len(renderers) == 1 {
		a.renderer = renderers[0]
	} else {
		a.renderer = renderers
	}
	return nil
}

func (a *App) initLoop() {
	opts := []monitor.Option{
		monitor.WithLogger(a.logger),
		monitor.WithTimerConfig(a.config.Timer),
		monitor.WithKeyWait(a.config.KeyWait),
	}
	if a.webServer != nil {
		opts = append(opts, monitor.WithStatusSink(a.webServer))
	}
	a.loop = monitor.New(a.source, a.detector, a.renderer, a.alarm, opts...)
}

// Run monitors until the stream ends, an exit key is pressed or ctx is
// cancelled. The loop runs on the calling goroutine so preview windows stay
// on the main thread; the dashboard runs alongside and stops with the loop.
func (a *App) Run(ctx context.Context) (monitor.StopReason, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.webServer != nil {
		g.Go(func() error {
			return a.webServer.Run(gctx)
		})
	}

	reason := a.loop.Run(gctx)
	cancel()

	if err := g.Wait(); err != nil {
		return reason, err
	}
	return reason, nil
}

// SessionID identifies this run in logs and on the dashboard.
func (a *App) SessionID() string {
	if a.loop == nil {
		return ""
	}
	return a.loop.SessionID()
}

// Shutdown releases every component that was opened.
func (a *App) Shutdown() error {
	var errs []error
	if a.loop != nil {
		errs = append(errs, a.loop.Close())
	}
	if a.renderer != nil {
		errs = append(errs, a.renderer.Close())
	}
	if a.alarm != nil {
		errs = append(errs, a.alarm.Close())
	} else if a.sink != nil {
		errs = append(errs, a.sink.Close())
	}
	if a.source != nil {
		errs = append(errs, a.source.Close())
	}
	if a.detector != nil {
		errs = append(errs, a.detector.Close())
	}
	return errors.Join(errs...)
}
