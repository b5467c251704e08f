// Package web provides a real-time dashboard for the drowsiness monitor
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/drowsy/pkg/alarm"
	"github.com/teslashibe/drowsy/pkg/display"
	"github.com/teslashibe/drowsy/pkg/hub"
	"github.com/teslashibe/drowsy/pkg/monitor"
	"gocv.io/x/gocv"
)

//go:embed static
var staticFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server is the web dashboard server. It receives loop status as a
// monitor.StatusSink and annotated frames as a display.Renderer.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *slog.Logger

	// Latest status
	status    monitor.Status
	hasStatus bool
	statusMu  sync.RWMutex

	// Recent alerts, oldest first
	alerts   []alarm.Event
	alertsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	alertHub  *hub.Hub
	cameraHub *hub.Hub

	// Camera feed throttle; only touched from Show
	lastFrame time.Time
	now       func() time.Time

	framesSent    atomic.Int64
	stopRequested atomic.Bool
}

// NewServer creates a new web dashboard server
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid web config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web")

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		alerts:    make([]alarm.Event, 0, cfg.MaxAlerts),
		statusHub: hub.New("status", logger),
		alertHub:  hub.New("alerts", logger),
		cameraHub: hub.New("camera", logger),
		now:       time.Now,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Drowsy Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/status", s.handleStatus)
	api.Get("/alerts", s.handleAlerts)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	// Dashboard page
	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	s.app = app
	return s, nil
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and serves on ln until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("web dashboard started", "url", "http://"+ln.Addr().String())

	go s.statusHub.Run(ctx)
	go s.alertHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("web shutdown: %w", err)
	}
	s.logger.Info("web dashboard stopped")
	return nil
}

// Publish stores the latest loop status and broadcasts it.
func (s *Server) Publish(st monitor.Status) {
	s.statusMu.Lock()
	s.status = st
	s.hasStatus = true
	s.statusMu.Unlock()

	if err := s.statusHub.BroadcastJSON(st); err != nil {
		s.logger.Warn("encode status", "error", err)
	}
}

// Alert records an alert event and broadcasts it.
func (s *Server) Alert(ev alarm.Event) {
	s.alertsMu.Lock()
	s.alerts = append(s.alerts, ev)
	if len(s.alerts) > s.cfg.MaxAlerts {
		s.alerts = s.alerts[1:]
	}
	s.alertsMu.Unlock()

	if err := s.alertHub.BroadcastJSON(ev); err != nil {
		s.logger.Warn("encode alert", "error", err)
	}
}

// Show encodes the annotated frame as JPEG for camera clients. Frames are
// skipped while nobody watches or the throttle interval has not elapsed.
func (s *Server) Show(main gocv.Mat, detail *gocv.Mat) {
	if main.Empty() || s.cameraHub.ClientCount() == 0 {
		return
	}
	now := s.now()
	if !s.lastFrame.IsZero() && now.Sub(s.lastFrame) < s.cfg.FrameInterval {
		return
	}
	s.lastFrame = now

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, main, []int{gocv.IMWriteJpegQuality, s.cfg.JPEGQuality})
	if err != nil {
		s.logger.Warn("encode frame", "error", err)
		return
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	s.cameraHub.BroadcastBinary(data)
	s.framesSent.Add(1)
}

// PollKey reports Enter once after a stop was requested from the dashboard.
func (s *Server) PollKey(wait time.Duration) int {
	if s.stopRequested.CompareAndSwap(true, false) {
		return display.KeyEnter
	}
	if wait > 0 {
		time.Sleep(wait)
	}
	return display.KeyNone
}

// Close is a no-op; the server stops with the context passed to Serve.
func (s *Server) Close() error {
	return nil
}

// FramesSent returns how many camera frames were broadcast.
func (s *Server) FramesSent() int64 {
	return s.framesSent.Load()
}

// App exposes the fiber app for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) latestStatus() (monitor.Status, bool) {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status, s.hasStatus
}

func (s *Server) recentAlerts(limit int) []alarm.Event {
	s.alertsMu.RLock()
	defer s.alertsMu.RUnlock()

	start := 0
	if limit > 0 && limit < len(s.alerts) {
		start = len(s.alerts) - limit
	}
	out := make([]alarm.Event, len(s.alerts)-start)
	copy(out, s.alerts[start:])
	return out
}
