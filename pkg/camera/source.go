package camera

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gocv.io/x/gocv"
)

// ErrCameraUnavailable is returned when the capture device cannot be opened.
var ErrCameraUnavailable = errors.New("camera unavailable")

// Source reads frames from a webcam or video file.
type Source struct {
	cfg     Config
	capture *gocv.VideoCapture
	logger  *slog.Logger
}

// Open opens the configured device. A device that cannot be opened is a
// startup failure; there is no retry.
func Open(cfg Config, logger *slog.Logger) (*Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	capture, err := gocv.OpenVideoCapture(deviceArg(cfg.Device))
	if err != nil {
		return nil, fmt.Errorf("%w: device %s: %v", ErrCameraUnavailable, cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %s", ErrCameraUnavailable, cfg.Device)
	}

	if cfg.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.FPS > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))
	}

	logger.Info("camera opened",
		"device", cfg.Device,
		"width", capture.Get(gocv.VideoCaptureFrameWidth),
		"height", capture.Get(gocv.VideoCaptureFrameHeight),
		"fps", capture.Get(gocv.VideoCaptureFPS),
	)

	return &Source{cfg: cfg, capture: capture, logger: logger}, nil
}

// deviceArg turns "0" into a device index and leaves paths/URLs alone.
func deviceArg(device string) interface{} {
	if id, err := strconv.Atoi(device); err == nil {
		return id
	}
	return device
}

// Next reads the next frame into frame. It returns false when no frame is
// available, which ends the stream.
func (s *Source) Next(frame *gocv.Mat) bool {
	if ok := s.capture.Read(frame); !ok {
		return false
	}
	return !frame.Empty()
}

// Config returns the capture settings.
func (s *Source) Config() Config {
	return s.cfg
}

// Close releases the device.
func (s *Source) Close() error {
	return s.capture.Close()
}
