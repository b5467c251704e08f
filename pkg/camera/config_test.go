package camera

import (
	"errors"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("DefaultConfig invalid: %v", errs)
	}
	if cfg.Device != "0" {
		t.Errorf("Device: got %q, want %q", cfg.Device, "0")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr int
	}{
		{"explicit resolution", Config{Device: "0", Width: 640, Height: 480, FPS: 30}, 0},
		{"video file", Config{Device: "clips/night-drive.mp4"}, 0},
		{"missing device", Config{}, 1},
		{"tiny width", Config{Device: "0", Width: 100}, 1},
		{"huge height", Config{Device: "0", Height: 9000}, 1},
		{"negative fps", Config{Device: "0", FPS: -1}, 1},
		{"everything wrong", Config{Width: 1, Height: 1, FPS: 500}, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.cfg.Validate()
			if len(errs) != tc.wantErr {
				t.Errorf("Validate: got %d errors (%v), want %d", len(errs), errs, tc.wantErr)
			}
		})
	}
}

func TestDeviceArg(t *testing.T) {
	if got, ok := deviceArg("2").(int); !ok || got != 2 {
		t.Errorf("deviceArg(\"2\"): got %#v, want int 2", deviceArg("2"))
	}
	if got, ok := deviceArg("rtsp://cam/stream").(string); !ok || got != "rtsp://cam/stream" {
		t.Errorf("deviceArg(url): got %#v", deviceArg("rtsp://cam/stream"))
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(Config{Device: "/nonexistent/clip.mp4"}, nil)
	if !errors.Is(err, ErrCameraUnavailable) {
		t.Errorf("expected ErrCameraUnavailable, got %v", err)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	if _, err := Open(Config{}, nil); err == nil {
		t.Error("expected error for empty device")
	}
}
