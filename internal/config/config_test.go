package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCamera, "")
	if got := CameraDevice("0"); got != "0" {
		t.Errorf("CameraDevice default: got %q, want %q", got, "0")
	}

	t.Setenv(EnvCamera, "/dev/video2")
	if got := CameraDevice("0"); got != "/dev/video2" {
		t.Errorf("CameraDevice override: got %q", got)
	}

	t.Setenv(EnvFaceCascade, "models/face.xml")
	if got := FaceCascade(DefaultFaceCascade); got != "models/face.xml" {
		t.Errorf("FaceCascade override: got %q", got)
	}

	t.Setenv(EnvEyeCascade, "")
	if got := EyeCascade(DefaultEyeCascade); got != DefaultEyeCascade {
		t.Errorf("EyeCascade default: got %q", got)
	}
}

type sample struct {
	Camera struct {
		Device string `yaml:"device"`
	} `yaml:"camera"`
	Threshold time.Duration `yaml:"threshold"`
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drowsy.yaml")
	body := "camera:\n  device: \"1\"\nthreshold: 2500ms\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := LoadYAML(path, &s); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if s.Camera.Device != "1" {
		t.Errorf("device: got %q, want %q", s.Camera.Device, "1")
	}
	if s.Threshold != 2500*time.Millisecond {
		t.Errorf("threshold: got %v", s.Threshold)
	}
}

func TestLoadYAML_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("camra:\n  device: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := LoadYAML(path, &s); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadYAML_EmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s := sample{Threshold: 3 * time.Second}
	if err := LoadYAML(path, &s); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if s.Threshold != 3*time.Second {
		t.Errorf("threshold changed: %v", s.Threshold)
	}
}

func TestLoadYAML_MissingFile(t *testing.T) {
	var s sample
	if err := LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	// Register restores, then start from unset variables.
	t.Setenv(EnvCamera, "")
	t.Setenv(EnvWebAddr, "")
	os.Unsetenv(EnvCamera)
	os.Unsetenv(EnvWebAddr)
	t.Setenv(EnvLogLevel, "warn")

	path := filepath.Join(t.TempDir(), "drowsy.env")
	data := "DROWSY_CAMERA=/dev/video1\nDROWSY_WEB_ADDR=:9000\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := CameraDevice("0"); got != "/dev/video1" {
		t.Errorf("camera: got %q", got)
	}
	if got := WebAddr(""); got != ":9000" {
		t.Errorf("web addr: got %q", got)
	}
	if got := LogLevel("info"); got != "warn" {
		t.Errorf("existing variables must win, got %q", got)
	}
}

func TestLoadDotEnv_MissingFileIsSkipped(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be skipped, got %v", err)
	}
}
