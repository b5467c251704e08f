// Package config provides configuration helpers for drowsy commands:
// environment overrides and an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the drowsy command.
const (
	EnvCamera      = "DROWSY_CAMERA"
	EnvFaceCascade = "DROWSY_FACE_CASCADE"
	EnvEyeCascade  = "DROWSY_EYE_CASCADE"
	EnvWebAddr     = "DROWSY_WEB_ADDR"
	EnvLogFile     = "DROWSY_LOG_FILE"
	EnvLogLevel    = "LOG_LEVEL"
)

// Default model files, resolved relative to the working directory.
const (
	DefaultFaceCascade = "haarcascade_frontalface_alt.xml"
	DefaultEyeCascade  = "haarcascade_eye_tree_eyeglasses.xml"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// CameraDevice returns the capture device from DROWSY_CAMERA.
// Falls back to the provided default if not set.
func CameraDevice(def string) string {
	return envOr(EnvCamera, def)
}

// FaceCascade returns the face model path from DROWSY_FACE_CASCADE or def.
func FaceCascade(def string) string {
	return envOr(EnvFaceCascade, def)
}

// EyeCascade returns the eye model path from DROWSY_EYE_CASCADE or def.
func EyeCascade(def string) string {
	return envOr(EnvEyeCascade, def)
}

// WebAddr returns the dashboard listen address from DROWSY_WEB_ADDR or def.
// An empty result disables the dashboard.
func WebAddr(def string) string {
	return envOr(EnvWebAddr, def)
}

// LogFile returns the rotating log file path from DROWSY_LOG_FILE or def.
// An empty result logs to stdout only.
func LogFile(def string) string {
	return envOr(EnvLogFile, def)
}

// LogLevel returns LOG_LEVEL or def.
func LogLevel(def string) string {
	return envOr(EnvLogLevel, def)
}

// LoadYAML decodes the file at path into out. Unknown keys are rejected so
// typos in the file surface at startup.
func LoadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		// An empty file decodes to io.EOF; keep the defaults.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// DefaultDotEnv is the dotenv file read when LoadDotEnv gets no path.
const DefaultDotEnv = ".env"

// LoadDotEnv loads KEY=value lines from the given files (default .env) into
// the environment. Variables already set are left alone and missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnv}
	}

	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
