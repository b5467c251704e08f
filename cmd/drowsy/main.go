// drowsy - webcam drowsiness alert
// Watches the driver's eyes and sounds an alarm when they stay unconfirmed
// for longer than the threshold. Enter or Space exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/teslashibe/drowsy/internal/config"
	"github.com/teslashibe/drowsy/internal/log"
	"github.com/teslashibe/drowsy/pkg/audioio"
	"github.com/teslashibe/drowsy/pkg/drowsy"
)

// exitFailure is returned for startup and runtime failures.
const exitFailure = -1

func init() {
	// HighGUI windows must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fail("Configuration error", err)
	}

	var logFiles []io.Writer
	if cfg.LogFile != "" {
		lf := log.RotatingFile(cfg.LogFile)
		defer lf.Close()
		logFiles = append(logFiles, lf)
	}
	logger := log.Init(cfg.LogLevel, logFiles...)

	app, err := drowsy.New(cfg, logger, os.Stdin)
	if err != nil {
		fail("Configuration error", err)
	}

	fmt.Println("😴 drowsy - webcam drowsiness alert")
	fmt.Println("===================================")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		app.Shutdown()
		fail("Initialization failed", err)
	}

	if cfg.WebEnabled() {
		fmt.Printf("🌐 Dashboard: http://%s\n", cfg.Web.Addr)
	}
	if cfg.Headless {
		fmt.Println("👀 Watching... (Enter to exit)")
	} else {
		fmt.Println("👀 Watching... (Enter or Space in the preview window to exit)")
	}

	reason, err := app.Run(ctx)
	if shutdownErr := app.Shutdown(); shutdownErr != nil {
		log.Warn("shutdown", "error", shutdownErr)
	}
	if err != nil {
		fail("Runtime error", err)
	}

	log.Info("exiting", "reason", reason, "session", app.SessionID())
	fmt.Println("👋 Goodbye!")
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", what, err)
	os.Exit(exitFailure)
}

// parseFlags builds the configuration: defaults, then the optional YAML file,
// then environment variables (including .env), then any flags given explicitly.
func parseFlags() (drowsy.Config, error) {
	cfg := drowsy.DefaultConfig()

	configPath := flag.String("config", "", "YAML config file")
	camera := flag.String("camera", cfg.Camera.Device, "Camera index or video file/URL (DROWSY_CAMERA)")
	faceCascade := flag.String("face-cascade", cfg.Detection.FaceModel, "Face Haar cascade XML (DROWSY_FACE_CASCADE)")
	eyeCascade := flag.String("eye-cascade", cfg.Detection.EyeModel, "Eye Haar cascade XML (DROWSY_EYE_CASCADE)")
	threshold := flag.Duration("threshold", cfg.Timer.Threshold, "How long eyes may go unseen before the alarm")
	resetOnAlert := flag.Bool("reset-on-alert", cfg.Timer.ResetOnAlert, "Sound at most once per threshold instead of every frame")
	headless := flag.Bool("headless", false, "Disable preview windows; Enter on stdin exits")
	webAddr := flag.String("web", "", "Serve the dashboard on this address, e.g. :8080 (DROWSY_WEB_ADDR)")
	alarmBackend := flag.String("alarm", string(cfg.Audio.Backend), "Alarm output: auto, exec, bell, mock")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	debugFrames := flag.Bool("debug-frames", false, "Log every detection (very verbose)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error (LOG_LEVEL)")
	logFile := flag.String("log-file", "", "Also write logs to this rotating file (DROWSY_LOG_FILE)")
	envFile := flag.String("env-file", config.DefaultDotEnv, "dotenv file with DROWSY_* variables")
	flag.Parse()

	if *configPath != "" {
		if err := config.LoadYAML(*configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := config.LoadDotEnv(*envFile); err != nil {
		return cfg, err
	}
	cfg.LoadEnvConfig()

	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.Camera.Device = *camera
		case "face-cascade":
			cfg.Detection.FaceModel = *faceCascade
		case "eye-cascade":
			cfg.Detection.EyeModel = *eyeCascade
		case "threshold":
			cfg.Timer.Threshold = *threshold
		case "reset-on-alert":
			cfg.Timer.ResetOnAlert = *resetOnAlert
		case "headless":
			cfg.Headless = *headless
		case "web":
			cfg.Web.Addr = *webAddr
		case "alarm":
			cfg.Audio.Backend = audioio.Backend(*alarmBackend)
		case "debug":
			cfg.Debug = *debugFlag
			if cfg.Debug && !isSet("log-level") {
				cfg.LogLevel = "debug"
			}
		case "debug-frames":
			cfg.DebugFrames = *debugFrames
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	return cfg, nil
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) { set = set || f.Name == name })
	return set
}
