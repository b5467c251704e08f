// Package display renders the annotated frame and the eye close-up, and
// polls for the exit key.
package display

import (
	"time"

	"gocv.io/x/gocv"
)

// Key codes returned by PollKey.
const (
	KeyNone    = -1
	KeyNewline = 10
	KeyEnter   = 13
	KeySpace   = 32
)

// Default window titles.
const (
	MainWindow   = "Webcam"
	DetailWindow = "Eye"
)

// Renderer shows frames and reports key presses.
type Renderer interface {
	// Show draws the main view, and the detail view when detail is non-nil.
	Show(main gocv.Mat, detail *gocv.Mat)

	// PollKey waits up to wait for a key and returns its code, or KeyNone.
	PollKey(wait time.Duration) int

	Close() error
}

// IsExitKey reports whether key stops the loop: Enter or Space.
func IsExitKey(key int) bool {
	switch key {
	case KeyNewline, KeyEnter, KeySpace:
		return true
	default:
		return false
	}
}
