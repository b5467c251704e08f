package display

import (
	"time"

	"gocv.io/x/gocv"
)

// Windows shows the two views in OpenCV highgui windows.
type Windows struct {
	main   *gocv.Window
	detail *gocv.Window
}

// NewWindows opens the main and detail windows.
func NewWindows(mainTitle, detailTitle string) *Windows {
	return &Windows{
		main:   gocv.NewWindow(mainTitle),
		detail: gocv.NewWindow(detailTitle),
	}
}

// Show draws the frame, and the close-up when present. The detail window
// keeps its last image when detail is nil.
func (w *Windows) Show(main gocv.Mat, detail *gocv.Mat) {
	w.main.IMShow(main)
	if detail != nil && !detail.Empty() {
		w.detail.IMShow(*detail)
	}
}

// PollKey pumps the window event loop for wait and returns the key pressed.
func (w *Windows) PollKey(wait time.Duration) int {
	ms := int(wait / time.Millisecond)
	if ms < 1 {
		// WaitKey(0) blocks forever.
		ms = 1
	}
	key := w.main.WaitKey(ms)
	if key < 0 {
		return KeyNone
	}
	return key & 0xFF
}

// Close destroys both windows.
func (w *Windows) Close() error {
	w.detail.Close()
	return w.main.Close()
}

var _ Renderer = (*Windows)(nil)
