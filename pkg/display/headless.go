package display

import (
	"bufio"
	"io"
	"time"

	"gocv.io/x/gocv"
)

// Headless renders nothing. A line read from in (typically stdin) counts as
// Enter, so a terminal session can still stop the loop.
type Headless struct {
	keys chan int
}

// NewHeadless starts reading lines from in. A nil reader disables key input.
func NewHeadless(in io.Reader) *Headless {
	h := &Headless{keys: make(chan int, 1)}
	if in != nil {
		go h.readLines(in)
	}
	return h
}

func (h *Headless) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case h.keys <- KeyEnter:
		default:
			// A key is already pending.
		}
	}
}

// Show discards the frames.
func (h *Headless) Show(main gocv.Mat, detail *gocv.Mat) {}

// PollKey sleeps for wait unless a line arrives first.
func (h *Headless) PollKey(wait time.Duration) int {
	if wait <= 0 {
		select {
		case k := <-h.keys:
			return k
		default:
			return KeyNone
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case k := <-h.keys:
		return k
	case <-timer.C:
		return KeyNone
	}
}

// Close is a no-op; the reader goroutine ends with its input.
func (h *Headless) Close() error {
	return nil
}

var _ Renderer = (*Headless)(nil)
