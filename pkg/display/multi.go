package display

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// Multi fans frames out to several renderers.
type Multi []Renderer

// Show forwards to every renderer.
func (m Multi) Show(main gocv.Mat, detail *gocv.Mat) {
	for _, r := range m {
		r.Show(main, detail)
	}
}

// PollKey gives the full wait to the first renderer and polls the others
// without waiting. The first key found wins.
func (m Multi) PollKey(wait time.Duration) int {
	key := KeyNone
	for i, r := range m {
		w := wait
		if i > 0 {
			w = 0
		}
		if k := r.PollKey(w); k != KeyNone && key == KeyNone {
			key = k
		}
	}
	return key
}

// Close closes every renderer and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Renderer = Multi(nil)
