// Package drowsiness holds the per-frame detection outcome and the timer that
// turns a stream of outcomes into alert decisions.
//
// Nothing here depends on OpenCV, so the alert policy can be tested with
// scripted results and a manual clock.
package drowsiness

import (
	"fmt"
	"image"
)

// Outcome tags what a single frame showed.
type Outcome int

const (
	// NoFace means the face classifier found nothing.
	NoFace Outcome = iota
	// NoEyes means a face was found but not exactly two eyes inside it.
	NoEyes
	// Success means a face and exactly two eyes were found.
	Success
)

func (o Outcome) String() string {
	switch o {
	case NoFace:
		return "no_face"
	case NoEyes:
		return "no_eyes"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Region is a rectangle in frame pixel coordinates.
type Region struct {
	X int `json:"x"` // Top-left corner
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// RegionFromRect converts an image.Rectangle.
func RegionFromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Offset returns the region translated by (dx, dy).
func (r Region) Offset(dx, dy int) Region {
	r.X += dx
	r.Y += dy
	return r
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Result is what the detector produced for one frame.
// Face is set for NoEyes and Success; Eyes holds exactly two regions on Success.
type Result struct {
	Outcome Outcome
	Face    Region
	Eyes    []Region
}

// FaceFound reports whether the face classifier matched.
func (r Result) FaceFound() bool {
	return r.Outcome != NoFace
}

// NoFaceResult is the result for a frame without a face.
func NoFaceResult() Result {
	return Result{Outcome: NoFace}
}

// NoEyesResult is the result for a face without two eyes.
func NoEyesResult(face Region) Result {
	return Result{Outcome: NoEyes, Face: face}
}

// SuccessResult is the result for a face with two eyes.
func SuccessResult(face Region, left, right Region) Result {
	return Result{Outcome: Success, Face: face, Eyes: []Region{left, right}}
}
