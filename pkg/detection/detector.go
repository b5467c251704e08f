// Package detection finds a face and the eyes inside it. Faces come from a
// Haar cascade or YuNet; eyes always come from a Haar cascade.
package detection

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrModelLoad is returned when a classifier model cannot be loaded.
var ErrModelLoad = errors.New("classifier model could not be loaded")

// ScanParams are the multi-scale scan settings passed to a classifier.
type ScanParams struct {
	ScaleFactor  float64     `yaml:"scale_factor" json:"scale_factor"`   // Image pyramid step (> 1)
	MinNeighbors int         `yaml:"min_neighbors" json:"min_neighbors"` // Overlapping hits required per match
	MinSize      image.Point `yaml:"min_size" json:"min_size"`           // Smallest object considered
}

// Validate checks the scan settings.
func (p ScanParams) Validate() error {
	if p.ScaleFactor <= 1 {
		return fmt.Errorf("scale_factor must be > 1, got %v", p.ScaleFactor)
	}
	if p.MinNeighbors < 0 {
		return fmt.Errorf("min_neighbors must be >= 0, got %d", p.MinNeighbors)
	}
	if p.MinSize.X < 0 || p.MinSize.Y < 0 {
		return fmt.Errorf("min_size must be non-negative, got %v", p.MinSize)
	}
	return nil
}

// Classifier is the interface for object classifier backends.
type Classifier interface {
	// DetectMultiScale scans a greyscale image and returns matches in the
	// image's own coordinates, in the order the backend produced them.
	DetectMultiScale(img gocv.Mat, p ScanParams) []image.Rectangle

	// Close releases resources
	Close() error
}

// FaceBackend selects the face classifier.
type FaceBackend string

const (
	// FaceHaar uses a Haar cascade XML (default).
	FaceHaar FaceBackend = "haar"
	// FaceYuNet uses OpenCV's FaceDetectorYN with an ONNX model.
	FaceYuNet FaceBackend = "yunet"
)

// Config holds detector configuration
type Config struct {
	FaceBackend FaceBackend `yaml:"face_backend" json:"face_backend"`
	FaceModel   string      `yaml:"face_model" json:"face_model"` // Cascade XML, or ONNX for yunet
	EyeModel    string      `yaml:"eye_model" json:"eye_model"`   // Path to eye cascade XML
	Face        ScanParams  `yaml:"face" json:"face"`
	Eye         ScanParams  `yaml:"eye" json:"eye"`

	// FaceScore is the YuNet confidence threshold (0-1).
	FaceScore float64 `yaml:"face_score" json:"face_score"`
}

// DefaultConfig returns the frontal face / eyeglasses-tolerant eye setup.
func DefaultConfig() Config {
	return Config{
		FaceBackend: FaceHaar,
		FaceModel:   "haarcascade_frontalface_alt.xml",
		EyeModel:    "haarcascade_eye_tree_eyeglasses.xml",
		FaceScore:   0.7,
		Face: ScanParams{
			ScaleFactor:  1.1,
			MinNeighbors: 2,
			MinSize:      image.Pt(50, 50),
		},
		Eye: ScanParams{
			ScaleFactor:  1.15,
			MinNeighbors: 2,
			MinSize:      image.Pt(5, 5),
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.FaceBackend {
	case "", FaceHaar, FaceYuNet:
	default:
		return fmt.Errorf("unknown face_backend %q", c.FaceBackend)
	}
	if c.FaceBackend == FaceYuNet && (c.FaceScore <= 0 || c.FaceScore > 1) {
		return fmt.Errorf("face_score must be in (0, 1], got %v", c.FaceScore)
	}
	if c.FaceModel == "" {
		return errors.New("face_model is required")
	}
	if c.EyeModel == "" {
		return errors.New("eye_model is required")
	}
	if err := c.Face.Validate(); err != nil {
		return fmt.Errorf("face: %w", err)
	}
	if err := c.Eye.Validate(); err != nil {
		return fmt.Errorf("eye: %w", err)
	}
	return nil
}
