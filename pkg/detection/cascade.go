package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// haarScaleImage scales the image rather than the detector; newer cascade
// formats ignore it.
const haarScaleImage = 2

// Cascade wraps an OpenCV Haar/LBP cascade classifier.
type Cascade struct {
	classifier gocv.CascadeClassifier
	path       string
	mu         sync.Mutex // Protects the native classifier
}

// LoadCascade loads a cascade model from an XML file.
func LoadCascade(path string) (*Cascade, error) {
	// Check if model file exists first
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelLoad, path, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, path)
	}

	return &Cascade{classifier: classifier, path: path}, nil
}

// DetectMultiScale runs the cascade over img.
func (c *Cascade) DetectMultiScale(img gocv.Mat, p ScanParams) []image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.classifier.DetectMultiScaleWithParams(
		img,
		p.ScaleFactor,
		p.MinNeighbors,
		haarScaleImage,
		p.MinSize,
		image.Pt(0, 0), // No upper bound
	)
}

// Path returns the model file this cascade was loaded from.
func (c *Cascade) Path() string {
	return c.path
}

// Close releases the classifier resources
func (c *Cascade) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.Close()
}

var _ Classifier = (*Cascade)(nil)
