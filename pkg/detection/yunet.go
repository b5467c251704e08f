package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// YuNet uses OpenCV's FaceDetectorYN as a face Classifier. It ignores
// ScaleFactor and MinNeighbors; MinSize still filters the results.
type YuNet struct {
	detector gocv.FaceDetectorYN
	bgr      gocv.Mat
	path     string
	mu       sync.Mutex // Protects inference
}

// NewYuNet loads an ONNX YuNet model.
func NewYuNet(path string, scoreThreshold float64) (*YuNet, error) {
	// Check if model file exists first
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelLoad, path, err)
	}

	// Input size is reset per image
	detector := gocv.NewFaceDetectorYNWithParams(
		path,
		"", // No config file needed for ONNX
		image.Pt(320, 320),
		float32(scoreThreshold),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{detector: detector, bgr: gocv.NewMat(), path: path}, nil
}

// DetectMultiScale finds faces in img, highest score first. Greyscale input
// is expanded to three channels for the network.
func (y *YuNet) DetectMultiScale(img gocv.Mat, p ScanParams) []image.Rectangle {
	y.mu.Lock()
	defer y.mu.Unlock()

	if img.Empty() {
		return nil
	}

	input := img
	if img.Channels() == 1 {
		gocv.CvtColor(img, &y.bgr, gocv.ColorGrayToBGR)
		input = y.bgr
	}

	y.detector.SetInputSize(image.Pt(input.Cols(), input.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	y.detector.Detect(input, &faces)

	// Output rows: x, y, w, h, five landmark pairs, score
	var rects []image.Rectangle
	for r := 0; r < faces.Rows(); r++ {
		x := int(faces.GetFloatAt(r, 0))
		top := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		if w < p.MinSize.X || h < p.MinSize.Y {
			continue
		}
		rects = append(rects, image.Rect(x, top, x+w, top+h))
	}
	return rects
}

// Path returns the model file.
func (y *YuNet) Path() string {
	return y.path
}

// Close releases the detector resources
func (y *YuNet) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.detector.Close()
	return y.bgr.Close()
}

var _ Classifier = (*YuNet)(nil)
