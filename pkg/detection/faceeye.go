package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/teslashibe/drowsy/pkg/debug"
	"github.com/teslashibe/drowsy/pkg/drowsiness"
	"gocv.io/x/gocv"
)

// Annotation colours and stroke width.
var (
	FaceColor = color.RGBA{R: 0, G: 128, B: 255, A: 0}
	EyeColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

const strokeWidth = 2

// FaceEyeDetector runs a face scan, then an eye scan inside the first face.
// It is meant to be driven from a single loop.
type FaceEyeDetector struct {
	face Classifier
	eye  Classifier
	cfg  Config

	gray   gocv.Mat
	detail gocv.Mat
	// hasDetail is true when detail holds the close-up for the latest frame.
	hasDetail bool
}

// New creates a detector from already loaded classifiers. The detector owns
// them and closes them in Close.
func New(face, eye Classifier, cfg Config) *FaceEyeDetector {
	return &FaceEyeDetector{
		face:   face,
		eye:    eye,
		cfg:    cfg,
		gray:   gocv.NewMat(),
		detail: gocv.NewMat(),
	}
}

// Open loads the face and eye models named in cfg.
func Open(cfg Config) (*FaceEyeDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		face Classifier
		err  error
	)
	switch cfg.FaceBackend {
	case FaceYuNet:
		face, err = NewYuNet(cfg.FaceModel, cfg.FaceScore)
	default:
		face, err = LoadCascade(cfg.FaceModel)
	}
	if err != nil {
		return nil, fmt.Errorf("face detector: %w", err)
	}
	eye, err := LoadCascade(cfg.EyeModel)
	if err != nil {
		face.Close()
		return nil, fmt.Errorf("eye detector: %w", err)
	}

	return New(face, eye, cfg), nil
}

// Detect classifies frame and draws the found regions onto it.
//
// Zero faces gives NoFace. Otherwise the first face the classifier returned
// is searched for eyes; anything but exactly two eyes gives NoEyes.
func (d *FaceEyeDetector) Detect(frame *gocv.Mat) drowsiness.Result {
	d.hasDetail = false

	if frame == nil || frame.Empty() {
		return drowsiness.NoFaceResult()
	}

	d.toEqualizedGray(*frame)
	bounds := image.Rect(0, 0, d.gray.Cols(), d.gray.Rows())

	faces := d.face.DetectMultiScale(d.gray, d.cfg.Face)
	if len(faces) == 0 {
		debug.FrameLog("🙈 no face\n")
		return drowsiness.NoFaceResult()
	}

	// First match wins; classifier order is kept as-is.
	faceRect := faces[0].Intersect(bounds)
	if faceRect.Empty() {
		return drowsiness.NoFaceResult()
	}
	face := drowsiness.RegionFromRect(faceRect)
	gocv.Rectangle(frame, faceRect, FaceColor, strokeWidth)

	faceGray := d.gray.Region(faceRect)
	defer faceGray.Close()

	eyes := d.eye.DetectMultiScale(faceGray, d.cfg.Eye)
	if len(eyes) != 2 {
		debug.FrameLog("😑 face %v, %d eye(s)\n", faceRect, len(eyes))
		return drowsiness.NoEyesResult(face)
	}

	faceBounds := image.Rect(0, 0, faceRect.Dx(), faceRect.Dy())
	regions := make([]drowsiness.Region, 0, 2)
	for _, e := range eyes {
		e = e.Intersect(faceBounds)
		abs := e.Add(faceRect.Min)
		gocv.Rectangle(frame, abs, EyeColor, strokeWidth)
		regions = append(regions, drowsiness.RegionFromRect(abs))
	}

	d.closeUp(faceGray, eyes[0].Intersect(faceBounds))

	debug.FrameLog("👀 face %v, eyes %v %v\n", faceRect, regions[0].Rect(), regions[1].Rect())
	return drowsiness.SuccessResult(face, regions[0], regions[1])
}

// Detail returns an equalized greyscale crop of the first eye from the most
// recent Success. The Mat stays owned by the detector and is only valid until
// the next call to Detect.
func (d *FaceEyeDetector) Detail() (gocv.Mat, bool) {
	return d.detail, d.hasDetail
}

func (d *FaceEyeDetector) toEqualizedGray(frame gocv.Mat) {
	if frame.Channels() == 1 {
		frame.CopyTo(&d.gray)
	} else {
		gocv.CvtColor(frame, &d.gray, gocv.ColorBGRToGray)
	}
	gocv.EqualizeHist(d.gray, &d.gray)
}

func (d *FaceEyeDetector) closeUp(faceGray gocv.Mat, eye image.Rectangle) {
	if eye.Empty() {
		return
	}
	eyeGray := faceGray.Region(eye)
	defer eyeGray.Close()

	gocv.EqualizeHist(eyeGray, &d.detail)
	d.hasDetail = !d.detail.Empty()
}

// Config returns the detector configuration.
func (d *FaceEyeDetector) Config() Config {
	return d.cfg
}

// Close releases the classifiers and working buffers.
func (d *FaceEyeDetector) Close() error {
	var firstErr error
	for _, c := range []Classifier{d.face, d.eye} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.gray.Close()
	d.detail.Close()
	return firstErr
}
