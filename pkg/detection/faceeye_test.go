package detection

import (
	"image"
	"testing"

	"github.com/teslashibe/drowsy/pkg/drowsiness"
	"gocv.io/x/gocv"
)

// fakeClassifier returns scripted matches and records what it was asked.
type fakeClassifier struct {
	rects  []image.Rectangle
	calls  int
	sizes  []image.Point
	params []ScanParams
	closed bool
}

func (f *fakeClassifier) DetectMultiScale(img gocv.Mat, p ScanParams) []image.Rectangle {
	f.calls++
	f.sizes = append(f.sizes, image.Pt(img.Cols(), img.Rows()))
	f.params = append(f.params, p)
	return f.rects
}

func (f *fakeClassifier) Close() error {
	f.closed = true
	return nil
}

func newFrame(t *testing.T) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestFaceEyeDetector_NoFace(t *testing.T) {
	face := &fakeClassifier{}
	eye := &fakeClassifier{rects: []image.Rectangle{image.Rect(0, 0, 10, 10), image.Rect(20, 0, 30, 10)}}
	d := New(face, eye, DefaultConfig())
	defer d.Close()

	frame := newFrame(t)
	res := d.Detect(&frame)

	if res.Outcome != drowsiness.NoFace {
		t.Errorf("Outcome: got %v, want no_face", res.Outcome)
	}
	if eye.calls != 0 {
		t.Errorf("eye classifier should not run without a face, ran %d times", eye.calls)
	}
	if _, ok := d.Detail(); ok {
		t.Error("Detail should be unavailable for NoFace")
	}
}

func TestFaceEyeDetector_EyeCount(t *testing.T) {
	faceRect := image.Rect(200, 100, 400, 300)

	tests := []struct {
		name string
		eyes []image.Rectangle
		want drowsiness.Outcome
	}{
		{"zero eyes", nil, drowsiness.NoEyes},
		{"one eye", []image.Rectangle{image.Rect(40, 50, 80, 80)}, drowsiness.NoEyes},
		{"three eyes", []image.Rectangle{
			image.Rect(40, 50, 80, 80), image.Rect(120, 50, 160, 80), image.Rect(80, 140, 120, 170),
		}, drowsiness.NoEyes},
		{"two eyes", []image.Rectangle{image.Rect(40, 50, 80, 80), image.Rect(120, 50, 160, 80)}, drowsiness.Success},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			face := &fakeClassifier{rects: []image.Rectangle{faceRect}}
			eye := &fakeClassifier{rects: tc.eyes}
			d := New(face, eye, DefaultConfig())
			defer d.Close()

			frame := newFrame(t)
			res := d.Detect(&frame)

			if res.Outcome != tc.want {
				t.Fatalf("Outcome: got %v, want %v", res.Outcome, tc.want)
			}
			if res.Face != drowsiness.RegionFromRect(faceRect) {
				t.Errorf("Face: got %+v", res.Face)
			}
			if tc.want == drowsiness.NoEyes && len(res.Eyes) != 0 {
				t.Errorf("NoEyes should carry no eye regions, got %d", len(res.Eyes))
			}
		})
	}
}

func TestFaceEyeDetector_SuccessTranslatesEyes(t *testing.T) {
	faceRect := image.Rect(200, 100, 400, 300)
	face := &fakeClassifier{rects: []image.Rectangle{faceRect, image.Rect(0, 0, 60, 60)}}
	eye := &fakeClassifier{rects: []image.Rectangle{image.Rect(40, 50, 80, 80), image.Rect(120, 50, 160, 80)}}
	d := New(face, eye, DefaultConfig())
	defer d.Close()

	frame := newFrame(t)
	res := d.Detect(&frame)

	if res.Outcome != drowsiness.Success {
		t.Fatalf("Outcome: got %v, want success", res.Outcome)
	}

	want := []drowsiness.Region{
		{X: 240, Y: 150, W: 40, H: 30},
		{X: 320, Y: 150, W: 40, H: 30},
	}
	for i := range want {
		if res.Eyes[i] != want[i] {
			t.Errorf("eye %d: got %+v, want %+v", i, res.Eyes[i], want[i])
		}
	}

	// The eye scan runs on the first face only, cropped.
	if eye.calls != 1 {
		t.Fatalf("eye classifier calls: got %d, want 1", eye.calls)
	}
	if eye.sizes[0] != image.Pt(200, 200) {
		t.Errorf("eye scan input: got %v, want 200x200 crop", eye.sizes[0])
	}
	if face.sizes[0] != image.Pt(640, 480) {
		t.Errorf("face scan input: got %v, want full frame", face.sizes[0])
	}

	detail, ok := d.Detail()
	if !ok {
		t.Fatal("Detail should be available on success")
	}
	if detail.Cols() != 40 || detail.Rows() != 30 {
		t.Errorf("detail size: got %dx%d, want 40x30", detail.Cols(), detail.Rows())
	}
	if detail.Channels() != 1 {
		t.Errorf("detail should be greyscale, got %d channels", detail.Channels())
	}
}

func TestFaceEyeDetector_ScanParams(t *testing.T) {
	face := &fakeClassifier{rects: []image.Rectangle{image.Rect(10, 10, 110, 110)}}
	eye := &fakeClassifier{}
	cfg := DefaultConfig()
	d := New(face, eye, cfg)
	defer d.Close()

	frame := newFrame(t)
	d.Detect(&frame)

	if face.params[0] != cfg.Face {
		t.Errorf("face params: got %+v, want %+v", face.params[0], cfg.Face)
	}
	if eye.params[0] != cfg.Eye {
		t.Errorf("eye params: got %+v, want %+v", eye.params[0], cfg.Eye)
	}
}

func TestFaceEyeDetector_AnnotatesFrame(t *testing.T) {
	faceRect := image.Rect(200, 100, 400, 300)
	face := &fakeClassifier{rects: []image.Rectangle{faceRect}}
	eye := &fakeClassifier{rects: []image.Rectangle{image.Rect(40, 50, 80, 80), image.Rect(120, 50, 160, 80)}}
	d := New(face, eye, DefaultConfig())
	defer d.Close()

	frame := newFrame(t)
	d.Detect(&frame)

	// BGR order
	v := frame.GetVecbAt(faceRect.Min.Y, faceRect.Min.X)
	if v[0] != 255 || v[1] != 128 || v[2] != 0 {
		t.Errorf("face corner pixel: got %v, want [255 128 0]", v)
	}

	v = frame.GetVecbAt(150, 240)
	if v[0] != 0 || v[1] != 255 || v[2] != 0 {
		t.Errorf("eye corner pixel: got %v, want [0 255 0]", v)
	}
}

func TestFaceEyeDetector_EmptyFrame(t *testing.T) {
	face := &fakeClassifier{rects: []image.Rectangle{image.Rect(0, 0, 50, 50)}}
	d := New(face, &fakeClassifier{}, DefaultConfig())
	defer d.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if res := d.Detect(&frame); res.Outcome != drowsiness.NoFace {
		t.Errorf("empty frame: got %v, want no_face", res.Outcome)
	}
	if face.calls != 0 {
		t.Error("classifier should not run on an empty frame")
	}
}

func TestFaceEyeDetector_CloseClosesClassifiers(t *testing.T) {
	face, eye := &fakeClassifier{}, &fakeClassifier{}
	d := New(face, eye, DefaultConfig())

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !face.closed || !eye.closed {
		t.Error("Close should close both classifiers")
	}
}
