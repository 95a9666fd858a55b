//go:build detection

package detection

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/infrastructure/config"

	"gocv.io/x/gocv"
)

// CascadeDetector implements detection.FaceDetector using a GoCV Haar
// cascade. The cascade is loaded once per process on first use; load cost
// dominates per-frame cost. The classifier is not reentrant, so inference
// serializes through an internal mutex while the detector itself is shared
// safely across pipeline instances.
type CascadeDetector struct {
	cascadePath string
	padFraction float64
	minFaceSize int

	loadOnce sync.Once
	loadErr  error
	loaded   bool

	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

// CascadeDetectorOption is a functional option for configuring CascadeDetector
type CascadeDetectorOption func(*CascadeDetector)

// WithCascadePath sets a custom path to the Haar cascade XML file
func WithCascadePath(path string) CascadeDetectorOption {
	return func(d *CascadeDetector) {
		d.cascadePath = path
	}
}

// NewCascadeDetector creates a new Haar-cascade face detector
func NewCascadeDetector(cfg config.DetectionConfig, opts ...CascadeDetectorOption) *CascadeDetector {
	d := &CascadeDetector{
		cascadePath: cfg.CascadeFile,
		padFraction: cfg.PaddingFraction,
		minFaceSize: cfg.MinFaceSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ensureLoaded loads the cascade exactly once. A failed load is remembered
// so every later call reports the model as unavailable instead of retrying.
func (d *CascadeDetector) ensureLoaded() error {
	d.loadOnce.Do(func() {
		if _, err := os.Stat(d.cascadePath); err != nil {
			d.loadErr = fmt.Errorf("%w: cascade file %s: %v", anonymize.ErrModelUnavailable, d.cascadePath, err)
			return
		}

		classifier := gocv.NewCascadeClassifier()
		if !classifier.Load(d.cascadePath) {
			classifier.Close()
			d.loadErr = fmt.Errorf("%w: failed to load cascade %s", anonymize.ErrModelUnavailable, d.cascadePath)
			return
		}

		d.classifier = classifier
		d.loaded = true
	})
	return d.loadErr
}

// Detect implements detection.FaceDetector. Returned regions are already
// padded and clamped to the frame bounds. Zero regions is a normal outcome.
func (d *CascadeDetector) Detect(ctx context.Context, framePath string) ([]detection.FaceRegion, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := gocv.IMRead(framePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("failed to read frame %s", framePath)
	}
	defer img.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	d.mu.Lock()
	rects := d.classifier.DetectMultiScaleWithParams(
		gray,
		1.1, // Scale factor
		5,   // Minimum neighbors
		0,
		image.Pt(d.minFaceSize, d.minFaceSize),
		image.Pt(0, 0),
	)
	d.mu.Unlock()

	frameWidth := img.Cols()
	frameHeight := img.Rows()

	regions := make([]detection.FaceRegion, 0, len(rects))
	for _, r := range rects {
		raw := detection.FaceRegion{
			Left:   r.Min.X,
			Top:    r.Min.Y,
			Width:  r.Dx(),
			Height: r.Dy(),
		}
		padded, ok := detection.PadAndClamp(raw, frameWidth, frameHeight, d.padFraction)
		if !ok {
			continue
		}
		regions = append(regions, padded)
	}

	return regions, nil
}

// Close releases the loaded cascade
func (d *CascadeDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		d.classifier.Close()
		d.loaded = false
	}
}

// Ensure CascadeDetector implements detection.FaceDetector
var _ detection.FaceDetector = (*CascadeDetector)(nil)
