//go:build !detection

package detection

import (
	"context"
	"fmt"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/infrastructure/config"
)

// CascadeDetector is a stub when OpenCV is not available. Every Detect call
// reports the model as unavailable, which the orchestrator turns into a
// fallback; anonymization is never faked by returning zero faces.
type CascadeDetector struct {
	cascadePath string
}

// CascadeDetectorOption is a functional option for configuring CascadeDetector
type CascadeDetectorOption func(*CascadeDetector)

// WithCascadePath is a no-op in stub mode
func WithCascadePath(path string) CascadeDetectorOption {
	return func(d *CascadeDetector) {}
}

// NewCascadeDetector creates a stub detector (requires building with -tags=detection)
func NewCascadeDetector(cfg config.DetectionConfig, opts ...CascadeDetectorOption) *CascadeDetector {
	return &CascadeDetector{cascadePath: cfg.CascadeFile}
}

// Detect reports the detection model as unavailable
func (d *CascadeDetector) Detect(ctx context.Context, framePath string) ([]detection.FaceRegion, error) {
	return nil, fmt.Errorf("%w: face detection requires -tags=detection build with OpenCV", anonymize.ErrModelUnavailable)
}

// Close is a no-op in stub mode
func (d *CascadeDetector) Close() {}

// Ensure CascadeDetector implements detection.FaceDetector
var _ detection.FaceDetector = (*CascadeDetector)(nil)
