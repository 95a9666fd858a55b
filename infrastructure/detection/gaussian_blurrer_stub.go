//go:build !detection

package detection

import (
	"context"
	"errors"
	"io"

	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/infrastructure/config"
)

// GaussianBlurrer is a stub when OpenCV is not available. It is unreachable
// in practice: the stub detector fails before any blur is attempted.
type GaussianBlurrer struct{}

// GaussianBlurrerOption is a functional option for configuring GaussianBlurrer
type GaussianBlurrerOption func(*GaussianBlurrer)

// WithBlurrerOutput is a no-op in stub mode
func WithBlurrerOutput(w io.Writer) GaussianBlurrerOption {
	return func(b *GaussianBlurrer) {}
}

// NewGaussianBlurrer creates a stub blurrer (requires building with -tags=detection)
func NewGaussianBlurrer(cfg config.DetectionConfig, opts ...GaussianBlurrerOption) *GaussianBlurrer {
	return &GaussianBlurrer{}
}

// Blur reports that blurring is not available. The empty-region no-op is
// preserved so the contract matches the real implementation.
func (b *GaussianBlurrer) Blur(ctx context.Context, framePath string, regions []detection.FaceRegion) error {
	if len(regions) == 0 {
		return nil
	}
	return errors.New("region blur requires -tags=detection build with OpenCV")
}

// Ensure GaussianBlurrer implements detection.FaceBlurrer
var _ detection.FaceBlurrer = (*GaussianBlurrer)(nil)
