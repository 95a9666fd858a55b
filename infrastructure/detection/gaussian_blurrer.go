//go:build detection

package detection

import (
	"context"
	"fmt"
	"image"
	"io"

	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/infrastructure/config"

	"gocv.io/x/gocv"
)

// GaussianBlurrer implements detection.FaceBlurrer using GoCV. The kernel
// and sigma are intentionally aggressive; this is a privacy control, not a
// stylistic effect, and the blur must not be reversible.
type GaussianBlurrer struct {
	kernelSize int
	sigma      float64
	output     io.Writer
}

// GaussianBlurrerOption is a functional option for configuring GaussianBlurrer
type GaussianBlurrerOption func(*GaussianBlurrer)

// WithBlurrerOutput sets the writer skipped-region warnings are logged to
func WithBlurrerOutput(w io.Writer) GaussianBlurrerOption {
	return func(b *GaussianBlurrer) {
		b.output = w
	}
}

// NewGaussianBlurrer creates a new Gaussian region blurrer
func NewGaussianBlurrer(cfg config.DetectionConfig, opts ...GaussianBlurrerOption) *GaussianBlurrer {
	kernel := cfg.BlurKernelSize
	if kernel%2 == 0 {
		kernel++ // OpenCV requires an odd kernel
	}

	b := &GaussianBlurrer{
		kernelSize: kernel,
		sigma:      cfg.BlurSigma,
		output:     io.Discard,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Blur implements detection.FaceBlurrer. The frame is rewritten in place so
// its identity (index, path) never changes, only its backing bytes. An empty
// region list leaves the file byte-identical.
func (b *GaussianBlurrer) Blur(ctx context.Context, framePath string, regions []detection.FaceRegion) error {
	if len(regions) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img := gocv.IMRead(framePath, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("failed to read frame %s", framePath)
	}
	defer img.Close()

	frameWidth := img.Cols()
	frameHeight := img.Rows()
	blurred := 0

	for _, r := range regions {
		if r.Empty() || !r.Within(frameWidth, frameHeight) {
			// A single malformed region must not fail the whole frame
			fmt.Fprintf(b.output, "warning: skipping out-of-bounds region %+v in %s\n", r, framePath)
			continue
		}

		roi := img.Region(image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height))
		gocv.GaussianBlur(roi, &roi, image.Pt(b.kernelSize, b.kernelSize), b.sigma, b.sigma, gocv.BorderDefault)
		roi.Close()
		blurred++
	}

	if blurred == 0 {
		return nil
	}

	if ok := gocv.IMWrite(framePath, img); !ok {
		return fmt.Errorf("failed to write blurred frame %s", framePath)
	}

	return nil
}

// Ensure GaussianBlurrer implements detection.FaceBlurrer
var _ detection.FaceBlurrer = (*GaussianBlurrer)(nil)
