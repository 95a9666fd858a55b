package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/video"
)

// Reassembler implements video.FrameReassembler using ffmpeg
type Reassembler struct {
	ffmpegPath string
	runner     CommandRunner
	timeout    time.Duration
}

// ReassemblerOption is a functional option for configuring Reassembler
type ReassemblerOption func(*Reassembler)

// WithReassemblerFFmpegPath sets a custom ffmpeg executable path
func WithReassemblerFFmpegPath(path string) ReassemblerOption {
	return func(r *Reassembler) {
		r.ffmpegPath = path
	}
}

// WithReassemblerCommandRunner sets a custom command runner (for testing)
func WithReassemblerCommandRunner(runner CommandRunner) ReassemblerOption {
	return func(r *Reassembler) {
		r.runner = runner
	}
}

// WithReassemblerTimeout bounds a single ffmpeg invocation
func WithReassemblerTimeout(d time.Duration) ReassemblerOption {
	return func(r *Reassembler) {
		r.timeout = d
	}
}

// NewReassembler creates a new FFmpeg-based frame reassembler
func NewReassembler(opts ...ReassemblerOption) *Reassembler {
	r := &Reassembler{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		timeout:    90 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reencode implements video.FrameReassembler. Video comes from the frame
// sequence at the exact sampling rate, audio is re-muxed from the original;
// both start at t=0 so the streams stay aligned. -shortest truncates to the
// shorter stream and +faststart fronts the moov atom for progressive
// playback.
func (r *Reassembler) Reencode(ctx context.Context, req *video.ReencodeRequest, outputPath string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{
		"-framerate", fmt.Sprintf("%g", req.FrameRate),
		"-i", filepath.Join(req.FrameDir, req.FramePattern),
		"-i", req.OriginalVideoPath,
		"-map", "0:v", // Video from the frame sequence
		"-map", "1:a?", // Audio from the original, if it has any
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p", // Broadly compatible profile
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		"-y", // Overwrite output file if it exists
		outputPath,
	}

	if err := r.runner.Run(runCtx, r.ffmpegPath, args...); err != nil {
		return fmt.Errorf("%w: ffmpeg re-encode failed: %v", anonymize.ErrReencode, err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (r *Reassembler) VerifyInstalled(ctx context.Context) error {
	_, err := r.runner.Output(ctx, r.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Reassembler implements video.FrameReassembler
var _ video.FrameReassembler = (*Reassembler)(nil)
