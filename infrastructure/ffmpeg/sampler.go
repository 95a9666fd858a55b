package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/video"
)

// FramePattern is the ffmpeg image2 pattern used for sampled frames. The
// zero-padded index keeps lexicographic order equal to playback order, which
// the reassembler depends on.
const FramePattern = "frame_%05d.jpg"

// Sampler implements video.FrameSampler using ffmpeg
type Sampler struct {
	ffmpegPath string
	runner     CommandRunner
	timeout    time.Duration
}

// SamplerOption is a functional option for configuring Sampler
type SamplerOption func(*Sampler)

// WithSamplerFFmpegPath sets a custom ffmpeg executable path
func WithSamplerFFmpegPath(path string) SamplerOption {
	return func(s *Sampler) {
		s.ffmpegPath = path
	}
}

// WithSamplerCommandRunner sets a custom command runner (for testing)
func WithSamplerCommandRunner(runner CommandRunner) SamplerOption {
	return func(s *Sampler) {
		s.runner = runner
	}
}

// WithSamplerTimeout bounds a single ffmpeg invocation. A hung transcoder
// must not consume the whole pipeline budget.
func WithSamplerTimeout(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		s.timeout = d
	}
}

// NewSampler creates a new FFmpeg-based frame sampler
func NewSampler(opts ...SamplerOption) *Sampler {
	s := &Sampler{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		timeout:    60 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ExtractFrames implements video.FrameSampler
func (s *Sampler) ExtractFrames(ctx context.Context, req *video.SampleRequest, outputDir string) ([]video.FrameSample, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{
		"-i", req.SourcePath,
		"-vf", fmt.Sprintf("fps=%g", req.SamplesPerSecond),
		"-q:v", "2", // High JPEG quality; blur must survive re-encoding
		"-y", // Overwrite output files if they exist
		filepath.Join(outputDir, FramePattern),
	}

	if err := s.runner.Run(runCtx, s.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg frame extraction failed: %v", anonymize.ErrNoFrames, err)
	}

	frames, err := enumerateFrames(outputDir)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		// A decodable video always yields at least one sample. Zero frames
		// means the source is corrupt, not that it contains no faces.
		return nil, fmt.Errorf("%w: %s produced no frames", anonymize.ErrNoFrames, filepath.Base(req.SourcePath))
	}

	return frames, nil
}

// enumerateFrames builds the ordered FrameSample sequence from the files the
// transcoder wrote
func enumerateFrames(outputDir string) ([]video.FrameSample, error) {
	paths, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate extracted frames: %w", err)
	}
	sort.Strings(paths)

	frames := make([]video.FrameSample, 0, len(paths))
	for i, path := range paths {
		frames = append(frames, video.FrameSample{
			SequenceIndex: i,
			Path:          path,
		})
	}
	return frames, nil
}

// VerifyInstalled checks that ffmpeg is available
func (s *Sampler) VerifyInstalled(ctx context.Context) error {
	_, err := s.runner.Output(ctx, s.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Sampler implements video.FrameSampler
var _ video.FrameSampler = (*Sampler)(nil)
