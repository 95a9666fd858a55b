package video

import (
	"context"
	"fmt"
)

// FrameSampler defines the interface for extracting still frames from a video
// This is a port that can be implemented by different infrastructure adapters
type FrameSampler interface {
	// ExtractFrames extracts a time-uniform frame sequence into outputDir
	ExtractFrames(ctx context.Context, req *SampleRequest, outputDir string) ([]FrameSample, error)
}

// FrameReassembler defines the interface for re-encoding a frame sequence
// back into a video, re-muxing the original audio track
type FrameReassembler interface {
	// Reencode re-encodes the frame sequence and writes the result to outputPath
	Reencode(ctx context.Context, req *ReencodeRequest, outputPath string) error
}

// SampleRequest represents a request to sample still frames from a video
type SampleRequest struct {
	SourcePath       string
	SamplesPerSecond float64
}

// NewSampleRequest creates a validated SampleRequest
func NewSampleRequest(sourcePath string, samplesPerSecond float64) (*SampleRequest, error) {
	req := &SampleRequest{
		SourcePath:       sourcePath,
		SamplesPerSecond: samplesPerSecond,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks that the sample request is valid
func (r *SampleRequest) Validate() error {
	if r.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if r.SamplesPerSecond <= 0 {
		return fmt.Errorf("samples per second must be positive, got %g", r.SamplesPerSecond)
	}
	return nil
}

// ReencodeRequest represents a request to rebuild a video from a frame
// sequence, taking the audio track from the original video. FrameRate must
// match the rate the frames were sampled at or playback speed drifts.
type ReencodeRequest struct {
	FrameDir          string
	FramePattern      string
	FrameRate         float64
	OriginalVideoPath string
}

// NewReencodeRequest creates a validated ReencodeRequest
func NewReencodeRequest(frameDir, framePattern string, frameRate float64, originalVideoPath string) (*ReencodeRequest, error) {
	req := &ReencodeRequest{
		FrameDir:          frameDir,
		FramePattern:      framePattern,
		FrameRate:         frameRate,
		OriginalVideoPath: originalVideoPath,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks that the reencode request is valid
func (r *ReencodeRequest) Validate() error {
	if r.FrameDir == "" {
		return fmt.Errorf("frame directory is required")
	}
	if r.FramePattern == "" {
		return fmt.Errorf("frame pattern is required")
	}
	if r.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %g", r.FrameRate)
	}
	if r.OriginalVideoPath == "" {
		return fmt.Errorf("original video path is required")
	}
	return nil
}
