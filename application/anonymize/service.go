package anonymize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/domain/storage"
	"unyield-service-faceblur/domain/video"
	"unyield-service-faceblur/infrastructure/config"
	"unyield-service-faceblur/infrastructure/ffmpeg"
	"unyield-service-faceblur/infrastructure/workspace"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service orchestrates the face-anonymization pipeline. One call is one run:
// fetch, sample, detect+blur per frame, re-encode, publish. Any stage
// failure converts to a fallback result; the caller never sees an error and
// a submission is never blocked on anonymization.
type Service struct {
	fetcher     storage.Fetcher
	sampler     video.FrameSampler
	detector    detection.FaceDetector
	blurrer     detection.FaceBlurrer
	reassembler video.FrameReassembler
	publisher   storage.Publisher
	cfg         *config.Config
	output      io.Writer
}

// NewService creates a new anonymization pipeline service
func NewService(
	fetcher storage.Fetcher,
	sampler video.FrameSampler,
	detector detection.FaceDetector,
	blurrer detection.FaceBlurrer,
	reassembler video.FrameReassembler,
	publisher storage.Publisher,
	cfg *config.Config,
	output io.Writer,
) *Service {
	if output == nil {
		output = io.Discard
	}
	return &Service{
		fetcher:     fetcher,
		sampler:     sampler,
		detector:    detector,
		blurrer:     blurrer,
		reassembler: reassembler,
		publisher:   publisher,
		cfg:         cfg,
		output:      output,
	}
}

// ProcessVideo runs the whole pipeline for one submitted video. The result
// is always success-shaped: on any internal failure both URLs point at the
// source and the cause is logged, not propagated.
func (s *Service) ProcessVideo(ctx context.Context, sourceURL string) *anonymize.Result {
	startTime := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.PipelineTimeout())
	defer cancel()

	published, facesFound, err := s.run(runCtx, sourceURL)
	if err != nil {
		s.logFallback(sourceURL, err, time.Since(startTime))
		return anonymize.Fallback(sourceURL)
	}

	fmt.Fprintf(s.output, "Done: %d face(s) blurred in %s (%s)\n",
		facesFound, path.Base(published.FileName), formatDuration(time.Since(startTime)))

	return &anonymize.Result{
		BlurredVideoURL:  published.PublicURL,
		OriginalVideoURL: sourceURL,
		FacesFound:       facesFound,
		UsedFallback:     false,
	}
}

// run executes the stage sequence. The workspace is released on every exit
// path; no scratch file survives the call.
func (s *Service) run(ctx context.Context, sourceURL string) (*storage.PublishResult, int, error) {
	runID := uuid.NewString()

	ws, err := workspace.New(s.cfg.Paths.ScratchDirectory, workspace.WithOutput(s.output))
	if err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageFetch, err)
	}
	defer ws.ReleaseAll()

	// Stage 1: fetch
	fmt.Fprintf(s.output, "[1/5] Fetching source video...\n")
	sourcePath := ws.File("source.mp4")
	if err := s.fetcher.Fetch(ctx, sourceURL, sourcePath); err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageFetch, err)
	}

	// Stage 2: sample
	fmt.Fprintf(s.output, "[2/5] Sampling frames...\n")
	frameDir, err := ws.Dir("frames")
	if err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageSample, err)
	}
	sampleReq, err := video.NewSampleRequest(sourcePath, s.cfg.Pipeline.SamplesPerSecond)
	if err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageSample, err)
	}
	frames, err := s.sampler.ExtractFrames(ctx, sampleReq, frameDir)
	if err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageSample, err)
	}
	fmt.Fprintf(s.output, "      %d frame(s) extracted\n", len(frames))

	// Stage 3: detect and blur, frame-parallel. Frames are independent, so
	// a bounded pool runs them concurrently; paths never change, so the
	// reassembler sees the original order. Wait is the barrier before
	// re-encoding reads the whole frame directory.
	fmt.Fprintf(s.output, "[3/5] Blurring faces (%d workers)...\n", s.cfg.Pipeline.MaxWorkers)
	var facesFound atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Pipeline.MaxWorkers)
	for _, frame := range frames {
		g.Go(func() error {
			regions, err := s.detector.Detect(gctx, frame.Path)
			if err != nil {
				return anonymize.NewStageError(anonymize.StageDetect, err)
			}
			if len(regions) == 0 {
				// No faces in this frame is a normal outcome
				return nil
			}
			if err := s.blurrer.Blur(gctx, frame.Path, regions); err != nil {
				return anonymize.NewStageError(anonymize.StageBlur, err)
			}
			facesFound.Add(int64(len(regions)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	fmt.Fprintf(s.output, "      %d face(s) found\n", facesFound.Load())

	// Stage 4: re-encode
	fmt.Fprintf(s.output, "[4/5] Re-encoding video...\n")
	outputPath := ws.File("blurred.mp4")
	reencodeReq, err := video.NewReencodeRequest(frameDir, ffmpeg.FramePattern, s.cfg.Pipeline.SamplesPerSecond, sourcePath)
	if err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageReencode, err)
	}
	if err := s.reassembler.Reencode(ctx, reencodeReq, outputPath); err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StageReencode, err)
	}

	// Stage 5: publish
	fmt.Fprintf(s.output, "[5/5] Publishing...\n")
	published, err := s.publisher.Publish(ctx, storage.PublishRequest{
		LocalPath: outputPath,
		FileName:  publishedFileName(sourceURL, runID),
		MimeType:  storage.MimeTypeMP4,
	})
	if err != nil {
		return nil, 0, anonymize.NewStageError(anonymize.StagePublish, err)
	}

	return published, int(facesFound.Load()), nil
}

// logFallback records why the run fell back, with stage and elapsed time
func (s *Service) logFallback(sourceURL string, err error, elapsed time.Duration) {
	cause := err
	if errors.Is(err, context.DeadlineExceeded) {
		cause = fmt.Errorf("%w: %v", anonymize.ErrTimeout, err)
	}

	stage := anonymize.Stage("unknown")
	var stageErr *anonymize.StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}

	fmt.Fprintf(s.output, "Fallback: serving original video for %s (stage=%s, elapsed=%s): %v\n",
		sourceURL, stage, formatDuration(elapsed), cause)
}

// publishedFileName derives a unique name for the published asset. The run
// ID keeps concurrent submissions of the same source from colliding.
func publishedFileName(sourceURL, runID string) string {
	base := "video"
	if u, err := url.Parse(sourceURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "." && b != "/" {
			base = strings.TrimSuffix(b, path.Ext(b))
		}
	}
	return fmt.Sprintf("%s-%s-blurred.mp4", base, runID[:8])
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
