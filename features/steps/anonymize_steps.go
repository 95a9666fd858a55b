//go:build integration

package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appanonymize "unyield-service-faceblur/application/anonymize"
	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/domain/storage"
	"unyield-service-faceblur/domain/video"
	"unyield-service-faceblur/infrastructure/config"

	"github.com/cucumber/godog"
)

type anonymizeContext struct {
	tempDir   string
	cfg       *config.Config
	sourceURL string

	fetcher   *stubFetcher
	sampler   *stubSampler
	detector  *stubDetector
	blurrer   *stubBlurrer
	publisher *stubPublisher

	result *anonymize.Result
}

var SharedAnonymizeContext = &anonymizeContext{}

type stubFetcher struct {
	fail bool
}

func (f *stubFetcher) Fetch(ctx context.Context, sourceURL, destPath string) error {
	if f.fail {
		return fmt.Errorf("%w: connection refused", anonymize.ErrFetch)
	}
	return os.WriteFile(destPath, []byte("video-bytes"), 0644)
}

type stubSampler struct {
	frameCount int
}

func (s *stubSampler) ExtractFrames(ctx context.Context, req *video.SampleRequest, outputDir string) ([]video.FrameSample, error) {
	frames := make([]video.FrameSample, 0, s.frameCount)
	for i := 1; i <= s.frameCount; i++ {
		path := filepath.Join(outputDir, fmt.Sprintf("frame_%05d.jpg", i))
		if err := os.WriteFile(path, []byte("jpeg"), 0644); err != nil {
			return nil, err
		}
		frames = append(frames, video.FrameSample{SequenceIndex: i, Path: path})
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames extracted", anonymize.ErrNoFrames)
	}
	return frames, nil
}

type stubDetector struct {
	facesPerFrame int
	unavailable   bool
}

func (d *stubDetector) Detect(ctx context.Context, framePath string) ([]detection.FaceRegion, error) {
	if d.unavailable {
		return nil, fmt.Errorf("%w: cascade model not loaded", anonymize.ErrModelUnavailable)
	}
	regions := make([]detection.FaceRegion, d.facesPerFrame)
	for i := range regions {
		regions[i] = detection.FaceRegion{Left: 10 + i*40, Top: 10, Width: 30, Height: 30}
	}
	return regions, nil
}

func (d *stubDetector) Close() {}

type stubBlurrer struct{}

func (b *stubBlurrer) Blur(ctx context.Context, framePath string, regions []detection.FaceRegion) error {
	return nil
}

type stubReassembler struct{}

func (r *stubReassembler) Reencode(ctx context.Context, req *video.ReencodeRequest, outputPath string) error {
	return os.WriteFile(outputPath, []byte("blurred-video-bytes"), 0644)
}

type stubPublisher struct {
	publicURL string
}

func (p *stubPublisher) Publish(ctx context.Context, req storage.PublishRequest) (*storage.PublishResult, error) {
	return &storage.PublishResult{
		FileID:    "stub-file-id",
		FileName:  req.FileName,
		PublicURL: p.publicURL,
	}, nil
}

func InitializeAnonymizeScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedAnonymizeContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "anonymize-test-*")
		if err != nil {
			return c, err
		}

		cfg := &config.Config{}
		cfg.ApplyDefaults()
		cfg.Paths.ScratchDirectory = tempDir
		cfg.Pipeline.MaxWorkers = 2

		*testCtx = anonymizeContext{
			tempDir:   tempDir,
			cfg:       cfg,
			fetcher:   &stubFetcher{},
			sampler:   &stubSampler{},
			detector:  &stubDetector{},
			blurrer:   &stubBlurrer{},
			publisher: &stubPublisher{publicURL: "https://drive.google.com/file/d/stub-file-id/view"},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a submitted video at "([^"]*)" with (\d+) frames$`, testCtx.aSubmittedVideoWithFrames)
	ctx.Step(`^every frame contains (\d+) faces$`, testCtx.everyFrameContainsFaces)
	ctx.Step(`^no frame contains a face$`, testCtx.noFrameContainsAFace)
	ctx.Step(`^face detection is unavailable$`, testCtx.faceDetectionIsUnavailable)
	ctx.Step(`^the video at "([^"]*)" cannot be fetched$`, testCtx.theVideoCannotBeFetched)
	ctx.Step(`^I anonymize the video$`, testCtx.iAnonymizeTheVideo)
	ctx.Step(`^the result should report (\d+) faces found$`, testCtx.theResultShouldReportFacesFound)
	ctx.Step(`^the result should link to the published video$`, testCtx.theResultShouldLinkToThePublishedVideo)
	ctx.Step(`^the result should not use the fallback$`, testCtx.theResultShouldNotUseTheFallback)
	ctx.Step(`^the result should serve the original video$`, testCtx.theResultShouldServeTheOriginalVideo)
}

func (a *anonymizeContext) aSubmittedVideoWithFrames(url string, frames int) error {
	a.sourceURL = url
	a.sampler.frameCount = frames
	return nil
}

func (a *anonymizeContext) everyFrameContainsFaces(faces int) error {
	a.detector.facesPerFrame = faces
	return nil
}

func (a *anonymizeContext) noFrameContainsAFace() error {
	a.detector.facesPerFrame = 0
	return nil
}

func (a *anonymizeContext) faceDetectionIsUnavailable() error {
	a.detector.unavailable = true
	return nil
}

func (a *anonymizeContext) theVideoCannotBeFetched(url string) error {
	a.sourceURL = url
	a.fetcher.fail = true
	return nil
}

func (a *anonymizeContext) iAnonymizeTheVideo() error {
	service := appanonymize.NewService(
		a.fetcher,
		a.sampler,
		a.detector,
		a.blurrer,
		&stubReassembler{},
		a.publisher,
		a.cfg,
		io.Discard,
	)
	a.result = service.ProcessVideo(context.Background(), a.sourceURL)
	return nil
}

func (a *anonymizeContext) theResultShouldReportFacesFound(faces int) error {
	if a.result.FacesFound != faces {
		return fmt.Errorf("expected %d faces, got %d", faces, a.result.FacesFound)
	}
	return nil
}

func (a *anonymizeContext) theResultShouldLinkToThePublishedVideo() error {
	if a.result.BlurredVideoURL != a.publisher.publicURL {
		return fmt.Errorf("expected published URL %q, got %q", a.publisher.publicURL, a.result.BlurredVideoURL)
	}
	return nil
}

func (a *anonymizeContext) theResultShouldNotUseTheFallback() error {
	if a.result.UsedFallback {
		return fmt.Errorf("expected a normal result, got fallback")
	}
	return nil
}

func (a *anonymizeContext) theResultShouldServeTheOriginalVideo() error {
	if !a.result.UsedFallback {
		return fmt.Errorf("expected fallback result")
	}
	if a.result.BlurredVideoURL != a.sourceURL {
		return fmt.Errorf("fallback must serve the original URL %q, got %q", a.sourceURL, a.result.BlurredVideoURL)
	}
	return nil
}
