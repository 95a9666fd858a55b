package anonymize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	domain "unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/detection"
	"unyield-service-faceblur/domain/storage"
	"unyield-service-faceblur/domain/video"
	"unyield-service-faceblur/infrastructure/config"
	"unyield-service-faceblur/infrastructure/ffmpeg"
)

// --- Mock implementations for testing ---

// mockFetcher implements storage.Fetcher for testing
type mockFetcher struct {
	shouldFail bool
	failError  error
	blockOnCtx bool
}

func (m *mockFetcher) Fetch(ctx context.Context, sourceURL, destPath string) error {
	if m.blockOnCtx {
		<-ctx.Done()
		return fmt.Errorf("%w: %v", domain.ErrFetch, ctx.Err())
	}
	if m.shouldFail {
		return m.failError
	}
	return os.WriteFile(destPath, []byte("source video bytes"), 0o644)
}

// mockSampler implements video.FrameSampler for testing
type mockSampler struct {
	frameCount int
	shouldFail bool
	failError  error
}

func (m *mockSampler) ExtractFrames(ctx context.Context, req *video.SampleRequest, outputDir string) ([]video.FrameSample, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	frames := make([]video.FrameSample, 0, m.frameCount)
	for i := 0; i < m.frameCount; i++ {
		path := filepath.Join(outputDir, fmt.Sprintf(ffmpeg.FramePattern, i+1))
		if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
			return nil, err
		}
		frames = append(frames, video.FrameSample{SequenceIndex: i, Path: path})
	}
	return frames, nil
}

// mockDetector implements detection.FaceDetector for testing
type mockDetector struct {
	mu         sync.Mutex
	calls      []string
	regionsPer int // regions returned per frame
	shouldFail bool
	failError  error
}

func (m *mockDetector) Detect(ctx context.Context, framePath string) ([]detection.FaceRegion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, framePath)
	m.mu.Unlock()
	if m.shouldFail {
		return nil, m.failError
	}
	regions := make([]detection.FaceRegion, 0, m.regionsPer)
	for i := 0; i < m.regionsPer; i++ {
		regions = append(regions, detection.FaceRegion{Left: 10 * i, Top: 10, Width: 20, Height: 20})
	}
	return regions, nil
}

func (m *mockDetector) Close() {}

// mockBlurrer implements detection.FaceBlurrer for testing
type mockBlurrer struct {
	mu         sync.Mutex
	blurred    []string
	shouldFail bool
	failError  error
}

func (m *mockBlurrer) Blur(ctx context.Context, framePath string, regions []detection.FaceRegion) error {
	if m.shouldFail {
		return m.failError
	}
	m.mu.Lock()
	m.blurred = append(m.blurred, framePath)
	m.mu.Unlock()
	return nil
}

func (m *mockBlurrer) blurCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blurred)
}

// mockReassembler implements video.FrameReassembler for testing
type mockReassembler struct {
	shouldFail bool
	failError  error
	calls      []*video.ReencodeRequest
	onReencode func()
}

func (m *mockReassembler) Reencode(ctx context.Context, req *video.ReencodeRequest, outputPath string) error {
	if m.onReencode != nil {
		m.onReencode()
	}
	if m.shouldFail {
		return m.failError
	}
	m.calls = append(m.calls, req)
	return os.WriteFile(outputPath, []byte("re-encoded video"), 0o644)
}

// mockPublisher implements storage.Publisher for testing
type mockPublisher struct {
	shouldFail bool
	failError  error
	published  []storage.PublishRequest
}

func (m *mockPublisher) Publish(ctx context.Context, req storage.PublishRequest) (*storage.PublishResult, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.published = append(m.published, req)
	return &storage.PublishResult{
		FileID:    "published-id",
		FileName:  req.FileName,
		PublicURL: "https://drive.google.com/file/d/published-id/view",
		Size:      16,
	}, nil
}

// --- Test fixture ---

type fixture struct {
	fetcher     *mockFetcher
	sampler     *mockSampler
	detector    *mockDetector
	blurrer     *mockBlurrer
	reassembler *mockReassembler
	publisher   *mockPublisher
	cfg         *config.Config
	out         *bytes.Buffer
	scratch     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scratch := t.TempDir()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Paths.ScratchDirectory = scratch
	cfg.Pipeline.MaxWorkers = 3

	return &fixture{
		fetcher:     &mockFetcher{},
		sampler:     &mockSampler{frameCount: 5},
		detector:    &mockDetector{regionsPer: 1},
		blurrer:     &mockBlurrer{},
		reassembler: &mockReassembler{},
		publisher:   &mockPublisher{},
		cfg:         cfg,
		out:         &bytes.Buffer{},
		scratch:     scratch,
	}
}

func (f *fixture) service() *Service {
	return NewService(f.fetcher, f.sampler, f.detector, f.blurrer, f.reassembler, f.publisher, f.cfg, f.out)
}

func (f *fixture) assertScratchEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.scratch)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch directory not empty after run: %v", entries)
	}
}

const sourceURL = "https://cdn.example.com/submissions/workout-99.mp4"

// --- Tests ---

func TestProcessVideoSuccess(t *testing.T) {
	f := newFixture(t)
	f.sampler.frameCount = 4
	f.detector.regionsPer = 2

	result := f.service().ProcessVideo(context.Background(), sourceURL)

	if result.UsedFallback {
		t.Fatalf("unexpected fallback; output:\n%s", f.out.String())
	}
	if result.OriginalVideoURL != sourceURL {
		t.Errorf("OriginalVideoURL = %q", result.OriginalVideoURL)
	}
	if result.BlurredVideoURL == sourceURL || result.BlurredVideoURL == "" {
		t.Errorf("BlurredVideoURL = %q, want published URL", result.BlurredVideoURL)
	}
	if result.FacesFound != 8 {
		t.Errorf("FacesFound = %d, want 8 (4 frames x 2 regions)", result.FacesFound)
	}

	if len(f.publisher.published) != 1 {
		t.Fatalf("published %d times, want 1", len(f.publisher.published))
	}
	req := f.publisher.published[0]
	if !strings.HasPrefix(req.FileName, "workout-99-") || !strings.HasSuffix(req.FileName, "-blurred.mp4") {
		t.Errorf("published FileName = %q", req.FileName)
	}
	if req.MimeType != storage.MimeTypeMP4 {
		t.Errorf("published MimeType = %q", req.MimeType)
	}

	f.assertScratchEmpty(t)
}

func TestProcessVideoZeroFacesIsSuccess(t *testing.T) {
	f := newFixture(t)
	f.detector.regionsPer = 0

	result := f.service().ProcessVideo(context.Background(), sourceURL)

	if result.UsedFallback {
		t.Fatal("zero faces must not trigger fallback")
	}
	if result.FacesFound != 0 {
		t.Errorf("FacesFound = %d, want 0", result.FacesFound)
	}
	if f.blurrer.blurCount() != 0 {
		t.Errorf("blurrer invoked %d times for faceless frames", f.blurrer.blurCount())
	}
}

func TestProcessVideoFallbackPerStage(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture)
	}{
		{
			name: "fetch failure",
			setup: func(f *fixture) {
				f.fetcher.shouldFail = true
				f.fetcher.failError = fmt.Errorf("%w: status 404", domain.ErrFetch)
			},
		},
		{
			name: "extraction failure",
			setup: func(f *fixture) {
				f.sampler.shouldFail = true
				f.sampler.failError = fmt.Errorf("%w: corrupt container", domain.ErrNoFrames)
			},
		},
		{
			name: "model unavailable",
			setup: func(f *fixture) {
				f.detector.shouldFail = true
				f.detector.failError = fmt.Errorf("%w: cascade missing", domain.ErrModelUnavailable)
			},
		},
		{
			name: "blur failure",
			setup: func(f *fixture) {
				f.blurrer.shouldFail = true
				f.blurrer.failError = errors.New("frame unreadable")
			},
		},
		{
			name: "reencode failure",
			setup: func(f *fixture) {
				f.reassembler.shouldFail = true
				f.reassembler.failError = fmt.Errorf("%w: exit status 1", domain.ErrReencode)
			},
		},
		{
			name: "publish failure",
			setup: func(f *fixture) {
				f.publisher.shouldFail = true
				f.publisher.failError = fmt.Errorf("%w: quota exceeded", domain.ErrPublish)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			result := f.service().ProcessVideo(context.Background(), sourceURL)

			if !result.UsedFallback {
				t.Fatal("expected fallback result")
			}
			if result.BlurredVideoURL != sourceURL || result.OriginalVideoURL != sourceURL {
				t.Errorf("fallback URLs = (%q, %q), want both %q",
					result.BlurredVideoURL, result.OriginalVideoURL, sourceURL)
			}
			if result.FacesFound != 0 {
				t.Errorf("FacesFound = %d, want 0 on fallback", result.FacesFound)
			}
			if !strings.Contains(f.out.String(), "Fallback") {
				t.Error("fallback cause not logged")
			}

			f.assertScratchEmpty(t)
		})
	}
}

func TestProcessVideoTimeout(t *testing.T) {
	f := newFixture(t)
	f.cfg.Pipeline.PipelineTimeoutSeconds = 1
	f.cfg.Pipeline.TranscodeTimeoutSeconds = 1
	f.fetcher.blockOnCtx = true

	result := f.service().ProcessVideo(context.Background(), sourceURL)

	if !result.UsedFallback {
		t.Fatal("expected fallback on timeout")
	}
	if result.BlurredVideoURL != sourceURL {
		t.Errorf("BlurredVideoURL = %q, want source", result.BlurredVideoURL)
	}

	f.assertScratchEmpty(t)
}

func TestReencodeWaitsForAllBlurs(t *testing.T) {
	for _, n := range []int{1, 5, 50} {
		t.Run(fmt.Sprintf("%d frames", n), func(t *testing.T) {
			f := newFixture(t)
			f.sampler.frameCount = n
			f.detector.regionsPer = 1

			f.reassembler.onReencode = func() {
				// The join point: every frame must be blurred before the
				// transcoder reads the frame directory
				if got := f.blurrer.blurCount(); got != n {
					t.Errorf("reencode started with %d/%d frames blurred", got, n)
				}
			}

			result := f.service().ProcessVideo(context.Background(), sourceURL)
			if result.UsedFallback {
				t.Fatalf("unexpected fallback; output:\n%s", f.out.String())
			}
			if result.FacesFound != n {
				t.Errorf("FacesFound = %d, want %d", result.FacesFound, n)
			}

			if len(f.reassembler.calls) != 1 {
				t.Fatalf("reassembler called %d times", len(f.reassembler.calls))
			}
			req := f.reassembler.calls[0]
			if req.FramePattern != ffmpeg.FramePattern {
				t.Errorf("FramePattern = %q", req.FramePattern)
			}
			if req.FrameRate != f.cfg.Pipeline.SamplesPerSecond {
				t.Errorf("FrameRate = %g, want sampling rate %g", req.FrameRate, f.cfg.Pipeline.SamplesPerSecond)
			}
		})
	}
}

func TestFramePathsNeverChange(t *testing.T) {
	f := newFixture(t)
	f.sampler.frameCount = 5

	f.service().ProcessVideo(context.Background(), sourceURL)

	// Parallel detect/blur must operate on the sampler's paths verbatim;
	// renaming would reorder playback.
	f.blurrer.mu.Lock()
	defer f.blurrer.mu.Unlock()
	for _, p := range f.blurrer.blurred {
		base := filepath.Base(p)
		if !strings.HasPrefix(base, "frame_") || !strings.HasSuffix(base, ".jpg") {
			t.Errorf("blurred unexpected path %q", p)
		}
	}
}

func TestPublishedFileName(t *testing.T) {
	runID := "0123456789abcdef"

	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/v/workout-99.mp4", "workout-99-01234567-blurred.mp4"},
		{"https://cdn.example.com/v/clip.mov", "clip-01234567-blurred.mp4"},
		{"https://cdn.example.com/", "video-01234567-blurred.mp4"},
	}

	for _, tt := range tests {
		if got := publishedFileName(tt.url, runID); got != tt.want {
			t.Errorf("publishedFileName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
