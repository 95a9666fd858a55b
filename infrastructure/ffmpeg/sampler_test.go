package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/video"
)

// mockRunner records invocations and optionally fabricates transcoder output
type mockRunner struct {
	calls      [][]string
	shouldFail bool
	failError  error
	framesOut  int // number of frame files to write on Run
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.shouldFail {
		return m.failError
	}
	if m.framesOut > 0 {
		// The last argument is the image2 output pattern
		outDir := filepath.Dir(args[len(args)-1])
		for i := 1; i <= m.framesOut; i++ {
			path := filepath.Join(outDir, fmt.Sprintf(FramePattern, i))
			if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.shouldFail {
		return nil, m.failError
	}
	return []byte("ffmpeg version 6.0"), nil
}

func (m *mockRunner) lastCall() []string {
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestExtractFramesBuildsOrderedSequence(t *testing.T) {
	runner := &mockRunner{framesOut: 5}
	sampler := NewSampler(WithSamplerCommandRunner(runner))
	outputDir := t.TempDir()

	req, err := video.NewSampleRequest("/tmp/run/source.mp4", 1.0)
	if err != nil {
		t.Fatalf("NewSampleRequest: %v", err)
	}

	frames, err := sampler.ExtractFrames(context.Background(), req, outputDir)
	if err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	if len(frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(frames))
	}
	for i, f := range frames {
		if f.SequenceIndex != i {
			t.Errorf("frame %d has SequenceIndex %d", i, f.SequenceIndex)
		}
		want := filepath.Join(outputDir, fmt.Sprintf(FramePattern, i+1))
		if f.Path != want {
			t.Errorf("frame %d path = %q, want %q", i, f.Path, want)
		}
	}

	args := runner.lastCall()
	if !hasArgPair(args, "-vf", "fps=1") {
		t.Errorf("missing sampling filter in args: %v", args)
	}
	if !hasArgPair(args, "-q:v", "2") {
		t.Errorf("missing quality setting in args: %v", args)
	}
}

func TestExtractFramesFractionalRate(t *testing.T) {
	runner := &mockRunner{framesOut: 1}
	sampler := NewSampler(WithSamplerCommandRunner(runner))

	req, _ := video.NewSampleRequest("/tmp/run/source.mp4", 0.5)
	if _, err := sampler.ExtractFrames(context.Background(), req, t.TempDir()); err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	if !hasArgPair(runner.lastCall(), "-vf", "fps=0.5") {
		t.Errorf("fractional rate not passed through: %v", runner.lastCall())
	}
}

func TestExtractFramesZeroFramesIsExtractionError(t *testing.T) {
	runner := &mockRunner{framesOut: 0} // ffmpeg "succeeds" but writes nothing
	sampler := NewSampler(WithSamplerCommandRunner(runner))

	req, _ := video.NewSampleRequest("/tmp/run/corrupt.mp4", 1.0)
	_, err := sampler.ExtractFrames(context.Background(), req, t.TempDir())

	if !errors.Is(err, anonymize.ErrNoFrames) {
		t.Errorf("error %v is not ErrNoFrames", err)
	}
}

func TestExtractFramesTranscoderFailure(t *testing.T) {
	runner := &mockRunner{shouldFail: true, failError: errors.New("exit status 1")}
	sampler := NewSampler(WithSamplerCommandRunner(runner))

	req, _ := video.NewSampleRequest("/tmp/run/corrupt.mp4", 1.0)
	_, err := sampler.ExtractFrames(context.Background(), req, t.TempDir())

	if !errors.Is(err, anonymize.ErrNoFrames) {
		t.Errorf("error %v is not ErrNoFrames", err)
	}
}

func TestSamplerVerifyInstalled(t *testing.T) {
	runner := &mockRunner{}
	sampler := NewSampler(WithSamplerCommandRunner(runner))

	if err := sampler.VerifyInstalled(context.Background()); err != nil {
		t.Fatalf("VerifyInstalled: %v", err)
	}

	runner.shouldFail = true
	runner.failError = errors.New("executable file not found")
	if err := sampler.VerifyInstalled(context.Background()); err == nil {
		t.Fatal("expected error when ffmpeg is missing")
	}
}
