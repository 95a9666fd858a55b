package ffmpeg

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/video"
)

func TestReencodeOptionContract(t *testing.T) {
	runner := &mockRunner{}
	reassembler := NewReassembler(WithReassemblerCommandRunner(runner))

	req, err := video.NewReencodeRequest("/tmp/run/frames", FramePattern, 1.0, "/tmp/run/source.mp4")
	if err != nil {
		t.Fatalf("NewReencodeRequest: %v", err)
	}

	if err := reassembler.Reencode(context.Background(), req, "/tmp/run/blurred.mp4"); err != nil {
		t.Fatalf("Reencode: %v", err)
	}

	args := runner.lastCall()

	// The option contract the pipeline depends on: exact sampling rate in,
	// audio re-muxed from the original, duration bounded by the shorter
	// stream, progressive-playback container.
	checks := []struct {
		flag  string
		value string
	}{
		{"-framerate", "1"},
		{"-i", filepath.Join("/tmp/run/frames", FramePattern)},
		{"-i", "/tmp/run/source.mp4"},
		{"-map", "0:v"},
		{"-map", "1:a?"},
		{"-c:v", "libx264"},
		{"-pix_fmt", "yuv420p"},
		{"-c:a", "aac"},
		{"-movflags", "+faststart"},
	}
	for _, c := range checks {
		if !hasArgPair(args, c.flag, c.value) {
			t.Errorf("missing %s %s in args: %v", c.flag, c.value, args)
		}
	}

	hasShortest := false
	for _, a := range args {
		if a == "-shortest" {
			hasShortest = true
		}
	}
	if !hasShortest {
		t.Errorf("missing -shortest in args: %v", args)
	}

	if args[len(args)-1] != "/tmp/run/blurred.mp4" {
		t.Errorf("output path not last arg: %v", args)
	}
}

func TestReencodeFailureIsReencodeError(t *testing.T) {
	runner := &mockRunner{shouldFail: true, failError: errors.New("exit status 1")}
	reassembler := NewReassembler(WithReassemblerCommandRunner(runner))

	req, _ := video.NewReencodeRequest("/tmp/run/frames", FramePattern, 1.0, "/tmp/run/source.mp4")
	err := reassembler.Reencode(context.Background(), req, "/tmp/run/blurred.mp4")

	if !errors.Is(err, anonymize.ErrReencode) {
		t.Errorf("error %v is not ErrReencode", err)
	}
}

func TestReencodeRejectsInvalidRequest(t *testing.T) {
	runner := &mockRunner{}
	reassembler := NewReassembler(WithReassemblerCommandRunner(runner))

	req := &video.ReencodeRequest{FrameDir: "", FramePattern: FramePattern, FrameRate: 1.0, OriginalVideoPath: "/tmp/run/source.mp4"}
	if err := reassembler.Reencode(context.Background(), req, "/tmp/run/blurred.mp4"); err == nil {
		t.Fatal("expected validation error")
	}
	if len(runner.calls) != 0 {
		t.Error("transcoder invoked despite invalid request")
	}
}
