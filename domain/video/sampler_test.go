package video

import (
	"strings"
	"testing"
)

func TestNewSampleRequest(t *testing.T) {
	tests := []struct {
		name             string
		sourcePath       string
		samplesPerSecond float64
		wantErr          bool
		errContains      string
	}{
		{
			name:             "valid request",
			sourcePath:       "/tmp/run/source.mp4",
			samplesPerSecond: 1.0,
		},
		{
			name:             "fractional sampling rate",
			sourcePath:       "/tmp/run/source.mp4",
			samplesPerSecond: 0.5,
		},
		{
			name:             "missing source path",
			sourcePath:       "",
			samplesPerSecond: 1.0,
			wantErr:          true,
			errContains:      "source path is required",
		},
		{
			name:             "zero sampling rate",
			sourcePath:       "/tmp/run/source.mp4",
			samplesPerSecond: 0,
			wantErr:          true,
			errContains:      "must be positive",
		},
		{
			name:             "negative sampling rate",
			sourcePath:       "/tmp/run/source.mp4",
			samplesPerSecond: -2,
			wantErr:          true,
			errContains:      "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSampleRequest(tt.sourcePath, tt.samplesPerSecond)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.SourcePath != tt.sourcePath {
				t.Errorf("SourcePath = %q, want %q", req.SourcePath, tt.sourcePath)
			}
			if req.SamplesPerSecond != tt.samplesPerSecond {
				t.Errorf("SamplesPerSecond = %g, want %g", req.SamplesPerSecond, tt.samplesPerSecond)
			}
		})
	}
}

func TestNewReencodeRequest(t *testing.T) {
	tests := []struct {
		name        string
		frameDir    string
		pattern     string
		frameRate   float64
		original    string
		wantErr     bool
		errContains string
	}{
		{
			name:      "valid request",
			frameDir:  "/tmp/run/frames",
			pattern:   "frame_%05d.jpg",
			frameRate: 1.0,
			original:  "/tmp/run/source.mp4",
		},
		{
			name:        "missing frame directory",
			frameDir:    "",
			pattern:     "frame_%05d.jpg",
			frameRate:   1.0,
			original:    "/tmp/run/source.mp4",
			wantErr:     true,
			errContains: "frame directory is required",
		},
		{
			name:        "missing frame pattern",
			frameDir:    "/tmp/run/frames",
			pattern:     "",
			frameRate:   1.0,
			original:    "/tmp/run/source.mp4",
			wantErr:     true,
			errContains: "frame pattern is required",
		},
		{
			name:        "zero frame rate",
			frameDir:    "/tmp/run/frames",
			pattern:     "frame_%05d.jpg",
			frameRate:   0,
			original:    "/tmp/run/source.mp4",
			wantErr:     true,
			errContains: "must be positive",
		},
		{
			name:        "missing original video",
			frameDir:    "/tmp/run/frames",
			pattern:     "frame_%05d.jpg",
			frameRate:   1.0,
			original:    "",
			wantErr:     true,
			errContains: "original video path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReencodeRequest(tt.frameDir, tt.pattern, tt.frameRate, tt.original)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
