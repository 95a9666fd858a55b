package detection

import "testing"

func TestPadAndClamp(t *testing.T) {
	tests := []struct {
		name        string
		raw         FaceRegion
		frameW      int
		frameH      int
		padFraction float64
		want        FaceRegion
		wantOK      bool
	}{
		{
			name:        "centered box pads on all sides",
			raw:         FaceRegion{Left: 100, Top: 100, Width: 100, Height: 100},
			frameW:      640,
			frameH:      480,
			padFraction: 0.2,
			want:        FaceRegion{Left: 80, Top: 80, Width: 140, Height: 140},
			wantOK:      true,
		},
		{
			name:        "box at origin clamps left and top",
			raw:         FaceRegion{Left: 0, Top: 0, Width: 100, Height: 100},
			frameW:      640,
			frameH:      480,
			padFraction: 0.2,
			want:        FaceRegion{Left: 0, Top: 0, Width: 120, Height: 120},
			wantOK:      true,
		},
		{
			name:        "box at bottom-right clamps right and bottom",
			raw:         FaceRegion{Left: 540, Top: 380, Width: 100, Height: 100},
			frameW:      640,
			frameH:      480,
			padFraction: 0.2,
			want:        FaceRegion{Left: 520, Top: 360, Width: 120, Height: 120},
			wantOK:      true,
		},
		{
			name:        "zero padding is identity",
			raw:         FaceRegion{Left: 10, Top: 20, Width: 30, Height: 40},
			frameW:      640,
			frameH:      480,
			padFraction: 0,
			want:        FaceRegion{Left: 10, Top: 20, Width: 30, Height: 40},
			wantOK:      true,
		},
		{
			name:        "box larger than frame clamps to full frame",
			raw:         FaceRegion{Left: -50, Top: -50, Width: 800, Height: 600},
			frameW:      640,
			frameH:      480,
			padFraction: 0.2,
			want:        FaceRegion{Left: 0, Top: 0, Width: 640, Height: 480},
			wantOK:      true,
		},
		{
			name:        "box entirely outside the frame",
			raw:         FaceRegion{Left: 700, Top: 500, Width: 50, Height: 50},
			frameW:      640,
			frameH:      480,
			padFraction: 0.2,
			wantOK:      false,
		},
		{
			name:        "empty box",
			raw:         FaceRegion{Left: 10, Top: 10, Width: 0, Height: 0},
			frameW:      640,
			frameH:      480,
			padFraction: 0.2,
			wantOK:      false,
		},
		{
			name:        "degenerate frame",
			raw:         FaceRegion{Left: 10, Top: 10, Width: 50, Height: 50},
			frameW:      0,
			frameH:      0,
			padFraction: 0.2,
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PadAndClamp(tt.raw, tt.frameW, tt.frameH, tt.padFraction)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("region = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Every surviving region must lie inside the frame regardless of input.
func TestPadAndClampContainment(t *testing.T) {
	const frameW, frameH = 640, 480

	raws := []FaceRegion{
		{Left: 0, Top: 0, Width: 30, Height: 30},
		{Left: -20, Top: -20, Width: 100, Height: 100},
		{Left: 600, Top: 440, Width: 100, Height: 100},
		{Left: 300, Top: 200, Width: 1, Height: 1},
		{Left: 0, Top: 0, Width: frameW, Height: frameH},
		{Left: 639, Top: 479, Width: 500, Height: 500},
	}
	fractions := []float64{0, 0.1, 0.2, 0.5, 1.0}

	for _, raw := range raws {
		for _, pad := range fractions {
			got, ok := PadAndClamp(raw, frameW, frameH, pad)
			if !ok {
				continue
			}
			if got.Empty() {
				t.Errorf("PadAndClamp(%+v, pad=%g) returned empty region with ok=true", raw, pad)
			}
			if !got.Within(frameW, frameH) {
				t.Errorf("PadAndClamp(%+v, pad=%g) = %+v escapes frame bounds", raw, pad, got)
			}
		}
	}
}

func TestFaceRegionWithin(t *testing.T) {
	r := FaceRegion{Left: 10, Top: 10, Width: 20, Height: 20}

	if !r.Within(30, 30) {
		t.Error("region touching the frame edge should be within bounds")
	}
	if r.Within(29, 30) {
		t.Error("region overflowing the right edge should not be within bounds")
	}
	if r.Within(30, 29) {
		t.Error("region overflowing the bottom edge should not be within bounds")
	}
}
