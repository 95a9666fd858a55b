package detection

// FaceRegion is a padded, clamped bounding box in the pixel space of one
// frame. Zero or more per frame; purely derived, never persisted.
type FaceRegion struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Empty reports whether the region covers no pixels
func (r FaceRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Within reports whether the region lies entirely inside a frame of the
// given dimensions
func (r FaceRegion) Within(frameWidth, frameHeight int) bool {
	return r.Left >= 0 && r.Top >= 0 &&
		r.Left+r.Width <= frameWidth &&
		r.Top+r.Height <= frameHeight
}

// PadAndClamp expands a raw detection box by padFraction of its own width and
// height on every side, then clamps the result to the frame bounds. Missed
// pixels around a face are worse than over-blurred background, so the policy
// always errs toward the larger box. The boolean is false when nothing of the
// box survives clamping.
func PadAndClamp(raw FaceRegion, frameWidth, frameHeight int, padFraction float64) (FaceRegion, bool) {
	if raw.Empty() || frameWidth <= 0 || frameHeight <= 0 {
		return FaceRegion{}, false
	}

	padX := int(float64(raw.Width) * padFraction)
	padY := int(float64(raw.Height) * padFraction)

	left := raw.Left - padX
	top := raw.Top - padY
	right := raw.Left + raw.Width + padX
	bottom := raw.Top + raw.Height + padY

	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	if right > frameWidth {
		right = frameWidth
	}
	if bottom > frameHeight {
		bottom = frameHeight
	}

	if right <= left || bottom <= top {
		return FaceRegion{}, false
	}

	return FaceRegion{
		Left:   left,
		Top:    top,
		Width:  right - left,
		Height: bottom - top,
	}, true
}
