package video

// FrameSample is one still image extracted from the source video at a fixed
// time interval. SequenceIndex is render order; the collection produced by a
// sampler is dense (no gaps). When blur is applied the frame is rewritten in
// place: same index, same path, new bytes.
type FrameSample struct {
	SequenceIndex int
	Path          string
}
