package anonymize

import (
	"errors"
	"fmt"
)

// Stage identifies one step of the anonymization pipeline
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageSample   Stage = "sample"
	StageDetect   Stage = "detect"
	StageBlur     Stage = "blur"
	StageReencode Stage = "reencode"
	StagePublish  Stage = "publish"
)

// Sentinel errors for the pipeline failure classes. Every one of them is
// pipeline-fatal: the orchestrator converts it into a fallback result rather
// than propagating it to the caller.
var (
	// ErrFetch indicates the source video could not be downloaded
	ErrFetch = errors.New("source video fetch failed")

	// ErrNoFrames indicates frame extraction produced zero frames, meaning
	// the source could not be decoded at all. This is distinct from a
	// decodable video that happens to contain no faces.
	ErrNoFrames = errors.New("no frames extracted from source video")

	// ErrModelUnavailable indicates the face-detection model could not be
	// loaded. Anonymization is never skipped silently by pretending zero
	// faces were found.
	ErrModelUnavailable = errors.New("face detection model unavailable")

	// ErrReencode indicates the frame sequence could not be re-encoded
	ErrReencode = errors.New("video re-encode failed")

	// ErrPublish indicates the processed video could not be published
	ErrPublish = errors.New("processed video publish failed")

	// ErrTimeout indicates the overall pipeline deadline was exceeded
	ErrTimeout = errors.New("pipeline deadline exceeded")
)

// StageError tags an underlying failure with the pipeline stage it occurred
// in, so the fallback cause can be logged with enough context to diagnose.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with its originating stage
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
