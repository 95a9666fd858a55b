package detection

import "context"

// FaceDetector defines the interface for locating faces in a frame image
// This is a port that can be implemented by different infrastructure adapters
type FaceDetector interface {
	// Detect returns the face regions found in the frame at framePath,
	// already padded and clamped to the frame bounds. An empty slice is a
	// normal outcome, not an error.
	Detect(ctx context.Context, framePath string) ([]FaceRegion, error)

	// Close releases any resources held by the detector
	Close()
}

// FaceBlurrer defines the interface for irreversibly blurring face regions
// of a frame image on disk
type FaceBlurrer interface {
	// Blur applies an aggressive blur to each region of the frame at
	// framePath and rewrites the file in place. An empty region list leaves
	// the file untouched.
	Blur(ctx context.Context, framePath string, regions []FaceRegion) error
}
