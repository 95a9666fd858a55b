package storage

import "context"

// Fetcher defines the interface for retrieving a remote video into a local
// file. This is a port that can be implemented by different infrastructure
// adapters.
type Fetcher interface {
	// Fetch streams the bytes at sourceURL into destPath without buffering
	// the whole body in memory
	Fetch(ctx context.Context, sourceURL, destPath string) error
}

// Publisher defines the interface for publishing a processed video to a
// durable object store and obtaining a public URL
type Publisher interface {
	// Publish uploads the file described by req and returns its public URL
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
}

// PublishRequest contains the parameters needed to publish a processed video
type PublishRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in the object store
	MimeType  string // MIME type of the file
}

// PublishResult contains the result of a successful publish
type PublishResult struct {
	FileID    string // Object store file ID
	FileName  string // Name of the published file
	PublicURL string // Durable, publicly readable URL
	Size      int64  // Size of the published file in bytes
}

// MIME type constants for common media formats
const (
	MimeTypeMP4  = "video/mp4"
	MimeTypeJPEG = "image/jpeg"
)
