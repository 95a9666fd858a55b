package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/storage"
)

// Fetcher implements storage.Fetcher over plain HTTP
type Fetcher struct {
	client *http.Client
}

// Option is a functional option for configuring Fetcher
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (for testing)
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a new HTTP fetcher
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch implements storage.Fetcher. The body is streamed straight to disk;
// the overall pipeline deadline rides on ctx.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid source URL: %v", anonymize.ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", anonymize.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d from %s", anonymize.ErrFetch, resp.StatusCode, sourceURL)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: failed to create destination file: %v", anonymize.ErrFetch, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("%w: download interrupted: %v", anonymize.ErrFetch, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize destination file: %v", anonymize.ErrFetch, err)
	}

	return nil
}

// Ensure Fetcher implements storage.Fetcher
var _ storage.Fetcher = (*Fetcher)(nil)
