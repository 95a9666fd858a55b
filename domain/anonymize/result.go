package anonymize

// Result is the outcome of one pipeline run. It is always success-shaped:
// on fallback both URLs equal the source URL and the caller stores the
// original video unchanged. A submission is never blocked on anonymization.
type Result struct {
	// BlurredVideoURL points to the published, face-blurred asset, or to
	// the original source URL when UsedFallback is true
	BlurredVideoURL string

	// OriginalVideoURL always equals the source URL the caller passed in
	OriginalVideoURL string

	// FacesFound is the total number of face regions blurred across all
	// sampled frames. Observability only; zero on fallback.
	FacesFound int

	// UsedFallback reports that a stage failed and the original video
	// should be served unblurred
	UsedFallback bool
}

// Fallback builds the result for a failed run
func Fallback(sourceURL string) *Result {
	return &Result{
		BlurredVideoURL:  sourceURL,
		OriginalVideoURL: sourceURL,
		FacesFound:       0,
		UsedFallback:     true,
	}
}
