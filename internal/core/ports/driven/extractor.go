package driven

// TextExtractor turns an item or comment body into plain text.
// Failures are reported as *domain.ExtractionError; whether they fail the
// item is decided by the caller's ignore_error policy.
type TextExtractor interface {
	Extract(body, mimeType string) (string, error)
}
