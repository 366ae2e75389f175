package github

import "fmt"

// NotFoundError indicates the requested username does not exist upstream.
// It is never retried and is surfaced to the caller as-is.
type NotFoundError struct {
	Username string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("github user %q not found", e.Username)
}

// UpstreamError indicates a non-success response from the GitHub API
// (rate limiting, auth failure, server error). The status code and body
// are preserved for diagnostics. No retries happen at this layer.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github API returned status %d: %s", e.StatusCode, e.Body)
}
