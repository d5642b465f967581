package github

import (
	"errors"
	"fmt"
)

// ErrRateLimitExhausted is returned when a search call stays rate limited
// through every retry.
var ErrRateLimitExhausted = errors.New("github search: rate limit retries exhausted")

// UpstreamError is a non-retryable failure response from the search API
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github search api error %d: %s", e.Status, e.Body)
}
