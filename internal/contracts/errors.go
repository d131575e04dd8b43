package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// RateLimitError marks a failure as transient rate limiting, the only class
// of error the executor retries. StatusCode is 429 when known.
type RateLimitError struct {
	StatusCode int
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("rate limited (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an extraction failure should be retried with
// backoff. Typed *RateLimitError is authoritative; the textual fallback
// covers collaborators that only surface untyped failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate-limit")
}
