// Package reliability classifies transient failures and paces retries for
// clients of the turn API. The service itself never retries generation or
// plan calls; retrying a whole turn is a client decision.
package reliability

import "time"

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Backoff computes a deterministic capped exponential backoff for the given
// zero-based attempt.
func Backoff(attempt int, base, cap time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
