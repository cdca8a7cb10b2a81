package errors

import (
	"fmt"
	"time"
)

// RateLimitedError wraps ErrRateLimited with the upstream's retry hint.
// errors.Is(err, ErrRateLimited) still matches; use RetryAfterHint to
// recover the wait duration.
type RateLimitedError struct {
	RetryAfter time.Duration // 0 when the upstream gave no hint
	msg        string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.msg, e.RetryAfter)
	}
	return e.msg
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// NewRateLimitedError creates a rate-limited error carrying an optional
// retry hint from the upstream API
func NewRateLimitedError(retryAfter time.Duration, format string, args ...interface{}) error {
	return &RateLimitedError{
		RetryAfter: retryAfter,
		msg:        fmt.Sprintf(format, args...),
	}
}

// RetryAfterHint extracts the retry hint from a rate-limited error chain.
// Returns (0, false) when the error carries no hint.
func RetryAfterHint(err error) (time.Duration, bool) {
	var rl *RateLimitedError
	if As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter, true
	}
	return 0, false
}
