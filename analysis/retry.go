package analysis

import (
	"time"

	"github.com/teranos/gong-mcp/errors"
)

// retrier is the backoff state machine wrapped around each batch's
// summarization call, independent of the job state machine. Only
// rate-limit errors are retried; anything else fails immediately.
type retrier struct {
	maxAttempts int
	attempt     int
	sleep       func(time.Duration)
}

func newRetrier(maxAttempts int, sleep func(time.Duration)) *retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &retrier{maxAttempts: maxAttempts, sleep: sleep}
}

// Next reports whether the call should be attempted again after err,
// sleeping the appropriate backoff first. A server-provided retry hint
// takes precedence; otherwise the delay grows with the attempt count,
// capped at two minutes.
func (r *retrier) Next(err error) bool {
	if !errors.Is(err, errors.ErrRateLimited) {
		return false
	}

	r.attempt++
	if r.attempt >= r.maxAttempts {
		return false
	}

	delay, ok := errors.RetryAfterHint(err)
	if !ok {
		delay = time.Duration(30*r.attempt) * time.Second
		if delay > 120*time.Second {
			delay = 120 * time.Second
		}
	}

	r.sleep(delay)
	return true
}

// Attempts returns the number of failed attempts observed so far
func (r *retrier) Attempts() int {
	return r.attempt
}
