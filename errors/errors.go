// Package errors provides error handling for gong-mcp.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors for the analysis job subsystem.
// Use these with errors.Is() for type-safe error checking.
// Wrap them with errors.Wrap() to add context while preserving the kind.
var (
	// ErrNotFound indicates an unknown job id or a missing results handle
	ErrNotFound = New("not found")

	// ErrNotReady indicates results were requested before the job completed
	ErrNotReady = New("not ready")

	// ErrInvalidTransition indicates an attempt to mutate a terminal job
	ErrInvalidTransition = New("invalid transition")

	// ErrRateLimited indicates the upstream API signalled 429/529.
	// Transient: retried internally, surfaced only when retries exhaust.
	ErrRateLimited = New("rate limited")

	// ErrUnavailable indicates an external dependency failure, terminal
	// for the job that hit it
	ErrUnavailable = New("service unavailable")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")
)

// Kind maps an error to its job-facing classification string, the value
// persisted in a failed job's error record. Unrecognized errors report as
// "unavailable" since anything that kills a job without a known kind came
// from an external dependency.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrNotFound):
		return "not_found"
	case Is(err, ErrNotReady):
		return "not_ready"
	case Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case Is(err, ErrRateLimited):
		return "rate_limited"
	case Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "unavailable"
	}
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
