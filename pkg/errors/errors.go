// Package errors provides classified errors shared by the CLI and the
// API server. Every failure that crosses a package boundary carries an
// ErrorCode so callers can map it to an exit code or HTTP status without
// string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures into stable, machine-readable categories.
type ErrorCode string

const (
	// ErrCodeInvalidSelector marks a query selector that failed validation
	// before any API call was made.
	ErrCodeInvalidSelector ErrorCode = "INVALID_SELECTOR"

	// ErrCodeNotFound marks a named resource the cluster does not have.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAPIUnavailable marks an API server call that failed outright.
	ErrCodeAPIUnavailable ErrorCode = "API_UNAVAILABLE"

	// ErrCodeMalformedResource marks a fetched record missing fields the
	// row mapper cannot do without.
	ErrCodeMalformedResource ErrorCode = "MALFORMED_RESOURCE"

	// HTTP-facing codes used by the serve mode.
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error is a classified error with an optional cause and detail map.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New returns a classified error without a cause.
func New(code ErrorCode, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf returns a classified error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code ErrorCode, message string, cause error) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WrapWithContext attaches a code, message and detail map to a cause.
func WrapWithContext(code ErrorCode, message string, cause error, details map[string]any) error {
	return &Error{Code: code, Message: message, Cause: cause, Details: details}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Unclassified errors report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err (or anything it wraps) carries code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
