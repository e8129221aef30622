// Package errors provides standardized domain errors with codes for the
// asset monitor.
//
// Usage:
//
//	// In services - return typed errors
//	if !info.IsDir() {
//	    return errors.InvalidArgument("not a directory")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    // no handler registered under that key
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeInvalidArgument marks caller errors, e.g. registering a path that
	// is not a directory. Never retried automatically.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNotFound marks lookups of unregistered directories or handler keys.
	CodeNotFound Code = "NOT_FOUND"
	// CodeAlreadyExists marks duplicate handler registration for a directory.
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	// CodeWatchFailed marks OS watch establishment failures (e.g. inotify
	// limits). Surfaced at registration time; retry/backoff is the caller's.
	CodeWatchFailed Code = "WATCH_FAILED"
	// CodeShutDown marks calls against a service that has been shut down.
	CodeShutDown Code = "SHUT_DOWN"
	// CodeInternal marks everything else.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists   = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrWatchFailed     = &Error{Code: CodeWatchFailed, Message: "watch failed"}
	ErrShutDown        = &Error{Code: CodeShutDown, Message: "service shut down"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// InvalidArgument creates a caller error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

// InvalidArgumentf creates a caller error with a formatted message.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates a duplicate registration error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// WatchFailed creates a resource error for a failed OS watch.
func WatchFailed(msg string, cause error) *Error {
	return &Error{Code: CodeWatchFailed, Message: msg, cause: cause}
}

// ShutDown creates an error for use of a stopped service.
func ShutDown(msg string) *Error {
	return &Error{Code: CodeShutDown, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with additional context while preserving the domain
// error code if present.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return &Error{Code: domainErr.Code, Message: msg, cause: err}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
