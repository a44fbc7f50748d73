// Package errors provides structured error types for brewlens.
//
// Error codes let callers distinguish fatal conditions (Homebrew itself is
// missing) from recoverable ones (a metadata query failed, the remote API is
// unreachable) without string matching:
//
//	err := errors.New(errors.ErrCodeBrewUnavailable, "brew not found in PATH")
//	if errors.Is(err, errors.ErrCodeBrewUnavailable) {
//	    // nothing to enumerate, abort the run
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSourceUnavailable, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"

	// External collaborator errors
	ErrCodeBrewUnavailable   Code = "BREW_UNAVAILABLE"
	ErrCodeQueryFailure      Code = "QUERY_FAILURE"
	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

	// Resource not found errors
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Internal errors
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
