// Package errs defines application error codes shared across the
// orchestration engine and its adapters. Codes classify an error's kind
// so callers can branch on behavior (swallow a cancellation, suppress a
// conflicting update) without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECANCELLED = "cancelled"
	ECONFLICT  = "conflict"
	EINTERNAL  = "internal"
	EINVALID   = "invalid"
	ENOTFOUND  = "not_found"
)

// Error is an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("application error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an *Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of an application error, EINTERNAL for any
// non-application error, and the empty string for nil. Wrapped errors
// are unwrapped before inspection.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of an application error, a generic
// message for any non-application error, and the empty string for nil.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// IsCancelled reports whether err is the cancellation kind. Cancellation
// is an expected outcome of cooperative abort, not a failure.
func IsCancelled(err error) bool {
	return err != nil && ErrorCode(err) == ECANCELLED
}

// IsConflict reports whether err is the stale-update conflict kind.
func IsConflict(err error) bool {
	return err != nil && ErrorCode(err) == ECONFLICT
}
