// Package errs defines the coded error type shared by every stage of the
// planning pipeline. Stages wrap their failures in an *Error so the caller
// can tell an auth problem from a guard conflict without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure class.
type Code string

const (
	// Authentication / credential errors.
	CodeAuthFailed Code = "AUTH_FAILED"

	// Remote task-list errors.
	CodeListNotFound       Code = "LIST_NOT_FOUND"
	CodeOutputListNotEmpty Code = "OUTPUT_LIST_NOT_EMPTY"

	// LLM completion errors.
	CodeLLMTransient Code = "LLM_TRANSIENT"
	CodeLLMPermanent Code = "LLM_PERMANENT"

	// Schedule handling errors.
	CodeParseFailed Code = "SCHEDULE_PARSE_FAILED"
	CodeWriteFailed Code = "SCHEDULE_WRITE_FAILED"

	// Configuration errors.
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Error is a structured error with a code, an optional cause, and a
// retryability hint. Only LLM_TRANSIENT errors are retried anywhere in
// the pipeline.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, so errors.Is(err, errs.New(errs.CodeAuthFailed, ""))
// works regardless of message.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around a cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Transient creates a retryable Error around a cause.
func Transient(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Retryable: true, Cause: cause}
}

// CodeOf extracts the code from err, or "" if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether err is transient and may succeed on retry.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Retryable
}
