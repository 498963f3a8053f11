// Package errors provides structured error types for pypilink.
//
// Every failure of a lookup is classified into exactly one [Code]. The lookup
// pipeline switches on the code to decide what, if anything, is said back to
// the chat:
//
//   - NOT_FOUND: the registry has no such package or version; the message is
//     safe to show verbatim.
//   - NETWORK_ERROR, HTTP_ERROR, DECODE_ERROR, MALFORMED_DATA: collapsed into
//     one generic "try again later" reply.
//   - INVALID_INPUT, INVALID_PACKAGE: the request was rejected before any
//     network call.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "PyPI couldn't find %s", name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // say it
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Registry lookup errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeNetwork       Code = "NETWORK_ERROR"
	ErrCodeHTTP          Code = "HTTP_ERROR"
	ErrCodeDecode        Code = "DECODE_ERROR"
	ErrCodeMalformedData Code = "MALFORMED_DATA"

	// Internal errors
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the outermost *Error and compares its code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
