// Package errors provides structured error types for the topotab application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes split into two families:
//   - Structural codes (FORMAT_ERROR, SCHEMA_AMBIGUOUS, ...) abort the
//     conversion of the current file.
//   - Element codes (UNRESOLVED_ENDPOINT, MISSING_DEVICE_IDENTITY,
//     ATTRIBUTE_CONFLICT) describe a single skipped or degraded element and
//     are accumulated into a run report instead of surfacing as failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFormat, "not a drawio document: %s", path)
//	if errors.Is(err, errors.ErrCodeFormat) {
//	    // Handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFormat, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors: the current file cannot be converted.
	ErrCodeFormat          Code = "FORMAT_ERROR"
	ErrCodeSchemaAmbiguous Code = "SCHEMA_AMBIGUOUS"

	// Element errors: a single edge or record is skipped, the run continues.
	ErrCodeUnresolvedEndpoint    Code = "UNRESOLVED_ENDPOINT"
	ErrCodeMissingDeviceIdentity Code = "MISSING_DEVICE_IDENTITY"

	// Warnings: recorded, never fatal.
	ErrCodeAttributeConflict    Code = "ATTRIBUTE_CONFLICT"
	ErrCodeAmbiguousContainment Code = "AMBIGUOUS_CONTAINMENT"
	ErrCodeUnparsedLabel        Code = "UNPARSED_LABEL"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidEncoding Code = "INVALID_ENCODING"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Structural reports whether a code aborts the conversion of the whole file,
// as opposed to skipping a single element.
func (c Code) Structural() bool {
	switch c {
	case ErrCodeFormat, ErrCodeSchemaAmbiguous, ErrCodeInvalidInput,
		ErrCodeInvalidFormat, ErrCodeInvalidEncoding, ErrCodeInvalidConfig,
		ErrCodeInvalidPath, ErrCodeNotFound, ErrCodeFileNotFound,
		ErrCodeInternal, ErrCodeUnsupported:
		return true
	}
	return false
}

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
// It unwraps the error chain looking for an *Error with a matching code.
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
