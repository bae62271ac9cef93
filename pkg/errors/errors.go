// Package errors provides structured error types for fatesviz.
//
// This package defines error codes and types that enable:
//   - Consistent error reporting from the CLI and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes are grouped by the failure they describe:
//   - Configuration errors (INVALID_*, MISSING_PATH, UNSUPPORTED_ALLOMETRY)
//     are fatal and reported before any work starts.
//   - Data errors (SHAPE_MISMATCH, MISSING_VARIABLE, YEAR_NOT_FOUND) mean an
//     input file does not hold what the model documents.
//   - I/O errors (DATASET_OPEN, OUTPUT_WRITE) are propagated without retry.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMode, "unknown mode: %s", mode)
//	if errors.Is(err, errors.ErrCodeInvalidMode) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDatasetOpen, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidMode          Code = "INVALID_MODE"
	ErrCodeInvalidFormat        Code = "INVALID_FORMAT"
	ErrCodeInvalidPath          Code = "INVALID_PATH"
	ErrCodeMissingPath          Code = "MISSING_PATH"
	ErrCodeUnsupportedAllometry Code = "UNSUPPORTED_ALLOMETRY"

	// Data errors
	ErrCodeShapeMismatch   Code = "SHAPE_MISMATCH"
	ErrCodeMissingVariable Code = "MISSING_VARIABLE"
	ErrCodeYearNotFound    Code = "YEAR_NOT_FOUND"

	// I/O errors
	ErrCodeDatasetOpen Code = "DATASET_OPEN"
	ErrCodeOutputWrite Code = "OUTPUT_WRITE"

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

// IsConfig reports whether err is a configuration error, i.e. one that the
// caller can only fix by changing the requested options or input paths.
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidMode, ErrCodeInvalidFormat,
		ErrCodeInvalidPath, ErrCodeMissingPath, ErrCodeUnsupportedAllometry:
		return true
	}
	return false
}
