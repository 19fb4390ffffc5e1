package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeUnsupportedFormat ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeIO                ErrorType = "IO"
	ErrTypeConfig            ErrorType = "CONFIG"
	ErrTypeValidation        ErrorType = "VALIDATION"
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeTooLarge          ErrorType = "TOO_LARGE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type, so sentinel
// kinds match any error of that kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Sentinel kinds for errors.Is checks
var (
	ErrUnsupportedFormat = &AppError{Type: ErrTypeUnsupportedFormat, Message: "unsupported file format"}
	ErrIO                = &AppError{Type: ErrTypeIO, Message: "i/o failure"}
	ErrConfiguration     = &AppError{Type: ErrTypeConfig, Message: "invalid configuration"}
	ErrValidation        = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrResourceNotFound  = &AppError{Type: ErrTypeNotFound, Message: "not found"}
	ErrTooLarge          = &AppError{Type: ErrTypeTooLarge, Message: "payload too large"}
)

// Helper functions for common error types

// NewUnsupportedFormatError reports a file type with no codec
func NewUnsupportedFormatError(format string) *AppError {
	return NewAppError(ErrTypeUnsupportedFormat, fmt.Sprintf("no codec for file type %q", format), nil).
		WithContext("format", format)
}

// NewIOError creates a storage or stream error
func NewIOError(message string, cause error) *AppError {
	return NewAppError(ErrTypeIO, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewTooLargeError reports input above a configured size limit
func NewTooLargeError(limit int64, cause error) *AppError {
	return NewAppError(ErrTypeTooLarge, fmt.Sprintf("payload too large: limit is %d bytes", limit), cause).
		WithContext("limit", limit)
}
