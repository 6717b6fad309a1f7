package errors

import (
	"errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	// ErrCodeConfigurationAbsent means a capability's prerequisites are missing.
	// The feature is disabled, not fatal.
	ErrCodeConfigurationAbsent ErrCode = "CONFIGURATION_ABSENT"

	// ErrCodeTransientBackend covers network or permission failures on remote
	// calls. It triggers a fallback where one exists.
	ErrCodeTransientBackend ErrCode = "TRANSIENT_BACKEND_FAILURE"

	// ErrCodeNotFound means a locator did not resolve to an object or file.
	ErrCodeNotFound ErrCode = "NOT_FOUND"

	// ErrCodeMalformedPayload means stored content did not parse into the
	// expected tabular shape.
	ErrCodeMalformedPayload ErrCode = "MALFORMED_PAYLOAD"

	// ErrCodeInputOutOfRange means an index or argument is out of bounds.
	ErrCodeInputOutOfRange ErrCode = "INPUT_OUT_OF_RANGE"

	// ErrCodeInternal is everything else.
	ErrCodeInternal ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigurationAbsentError creates an error for a disabled capability
func NewConfigurationAbsentError(capability string) *AppError {
	return &AppError{
		Code:    ErrCodeConfigurationAbsent,
		Message: fmt.Sprintf("%s is not configured", capability),
	}
}

// NewTransientBackendError creates an error for a failed remote call
func NewTransientBackendError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransientBackend,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewMalformedPayloadError creates an error for unparseable stored content
func NewMalformedPayloadError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedPayload,
		Message: message,
		Err:     err,
	}
}

// NewInputOutOfRangeError creates an error for an out-of-bounds argument
func NewInputOutOfRangeError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInputOutOfRange,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// HasCode checks whether err is an AppError carrying the given code
func HasCode(err error, code ErrCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsConfigurationAbsent checks if the error marks a disabled capability
func IsConfigurationAbsent(err error) bool {
	return HasCode(err, ErrCodeConfigurationAbsent)
}

// IsTransientBackend checks if the error is a transient backend failure
func IsTransientBackend(err error) bool {
	return HasCode(err, ErrCodeTransientBackend)
}
