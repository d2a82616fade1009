package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ShapeError indicates input is not a list of single-key mappings
	ShapeError ErrorCode = "SHAPE_ERROR"
	// IOError indicates a read/write/decode failure on the dictionary file
	IOError ErrorCode = "IO_ERROR"
	// ConfigInvalid indicates a rejected configuration, manifest, or batch set
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// HistoryUnavailable indicates the run history store cannot be opened or written
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CjdError represents a cjd error with a stable code and message
type CjdError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// NewCjdError creates a new CjdError
func NewCjdError(code ErrorCode, message string, cause error) *CjdError {
	return &CjdError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// NewShapeError reports input that is not a sequence of single-key mappings.
// Shape violations are fatal: no partial result is produced or written.
func NewShapeError(message string) *CjdError {
	return NewCjdError(ShapeError, message, nil)
}

// NewIOError reports a read, write, or decode failure on a dictionary file
func NewIOError(message string, cause error) *CjdError {
	return NewCjdError(IOError, message, cause)
}

// NewHistoryError reports a failure in the run history store
func NewHistoryError(message string, cause error) *CjdError {
	return NewCjdError(HistoryUnavailable, message, cause)
}

// Error implements the error interface
func (e *CjdError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CjdError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CjdError) WithDetails(details interface{}) *CjdError {
	e.Details = details
	return e
}

// CodeOf extracts the stable code from an error chain.
// Errors outside the taxonomy map to InternalError.
func CodeOf(err error) ErrorCode {
	var ce *CjdError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// HasCode reports whether any error in the chain carries the given code
func HasCode(err error, code ErrorCode) bool {
	var ce *CjdError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
