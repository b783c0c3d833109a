package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Rendering errors. A missing default renderer is a setup bug and is never
	// recovered from.
	ErrConfiguration ErrorCode = "CONFIGURATION"

	// Codec errors
	ErrReconstruction ErrorCode = "RECONSTRUCTION"
	ErrNotSafe        ErrorCode = "NOT_SAFE"

	// Recoverable per-value errors
	ErrLookupMiss       ErrorCode = "LOOKUP_MISS"
	ErrFieldUnavailable ErrorCode = "FIELD_UNAVAILABLE"

	// Image and traversal errors
	ErrImageLoad      ErrorCode = "IMAGE_LOAD"
	ErrTraversalLimit ErrorCode = "TRAVERSAL_LIMIT"

	// Output errors
	ErrDumpWrite   ErrorCode = "DUMP_WRITE"
	ErrBackendIO   ErrorCode = "BACKEND_IO"
	ErrOutputState ErrorCode = "OUTPUT_STATE"
)

// MemscopeError represents a structured error with code and details
type MemscopeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MemscopeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MemscopeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MemscopeError) Is(target error) bool {
	var targetErr *MemscopeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MemscopeError with the given code and message
func New(code ErrorCode, message string) *MemscopeError {
	return &MemscopeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MemscopeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MemscopeError {
	return &MemscopeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MemscopeError
func Wrap(err error, code ErrorCode, message string) *MemscopeError {
	if err == nil {
		return nil
	}
	return &MemscopeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MemscopeError {
	if err == nil {
		return nil
	}
	return &MemscopeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MemscopeError) WithDetail(key string, value interface{}) *MemscopeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MemscopeError) WithDetails(details map[string]interface{}) *MemscopeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var msErr *MemscopeError
	if errors.As(err, &msErr) {
		return msErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MemscopeError
func GetErrorCode(err error) ErrorCode {
	var msErr *MemscopeError
	if errors.As(err, &msErr) {
		return msErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MemscopeError
func GetErrorDetails(err error) map[string]interface{} {
	var msErr *MemscopeError
	if errors.As(err, &msErr) {
		return msErr.Details
	}
	return nil
}

// IsRecoverable reports whether err only affects a single value: a lookup miss
// or an unreadable field. Everything else must propagate.
func IsRecoverable(err error) bool {
	switch GetErrorCode(err) {
	case ErrLookupMiss, ErrFieldUnavailable:
		return true
	default:
		return false
	}
}
