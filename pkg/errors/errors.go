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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Entry point errors
	ErrUnsupportedFeature ErrorCode = "UNSUPPORTED_FEATURE"
	ErrUnsupportedShape   ErrorCode = "UNSUPPORTED_SHAPE"

	// Manifest errors
	ErrManifestNotFound ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestParse    ErrorCode = "MANIFEST_PARSE"
	ErrManifestWrite    ErrorCode = "MANIFEST_WRITE"

	// Workspace errors
	ErrWorkspaceInvalid ErrorCode = "WORKSPACE_INVALID"
	ErrPackageNotFound  ErrorCode = "PACKAGE_NOT_FOUND"

	// Build errors
	ErrBundleFailed ErrorCode = "BUNDLE_FAILED"
	ErrBuildFailed  ErrorCode = "BUILD_FAILED"
	ErrWatch        ErrorCode = "WATCH"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
)

// JiekError represents a structured error with code and details
type JiekError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *JiekError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *JiekError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *JiekError) Is(target error) bool {
	var targetErr *JiekError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new JiekError with the given code and message
func New(code ErrorCode, message string) *JiekError {
	return &JiekError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new JiekError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *JiekError {
	return &JiekError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a JiekError
func Wrap(err error, code ErrorCode, message string) *JiekError {
	if err == nil {
		return nil
	}
	return &JiekError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *JiekError {
	if err == nil {
		return nil
	}
	return &JiekError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *JiekError) WithDetail(key string, value interface{}) *JiekError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *JiekError) WithDetails(details map[string]interface{}) *JiekError {
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
	var jiekErr *JiekError
	if errors.As(err, &jiekErr) {
		return jiekErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a JiekError
func GetErrorCode(err error) ErrorCode {
	var jiekErr *JiekError
	if errors.As(err, &jiekErr) {
		return jiekErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a JiekError
func GetErrorDetails(err error) map[string]interface{} {
	var jiekErr *JiekError
	if errors.As(err, &jiekErr) {
		return jiekErr.Details
	}
	return nil
}
