package laz

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// CodeTransport covers network and connection failures.
	CodeTransport ErrorCode = "transport_error"
	// CodeDecode means a response body was not valid JSON or did not match
	// the expected shape.
	CodeDecode ErrorCode = "decode_error"
	// CodeFunctionNotFound means the function name is unknown, or no endpoint
	// could be resolved for a known function.
	CodeFunctionNotFound ErrorCode = "function_not_found"
	// CodeInvalidMetadata means a required field was missing from a function
	// or endpoint entry in the metadata document.
	CodeInvalidMetadata ErrorCode = "invalid_metadata"
	// CodeServer carries a non-2xx HTTP status and the response body text.
	CodeServer ErrorCode = "server_error"
	// CodeGenerate covers failures in the client generation pipeline.
	CodeGenerate ErrorCode = "generate_error"
)

// Error is the standard error envelope for all laz operations.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a new laz error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new laz error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a new laz error that wraps an underlying cause.
// The cause is reachable through errors.Is and errors.As.
func WrapError(code ErrorCode, cause error, message string) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetail returns a copy of the error with the key-value pair added to
// its details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// CodeOf extracts the laz error code from err. It returns "" when err is nil
// or carries no laz error in its chain.
func CodeOf(err error) ErrorCode {
	var lazErr *Error
	if errors.As(err, &lazErr) {
		return lazErr.Code
	}
	return ""
}
