package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across ecflow-light.
type ErrorCode string

// Environment and option lookup error codes
const (
	ErrEnvironmentVariableNotFound ErrorCode = "ENVIRONMENT_VARIABLE_NOT_FOUND"
	ErrOptionNotFound              ErrorCode = "OPTION_NOT_FOUND"
	ErrInvalidEnvironment          ErrorCode = "INVALID_ENVIRONMENT"
)

// Configuration error codes
const (
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// Dispatch error codes
const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrBadValue       ErrorCode = "BAD_VALUE"
	ErrTransport      ErrorCode = "TRANSPORT"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	ExitCode   int       `json:"exit_code,omitempty"`
	Endpoint   string    `json:"endpoint,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Code)
	if e.Endpoint != "" {
		prefix = fmt.Sprintf("[%s] %s:", e.Code, e.Endpoint)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithExitCode sets the exit code of a failed subprocess.
func (e *Error) WithExitCode(code int) *Error {
	e.ExitCode = code
	return e
}

// WithEndpoint sets the endpoint the error originated from.
func (e *Error) WithEndpoint(endpoint string) *Error {
	e.Endpoint = endpoint
	return e
}

// AsError finds the first *Error in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether err carries the given code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				if IsErrorCode(inner, code) {
					return true
				}
			}
			return false
		}
		err = errors.Unwrap(err)
	}
	return false
}
