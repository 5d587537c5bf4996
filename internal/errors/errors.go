package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline failures. The orchestrator translates these
// into state transitions; they are never surfaced raw to consumers.
type ErrorType string

const (
	// ErrTypeSourceUnavailable means a fetch failed (network, timeout,
	// non-2xx). Recovered by trying the next adapter in the chain.
	ErrTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"

	// ErrTypeSchema means the content was fetched but no column could be
	// matched to a date or category semantic after alias resolution, or the
	// undated-row drop rate exceeded the configured threshold. Recovered by
	// trying the next adapter; terminal if raised on the fallback dataset.
	ErrTypeSchema ErrorType = "SCHEMA"

	// ErrTypeParsing means the payload was structurally unreadable
	// (malformed markup, corrupt workbook). Recovered like a schema error.
	ErrTypeParsing ErrorType = "PARSING"

	// ErrTypeChainExhausted is terminal: every adapter failed and the
	// static fallback is disabled by configuration.
	ErrTypeChainExhausted ErrorType = "CHAIN_EXHAUSTED"

	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

// AppError is the application error carrying a type, a message and an
// optional cause. errors.Is/As unwrap through it.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a diagnostic key/value to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates an AppError.
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSourceUnavailable creates a fetch-failure error.
func NewSourceUnavailable(message string, cause error) *AppError {
	return New(ErrTypeSourceUnavailable, message, cause)
}

// NewSchemaError creates a structure-unrecognized error.
func NewSchemaError(message string, cause error) *AppError {
	return New(ErrTypeSchema, message, cause)
}

// NewParsingError creates an unreadable-payload error.
func NewParsingError(message string, cause error) *AppError {
	return New(ErrTypeParsing, message, cause)
}

// NewChainExhausted creates the terminal all-sources-failed error.
func NewChainExhausted(message string) *AppError {
	return New(ErrTypeChainExhausted, message, nil)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return New(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(resource string) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// TypeOf returns the ErrorType of err if it is (or wraps) an AppError,
// or an empty string otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
