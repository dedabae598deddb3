// Package errors provides the closed set of error variants used by the
// reconciliation service. Every failure is terminal for the request that
// raised it, but the variants let callers distinguish configuration
// problems from bad input and upstream (Google Sheets) failures.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

var (
	// ErrConfiguration indicates a missing or unusable configuration value.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates that provided input was invalid.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates that something required by the reconciliation
	// was absent from the input data.
	ErrNotFound = errors.New("not found")

	// ErrUpstream indicates a failure in the spreadsheet service.
	ErrUpstream = errors.New("upstream service error")
)

// ConfigurationError represents a missing or malformed configuration value.
type ConfigurationError struct {
	Variable string
	Message  string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Is implements errors.Is support
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(variable, message string) *ConfigurationError {
	return &ConfigurationError{Variable: variable, Message: message}
}

// ValidationError represents a validation failure in user-supplied input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError represents required data that was absent from the input.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// UpstreamError represents a failure returned by the spreadsheet service.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap implements errors.Unwrap
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUpstream reports whether err is an upstream service error.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
