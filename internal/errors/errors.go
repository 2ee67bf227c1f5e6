package errors

import (
	"fmt"
)

// ScribeError is the structured error type for scribe.
// It provides rich context for error handling, logging, and user presentation.
type ScribeError struct {
	// Code is the unique error code (e.g., "ERR_407_INVALID_PATTERN").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ScribeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScribeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ScribeError.
func (e *ScribeError) Is(target error) bool {
	if t, ok := target.(*ScribeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ScribeError) WithDetail(key, value string) *ScribeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *ScribeError) WithSuggestion(suggestion string) *ScribeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ScribeError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *ScribeError {
	return &ScribeError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a ScribeError from an existing error.
// The error's message becomes the ScribeError message.
func Wrap(code string, err error) *ScribeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ScribeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *ScribeError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *ScribeError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ScribeError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a ScribeError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*ScribeError); ok {
		return se.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*ScribeError); ok {
		return se.Severity == SeverityFatal
	}
	return false
}

// HasCode reports whether err, or any error it wraps, is a ScribeError with code.
func HasCode(err error, code string) bool {
	for err != nil {
		if se, ok := err.(*ScribeError); ok && se.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// GetCode extracts the error code from a ScribeError.
// Returns empty string if not a ScribeError.
func GetCode(err error) string {
	if se, ok := err.(*ScribeError); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a ScribeError.
// Returns empty string if not a ScribeError.
func GetCategory(err error) Category {
	if se, ok := err.(*ScribeError); ok {
		return se.Category
	}
	return ""
}
