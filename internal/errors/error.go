package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryRuntime    Category = "runtime"
	CategoryProtocol   Category = "protocol"
	CategoryValidation Category = "validation"
	CategoryConfig     Category = "config"
	CategoryStore      Category = "store"
	CategorySession    Category = "session"
)

// QuillError is a structured error with a stable code and fix suggestion.
type QuillError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (runtime, protocol, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, filled from the registry and
	// optionally extended per instance.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *QuillError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *QuillError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *QuillError) WithDetail(format string, args ...any) *QuillError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *QuillError) WithSuggestion(s string) *QuillError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *QuillError) Wrap(err error) *QuillError {
	e.Wrapped = err
	return e
}

// Format returns a multi-line human-readable rendering of the error,
// suitable for CLI output.
func (e *QuillError) Format() string {
	s := fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, e.Category)
	if e.Detail != "" {
		s += "\n  " + e.Detail
	}
	if e.Suggestion != "" {
		s += "\n  hint: " + e.Suggestion
	}
	if e.Wrapped != nil {
		s += "\n  caused by: " + e.Wrapped.Error()
	}
	return s
}
