package optimization

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain is wrapped by every error caused by a point whose length or
	// domain does not match the bounds of the objective it is used with.
	ErrDomain = errors.New("domain mismatch")

	// ErrInvalidConfiguration is wrapped by every error returned from a
	// constructor that refuses its parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewDomainError reports a point that cannot be used with the bounds of an
// objective. The result matches ErrDomain with errors.Is.
func NewDomainError(op, format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Op:      op,
		Err:     ErrDomain,
	}
}

// NewConfigError reports a rejected construction parameter. The result
// matches ErrInvalidConfiguration with errors.Is.
func NewConfigError(component, format string, args ...interface{}) *Error {
	return &Error{
		Message:   fmt.Sprintf(format, args...),
		Component: component,
		Err:       ErrInvalidConfiguration,
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// IsOptimizationError checks if an error is of type Error.
// If the error is an optimization error, it returns the error and true.
// Otherwise, it returns nil and false.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsDomainError reports whether err was caused by a domain mismatch.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

// IsConfigError reports whether err was caused by a rejected parameter.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
