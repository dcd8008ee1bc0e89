// Package errs defines the error taxonomy shared across the framework.
// Every fallible operation returns a *Error (or wraps one); callers inspect
// the kind with KindOf or errors.As. Nothing in the framework retries
// internally.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the subsystem and failure class it came from.
type Kind string

const (
	KindAgent       Kind = "agent"       // duplicate/missing agent ID, unknown attribute
	KindEnvironment Kind = "environment" // duplicate asset ID, asset update failure
	KindValidation  Kind = "validation"  // missing required attribute, out-of-range value
	KindInformation Kind = "information" // filter/distorter failures
	KindFactory     Kind = "factory"     // component construction failure
	KindEvent       Kind = "event"       // event system failure
	KindState       Kind = "state"       // illegal lifecycle transition
)

// Error is the typed error carried throughout the framework.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Agentf builds an agent-kind error.
func Agentf(format string, args ...any) *Error {
	return New(KindAgent, format, args...)
}

// Environmentf builds an environment-kind error.
func Environmentf(format string, args ...any) *Error {
	return New(KindEnvironment, format, args...)
}

// Validationf builds a validation-kind error.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// Informationf builds an information-processing error.
func Informationf(format string, args ...any) *Error {
	return New(KindInformation, format, args...)
}

// Factoryf builds a factory-kind error.
func Factoryf(format string, args ...any) *Error {
	return New(KindFactory, format, args...)
}

// Statef builds an illegal-lifecycle error.
func Statef(format string, args ...any) *Error {
	return New(KindState, format, args...)
}

// KindOf extracts the kind from err, unwrapping as needed. Errors that do
// not carry a kind report the empty string.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
