package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent harvest failures that callers match with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown service or MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMissingCredential indicates a required credential field is empty.
	ErrMissingCredential = errors.New("missing credential field")

	// ErrShutdownTimeout indicates in-flight tasks outlived the shutdown grace period.
	ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

	// ErrPoolClosed indicates work was submitted after shutdown began.
	ErrPoolClosed = errors.New("worker pool closed")
)

// KindedError is implemented by errors that name their own failure kind
// for failure records.
type KindedError interface {
	error
	FailureKind() string
}

// ConfigError reports a missing or invalid run configuration parameter.
// It is fatal: a run aborts before any network call is made.
type ConfigError struct {
	// Param is the configuration key at fault.
	Param string
	// Reason describes what is wrong with it.
	Reason string
	// Err is an optional underlying cause.
	Err error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	if e.Param != "" {
		b.WriteString(e.Param)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FailureKind implements KindedError.
func (e *ConfigError) FailureKind() string { return "ConfigError" }

// NewConfigError builds a ConfigError for a parameter.
func NewConfigError(param, reason string) *ConfigError {
	return &ConfigError{Param: param, Reason: reason}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	// Target names what was being parsed (e.g. "content page").
	Target string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Target, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FailureKind implements KindedError.
func (e *ParseError) FailureKind() string { return "ParseError" }

// ExtractionError reports body content that could not be turned into text.
type ExtractionError struct {
	MIMEType string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.MIMEType, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FailureKind implements KindedError.
func (e *ExtractionError) FailureKind() string { return "ExtractionError" }

// EvaluationError reports a field expression that failed to compile or run.
type EvaluationError struct {
	Field      string
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("evaluate field %q (%s): %v", e.Field, e.Expression, e.Err)
	}
	return fmt.Sprintf("evaluate %s: %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// FailureKind implements KindedError.
func (e *EvaluationError) FailureKind() string { return "EvaluationError" }

// PanicError carries a value recovered from a panic while processing an item.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// FailureKind implements KindedError.
func (e *PanicError) FailureKind() string { return "PanicError" }
