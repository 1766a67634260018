// Package errors provides the failure taxonomy for the hostdrop service.
// Every public entry point converts failures into one of the sentinel kinds
// defined here so callers can map them to HTTP statuses without parsing
// error strings.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors categorizing every failure the write pipeline can produce.
var (
	// ErrAuthentication indicates no usable credential was presented.
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization indicates the caller is known but the decision denied the request.
	ErrAuthorization = errors.New("not authorized")

	// ErrValidation indicates a malformed folder name, file name, or document.
	ErrValidation = errors.New("validation failed")

	// ErrPayloadTooLarge indicates the payload exceeds the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrNotFound indicates a requested folder or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIO indicates a disk write, backup, or rename failure.
	ErrIO = errors.New("i/o failure")

	// ErrNetwork indicates an identity endpoint candidate was unreachable.
	// Individual candidate failures are swallowed by the validator; this kind
	// only surfaces when every candidate is exhausted.
	ErrNetwork = errors.New("identity endpoint unreachable")
)

// DomainError represents a domain-specific error with context.
// It wraps an underlying error and carries metadata about the subsystem,
// the operation that failed, and the taxonomy kind.
type DomainError struct {
	// Domain identifies the subsystem where the error occurred (e.g., "storage", "identity").
	Domain string

	// Op identifies the operation that failed (e.g., "ResolveFolder", "Write").
	Op string

	// Kind is the sentinel error that categorizes this error.
	Kind error

	// Err is the underlying wrapped error, if any.
	Err error

	// Context provides additional key-value pairs for debugging.
	Context map[string]interface{}
}

// New creates a new DomainError.
//
// Parameters:
//   - domain: the subsystem identifier (e.g., "storage", "settings")
//   - op: the operation that failed
//   - kind: sentinel error indicating the error category
//   - err: underlying error to wrap (may be nil)
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
}

// Unwrap returns the underlying wrapped error.
// This allows errors.Is and errors.As to work correctly.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
// It checks both the Kind field and the wrapped error chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding context to errors.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// KindOf returns the taxonomy sentinel the error maps to, or nil when the
// error carries none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrAuthentication,
		ErrAuthorization,
		ErrValidation,
		ErrPayloadTooLarge,
		ErrNotFound,
		ErrIO,
		ErrNetwork,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
