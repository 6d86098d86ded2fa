package llm

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the failure modes of an inference call. Callers
// degrade all of them to the same empty stage result, but the distinction
// stays inspectable for logging and tests.
type ErrorKind string

// Inference error kinds.
const (
	// KindTransport covers connection failures, timeouts, and cancelled
	// contexts.
	KindTransport ErrorKind = "transport"
	// KindStatus covers non-2xx responses from the inference service.
	KindStatus ErrorKind = "status"
	// KindMalformed covers responses that could not be decoded.
	KindMalformed ErrorKind = "malformed"
)

// InferenceError describes a failed call to an inference service.
type InferenceError struct {
	Kind   ErrorKind
	Op     string // e.g. "completion", "vision"
	Status int    // HTTP status, when Kind == KindStatus
	Err    error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Kind)
}

// Unwrap returns the underlying error.
func (e *InferenceError) Unwrap() error {
	return e.Err
}

// KindOf returns the inference error kind of err, or "" if err is not an
// InferenceError.
func KindOf(err error) ErrorKind {
	var infErr *InferenceError
	if errors.As(err, &infErr) {
		return infErr.Kind
	}
	return ""
}
