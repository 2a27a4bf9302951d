// Package apperr defines the error taxonomy shared by services and
// handlers. Handlers map kinds to HTTP status codes; services never
// pick status codes themselves.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation decisions
type Kind int

const (
	// KindAuthentication: token missing, unresolvable, or session invalid
	KindAuthentication Kind = iota + 1
	// KindOwnership: actor and content do not share a salon
	KindOwnership
	// KindCrossSalonWrite: a mutation was attempted through the fallback path
	KindCrossSalonWrite
	// KindValidation: malformed or missing required fields
	KindValidation
	// KindNotFound: requested entity does not resolve
	KindNotFound
	// KindFallbackExhausted: all sibling servers failed or timed out.
	// Internal signal only; read paths convert it to an empty result.
	KindFallbackExhausted
	// KindStore: underlying persistence failure
	KindStore
)

// Ownership rejection reasons
const (
	ReasonActorMissing    = "actor_missing"
	ReasonContentMissing  = "content_missing"
	ReasonContentOrphaned = "content_orphaned"
)

// Error carries a kind plus enough structure for callers to distinguish
// retryable (store, network) from non-retryable (validation, ownership)
// conditions.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input for validation errors
	Field string
	// Reason is set for ownership errors
	Reason string
	// Err is the wrapped cause, if any
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Authentication builds a not-logged-in error
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Ownership builds a cross-salon rejection with one of the Reason* values
func Ownership(reason, message string) *Error {
	return &Error{Kind: KindOwnership, Reason: reason, Message: message}
}

// CrossSalonWrite builds the write-never-falls-back rejection
func CrossSalonWrite(message string) *Error {
	return &Error{Kind: KindCrossSalonWrite, Message: message}
}

// Validation builds a field-level input error
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound builds a 404-equivalent error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// FallbackExhausted wraps the aggregated per-sibling failures
func FallbackExhausted(message string, cause error) *Error {
	return &Error{Kind: KindFallbackExhausted, Message: message, Err: cause}
}

// Store wraps a persistence failure
func Store(message string, cause error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: cause}
}

// KindOf extracts the kind from an error chain, or 0 for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ReasonOf extracts the ownership reason from an error chain
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
