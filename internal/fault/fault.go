// Package fault defines the error taxonomy shared by services and handlers.
// Every error that reaches a client carries a stable Kind so the client can
// decide between retrying (UPSTREAM, CONFLICT) and surfacing (VALIDATION,
// INVALID_STATE, INSUFFICIENT_PAYMENT).
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation          Kind = "VALIDATION"
	InvalidState        Kind = "INVALID_STATE"
	InsufficientPayment Kind = "INSUFFICIENT_PAYMENT"
	NotFound            Kind = "NOT_FOUND"
	Conflict            Kind = "CONFLICT"
	Upstream            Kind = "UPSTREAM"
)

// Error is an error with a stable kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a fault error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and message, keeping err in the chain.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// MessageOf returns the client-facing message of err. Errors without a kind
// are internal and must not leak details to clients.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "internal server error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
