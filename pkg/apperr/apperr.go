// Package apperr defines the application error taxonomy.
//
// Services return *Error values classified by Kind; controllers translate the
// kind into an HTTP status and JSON envelope at the boundary. Anything that is
// not an *Error is treated as an internal failure (500).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application failure.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	InvalidArgument
	AlreadyExists
	FraudBlocked
	PaymentIncomplete
	ExternalService
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional underlying cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a caller-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or Internal when err is not classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err is classified with the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the HTTP status the API contract promises.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden, FraudBlocked:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidArgument:
		return http.StatusBadRequest
	case AlreadyExists:
		return http.StatusConflict
	case PaymentIncomplete:
		return http.StatusPaymentRequired
	case ExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
