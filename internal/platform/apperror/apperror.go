// Package apperror defines the error taxonomy shared by the booking service layers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindBadRequest      Kind = "bad_request"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// Error is an application error carrying its kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewNotFoundError builds a not-found error for the given entity and identifier.
func NewNotFoundError(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %v not found", entity, id)}
}

// NewNotFound builds a not-found error with a free-form message. Authorization
// failures on bookings are reported this way so that existence is not leaked.
func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewValidationError builds a bad-request error.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// NewConflictError builds a conflict error.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewUnauthorizedError builds an unauthorized error.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewTooManyRequestsError builds a rate-limit error.
func NewTooManyRequestsError(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
