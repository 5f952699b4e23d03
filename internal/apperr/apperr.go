package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping. Anything that is
// not one of the known domain kinds is Internal and its cause stays hidden
// from the client.
type Kind int

const (
	Internal Kind = iota
	NotFound
	BadRequest
	Forbidden
	Unavailable
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err: a known domain error passes through unchanged, any
// other fault becomes an Internal error carrying message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: Internal, Message: message, Err: err}
}

// IsKnown reports whether err carries a non-Internal domain kind.
func IsKnown(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind != Internal
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// UserMessage returns the displayable message for err, hiding internal detail.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}

func (k Kind) HTTPStatus() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case BadRequest:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
