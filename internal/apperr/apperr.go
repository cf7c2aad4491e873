// Package apperr defines the typed failures the service layer surfaces to
// the API boundary. Every error carries an HTTP status class and a message
// that is passed through to the client unchanged.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// StatusOf maps an error to its HTTP status, defaulting to 500 for
// anything that is not an *Error (infrastructure failures stay opaque).
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsClient reports whether the error is a caller-recoverable failure
// rather than an infrastructure one.
func IsClient(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr)
}
