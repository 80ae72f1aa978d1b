package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so controllers can map it to a
// transport status without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidState
	KindSoldOut
	KindInsufficientQuantity
	KindOverIssue
	KindEmptySelection
	KindInvalidInput
	KindSignatureMismatch
	KindAlreadyProcessed
	KindStorageParse
	KindVersionConflict
)

// Error carries a classification plus a user-presentable message. Wrapped
// causes stay server-side; Message is safe to return to API clients.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with a formatted user-facing message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause to a classified error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the user-presentable message of err. Unclassified errors
// map to a generic message so internal detail never leaks to clients.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

// HTTPStatus maps an error classification to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindAlreadyProcessed:
		return http.StatusConflict
	case KindSoldOut, KindInsufficientQuantity, KindOverIssue:
		return http.StatusConflict
	case KindEmptySelection, KindInvalidInput:
		return http.StatusBadRequest
	case KindSignatureMismatch:
		return http.StatusUnauthorized
	case KindStorageParse, KindVersionConflict:
		// Retriable: the caller should repeat the request.
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
