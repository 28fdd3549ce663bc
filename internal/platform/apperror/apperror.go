// Package apperror defines the error kinds the domain services return across
// the transport boundary. Handlers translate kinds to HTTP status codes in
// one place; services never format user-facing text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks malformed or out-of-range input.
	KindValidation
	// KindNotFound marks a missing referenced entity.
	KindNotFound
	// KindConflict marks a uniqueness violation, e.g. a taken schedule slot.
	KindConflict
	// KindInvalidTransition marks an illegal status change.
	KindInvalidTransition
)

// Error is an error value carrying a Kind.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Validationf builds a validation error.
func Validationf(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// InvalidTransitionf builds an invalid-transition error.
func InvalidTransitionf(format string, args ...interface{}) *Error {
	return newf(KindInvalidTransition, format, args...)
}

// KindOf extracts the Kind from err, unwrapping as needed.
// Errors without a kind report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsNotFound reports whether err carries KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err carries KindValidation.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err carries KindConflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// ToHTTP maps an error to an echo HTTP error. Unclassified errors become 500s
// with a generic message so internals do not leak to clients.
func ToHTTP(err error) *echo.HTTPError {
	switch KindOf(err) {
	case KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case KindInvalidTransition:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
