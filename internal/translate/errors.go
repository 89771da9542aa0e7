package translate

import (
	"errors"
	"net/http"
)

// ValidationError is a caller mistake detected before anything is sent upstream.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string   { return e.msg }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// ErrValidation constructs a ValidationError.
func ErrValidation(msg string) error { return &ValidationError{msg: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ShapeError signals an upstream response lacking a field the translation
// needs. It is reported as a server error: the upstream is incompatible,
// the caller did nothing wrong.
type ShapeError struct{ msg string }

func (e *ShapeError) Error() string   { return e.msg }
func (e *ShapeError) StatusCode() int { return http.StatusInternalServerError }

// IsShape reports whether err is a ShapeError.
func IsShape(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

var (
	errMissingChoices = &ShapeError{msg: "response missing choices"}
	errMissingMessage = &ShapeError{msg: "response missing message"}
	errMissingText    = &ShapeError{msg: "response missing text"}
	errMissingData    = &ShapeError{msg: "response missing data"}
)
