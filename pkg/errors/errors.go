// Package errors gives every failure in resourcemap a machine-readable Code.
//
// The CLI prints [UserMessage] and the HTTP API answers with [HTTPStatus];
// both look only at the outermost *Error in a chain, so wrapping an error
// with a new code re-classifies it.
//
//	err := errors.New(errors.ErrCodeInvalidGraph, "duplicate node id: %s", id)
//	err = errors.Wrap(errors.ErrCodeSolverFailed, cause, "layout %s", root.ID)
//	if errors.Is(err, errors.ErrCodeSolverFailed) { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error.
type Code string

const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidGraph       Code = "INVALID_GRAPH"
	ErrCodeInvalidAspectRatio Code = "INVALID_ASPECT_RATIO"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// The solver could not be started, or it failed on a graph.
	ErrCodeSolverUnavailable Code = "SOLVER_UNAVAILABLE"
	ErrCodeSolverFailed      Code = "SOLVER_FAILED"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidGraph:       http.StatusBadRequest,
	ErrCodeInvalidAspectRatio: http.StatusBadRequest,
	ErrCodeInvalidFormat:      http.StatusBadRequest,
	ErrCodeInvalidConfig:      http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeFileNotFound:       http.StatusNotFound,
	ErrCodeSolverFailed:       http.StatusBadGateway,
	ErrCodeNetwork:            http.StatusBadGateway,
	ErrCodeSolverUnavailable:  http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeUnsupported:        http.StatusNotImplemented,
}

// Error carries a Code, a message for users and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" or "CODE: message: cause".
func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain, or nil.
func outermost(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the outermost code in err's chain, or "" if there is none.
func GetCode(err error) Code {
	if e := outermost(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// prefix or cause. Other errors are returned verbatim.
func UserMessage(err error) string {
	if e := outermost(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err's code to a response status; uncoded errors are 500.
func HTTPStatus(err error) int {
	if s, ok := httpStatus[GetCode(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
