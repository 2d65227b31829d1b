package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidInput marks errors caused by the caller's request.
var ErrInvalidInput = errors.New("invalid input")

// AppError is an error as it is reported to API clients.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput returns a 400 carrying message to the client.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Timeout returns a 504 for work that outlived the request deadline.
func Timeout(err error) *AppError {
	return &AppError{
		Code:    "TIMEOUT",
		Message: "the request took too long to complete",
		Status:  http.StatusGatewayTimeout,
		Err:     err,
	}
}

// Internal returns a 500 whose message never exposes err.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// From classifies err for a client response. An AppError anywhere in the
// chain wins; a bare ErrInvalidInput keeps its wrapped message.
func From(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrInvalidInput):
		return &AppError{Code: "INVALID_INPUT", Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout(err)
	default:
		return Internal(err)
	}
}
