// Package apierror provides the error envelope of the JSON API. Every 4xx
// and 5xx response carries it; internal details never reach the client.
package apierror

import (
	"errors"
	"net/http"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// APIError is the canonical error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError names the offending field.
type ValidationError struct {
	Detail string `json:"detail"`
	Field  string `json:"field"`
}

// From maps a service error to a status code and envelope. Unexpected
// errors become a bare 500.
func From(err error) (int, any) {
	var invalid *domain.InvalidArgumentError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, &ValidationError{Detail: invalid.Error(), Field: invalid.Field}
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, New(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, New(err.Error())
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, New("conflict: the change violates a uniqueness or reference constraint")
	default:
		return http.StatusInternalServerError, New("internal server error")
	}
}
