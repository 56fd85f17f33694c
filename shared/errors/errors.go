package errors

import (
	"errors"
	"fmt"
	"strings"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// APIError is a failure reported by the backend, either as a non-2xx status
// or as a 2xx body carrying an "error" field.
type APIError struct {
	Route      string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: backend returned status %d", e.Route, e.StatusCode)
}

// IsAlreadyRegistered reports whether err is the backend telling us a
// resource is registered already.
func IsAlreadyRegistered(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.Message, "already registered")
}
