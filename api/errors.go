package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the server, carrying the status code and
// the message extracted from the JSON error body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// TransportError is a failure before any server response arrived: connection
// problems, aborted requests, unreadable bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 rejection from the server.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsCanceled reports whether err stems from context cancellation rather than
// an actual failure. Callers surface this as "operation cancelled", not as an
// error.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
