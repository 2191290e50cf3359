package api

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks requests rejected before or by the service for
	// malformed input. Client-side validation failures never reach the wire.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized marks responses signaling an invalid or expired
	// credential. The session has already been cleared when it surfaces.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks lookups of lectures that no longer exist.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks network failures, timeouts, and 5xx responses.
	ErrTransient = errors.New("transient failure")
)

// ErrFileTooLarge is the validation failure for uploads over the size
// ceiling. errors.Is(err, ErrValidation) also holds.
var ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrValidation)

// APIError carries the HTTP status and service-reported detail of a failed
// call. It is always wrapped by one of the package sentinels.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Detail)
}
