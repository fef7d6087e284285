// ABOUTME: Error types for MSU gateway calls.
// ABOUTME: Distinguishes network failures, non-2xx replies, and malformed bodies.

package msu

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any *TransportError via errors.Is.
	ErrTransport = errors.New("network error connecting to MSU API")

	// ErrInvalidResponse indicates a 2xx reply whose body is not valid JSON.
	ErrInvalidResponse = errors.New("invalid response from MSU API")
)

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for every TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Timeout reports whether the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// APIError is returned when the gateway answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("MSU API error (%d): %s", e.StatusCode, e.Body)
}
