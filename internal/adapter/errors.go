package adapter

import (
	"errors"
	"fmt"
)

// ErrBookingNotSupported is returned by providers that only offer a search
// surface.
var ErrBookingNotSupported = errors.New("booking not supported by provider")

// ErrHandleWrongProvider is returned when a search handle is polled against
// an adapter other than the one that issued it.
var ErrHandleWrongProvider = errors.New("search handle belongs to another provider")

// AuthError reports that the engine's own upstream credentials were rejected
// (HTTP 401/403 or a failed token exchange). It is never caused by caller
// input, so the transport layer maps it to 502.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: upstream credentials rejected: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError reports a non-2xx provider response that is not a
// credentials failure. StatusCode and a trimmed response body are preserved
// for pass-through and logging.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// TransportError reports that no well-formed provider response was received
// at all (connection refused, timeout, TLS failure).
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: upstream unreachable: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
