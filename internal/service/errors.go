package service

import "errors"

var (
	// ErrInvalidSearchRequest wraps all request validation failures.
	ErrInvalidSearchRequest = errors.New("invalid search request")

	// ErrProviderTimedOut marks a provider whose poll budget ran out before
	// the upstream search finished.
	ErrProviderTimedOut = errors.New("provider search timed out")

	// ErrAllProvidersFailed is returned when not a single provider produced
	// a usable outcome.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrHandleNotFound is returned for search identifiers the registry has
	// never seen.
	ErrHandleNotFound = errors.New("search not found")

	// ErrHandleExpired is returned for search identifiers whose result has
	// outlived its TTL and been discarded.
	ErrHandleExpired = errors.New("search result expired")

	// ErrUnknownProvider is returned when a booking names a provider the
	// engine is not configured with.
	ErrUnknownProvider = errors.New("unknown provider")
)
