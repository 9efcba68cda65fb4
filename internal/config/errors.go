package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or inconsistent.
var (
	// ErrInvalidAuthConfigs indicates a missing caller-token sign key or
	// issuer; without them no caller can be authenticated.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrNoProvidersConfigured indicates that not a single upstream
	// provider has usable credentials.
	ErrNoProvidersConfigured = errors.New("no flight providers configured")
	// ErrInvalidSearchConfigs indicates a non-positive poll interval or
	// attempt budget.
	ErrInvalidSearchConfigs = errors.New("invalid search configuration")
	// ErrRequestTimeoutTooShort indicates an inbound request timeout that
	// would cut blocking searches short of their poll budget.
	ErrRequestTimeoutTooShort = errors.New("server request timeout shorter than poll budget")
)
