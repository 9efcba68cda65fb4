// SPDX-License-Identifier: Apache-2.0

package config

import "time"

// validate checks that the final merged [StructuredConfig] satisfies all
// engine invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Auth.TokenSignKey == "" || cfg.Auth.TokenIssuer == "" {
		return ErrInvalidAuthConfigs
	}

	if !cfg.Providers.Amadeus.Configured() &&
		!cfg.Providers.Travelpayouts.Configured() &&
		!cfg.Providers.Duffel.Configured() {
		return ErrNoProvidersConfigured
	}

	if cfg.Search.PollInterval <= 0 || cfg.Search.PollAttempts <= 0 {
		return ErrInvalidSearchConfigs
	}

	if cfg.Server.RequestTimeout > 0 &&
		cfg.Server.RequestTimeout <= cfg.Search.PollInterval*time.Duration(cfg.Search.PollAttempts) {
		return ErrRequestTimeoutTooShort
	}

	return nil
}
