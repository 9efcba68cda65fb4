package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flags := ParseFlags()

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	isJSONSpecified := false

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			isJSONSpecified = true
			jsonPath = cfg.JSONFilePath
		}
	}

	if isJSONSpecified {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

// withDefaults appends the built-in defaults as the lowest-priority source.
// mergo only fills fields that are still zero after the higher-priority
// sources merged, so anything an operator sets wins.
func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaultConfig())
	return b
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			HTTPAddress: "0.0.0.0:8080",
			// must exceed PollInterval × PollAttempts
			RequestTimeout: 90 * time.Second,
		},
		Providers: Providers{
			Amadeus:       Amadeus{BaseURL: "https://test.api.amadeus.com"},
			Travelpayouts: Travelpayouts{Host: "koalaroute.com", BaseURL: "https://api.travelpayouts.com"},
			Duffel:        Duffel{BaseURL: "https://api.duffel.com"},
		},
		Search: Search{
			PollInterval:    5 * time.Second,
			PollAttempts:    12,
			ProviderTimeout: 15 * time.Second,
			HandleTTL:       15 * time.Minute,
			DefaultCurrency: "usd",
			// upstream realtime-search prices arrive in RUB minor units
			CurrencyRates: map[string]float64{
				"usd": 0.011,
				"eur": 0.01,
				"gbp": 0.009,
			},
		},
		Workers: Workers{
			JanitorInterval: time.Minute,
		},
	}
}
