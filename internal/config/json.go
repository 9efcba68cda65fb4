package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and the
// string-friendly [Duration] type, so operators can keep a readable config
// file alongside environment variables.
type StructuredJSONConfig struct {
	Auth struct {
		TokenSignKey string `json:"token_sign_key"`
		TokenIssuer  string `json:"token_issuer"`
	} `json:"auth,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Providers struct {
		Amadeus struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
			BaseURL      string `json:"base_url"`
		} `json:"amadeus,omitempty"`

		Travelpayouts struct {
			Token   string `json:"token"`
			Marker  string `json:"marker"`
			Host    string `json:"host"`
			BaseURL string `json:"base_url"`
		} `json:"travelpayouts,omitempty"`

		Duffel struct {
			APIToken string `json:"api_token"`
			BaseURL  string `json:"base_url"`
		} `json:"duffel,omitempty"`
	} `json:"providers,omitempty"`

	Search struct {
		PollInterval    Duration           `json:"poll_interval"`
		PollAttempts    int                `json:"poll_attempts"`
		ProviderTimeout Duration           `json:"provider_timeout"`
		HandleTTL       Duration           `json:"handle_ttl"`
		DefaultCurrency string             `json:"default_currency"`
		CurrencyRates   map[string]float64 `json:"currency_rates"`
	} `json:"search,omitempty"`

	Workers struct {
		JanitorInterval Duration `json:"janitor_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			TokenSignKey: jsonCfg.Auth.TokenSignKey,
			TokenIssuer:  jsonCfg.Auth.TokenIssuer,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Providers: Providers{
			Amadeus: Amadeus{
				ClientID:     jsonCfg.Providers.Amadeus.ClientID,
				ClientSecret: jsonCfg.Providers.Amadeus.ClientSecret,
				BaseURL:      jsonCfg.Providers.Amadeus.BaseURL,
			},
			Travelpayouts: Travelpayouts{
				Token:   jsonCfg.Providers.Travelpayouts.Token,
				Marker:  jsonCfg.Providers.Travelpayouts.Marker,
				Host:    jsonCfg.Providers.Travelpayouts.Host,
				BaseURL: jsonCfg.Providers.Travelpayouts.BaseURL,
			},
			Duffel: Duffel{
				APIToken: jsonCfg.Providers.Duffel.APIToken,
				BaseURL:  jsonCfg.Providers.Duffel.BaseURL,
			},
		},
		Search: Search{
			PollInterval:    time.Duration(jsonCfg.Search.PollInterval),
			PollAttempts:    jsonCfg.Search.PollAttempts,
			ProviderTimeout: time.Duration(jsonCfg.Search.ProviderTimeout),
			HandleTTL:       time.Duration(jsonCfg.Search.HandleTTL),
			DefaultCurrency: jsonCfg.Search.DefaultCurrency,
			CurrencyRates:   jsonCfg.Search.CurrencyRates,
		},
		Workers: Workers{
			JanitorInterval: time.Duration(jsonCfg.Workers.JanitorInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
