package adapter

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/koalaroute/koalaroute/internal/utils"
)

// newProviderClient builds the resty client a provider adapter talks
// through. The base URL is normalised and validated once at construction so
// every later request error is a genuine transport failure.
func newProviderClient(baseURL string, timeout time.Duration) (*utils.HTTPClient, error) {
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider base url: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(normalized).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
