package adapter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// mapUpstreamError classifies a provider response into the error taxonomy of
// this package. 2xx responses map to nil; 401 and 403 become [*AuthError]
// because the rejected credentials are always the engine's own, never the
// caller's.
func mapUpstreamError(provider string, resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: provider, Err: errors.New(body)}
	default:
		return &UpstreamError{Provider: provider, StatusCode: resp.StatusCode(), Body: body}
	}
}
