package http

import (
	"errors"
	"net/http"

	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/service"
	"github.com/koalaroute/koalaroute/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidSearchRequest: http.StatusBadRequest,
	service.ErrUnknownProvider:      http.StatusBadRequest,
	service.ErrHandleNotFound:       http.StatusNotFound,
	service.ErrHandleExpired:        http.StatusGone,
	service.ErrProviderTimedOut:     http.StatusGatewayTimeout,
	service.ErrAllProvidersFailed:   http.StatusBadGateway,

	adapter.ErrBookingNotSupported: http.StatusNotImplemented,
	adapter.ErrHandleWrongProvider: http.StatusBadRequest,

	store.ErrBuildingQuery:  http.StatusInternalServerError,
	store.ErrExecutingQuery: http.StatusInternalServerError,
	store.ErrScanningRow:    http.StatusInternalServerError,
	store.ErrScanningRows:   http.StatusInternalServerError,
}

// statusFromError maps a service-layer error to the HTTP status the caller
// should see. Provider credential failures are the engine's fault, not the
// caller's, so they surface as 502 rather than 401.
func statusFromError(err error) int {
	var authErr *adapter.AuthError
	if errors.As(err, &authErr) {
		return http.StatusBadGateway
	}

	var upstreamErr *adapter.UpstreamError
	if errors.As(err, &upstreamErr) {
		return http.StatusBadGateway
	}

	var transportErr *adapter.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
