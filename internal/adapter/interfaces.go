// SPDX-License-Identifier: Apache-2.0

// Package adapter provides the upstream-provider abstraction for the
// flight-aggregation engine.
//
// The primary abstraction is [ProviderAdapter], which decouples the search
// orchestrator from provider wire protocols. The package ships three
// implementations: [NewAmadeusAdapter] (OAuth2 client credentials,
// synchronous search, direct order creation), [NewTravelpayoutsAdapter]
// (MD5-signed initiate-then-poll search) and [NewDuffelAdapter] (static
// bearer token, offer-request refetch, hosted checkout links).
//
// Error types defined in errors.go classify upstream failures so that
// callers can use [errors.As] for transport-agnostic handling
// (e.g. [*AuthError] for rejected credentials, [*UpstreamError] for non-2xx
// responses).
package adapter

import (
	"context"

	"github.com/koalaroute/koalaroute/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/provider_adapter_mock.go -package=mock

// Provider names as reported by [ProviderAdapter.Name] and recorded on every
// offer, handle and booking confirmation.
const (
	ProviderAmadeus       = "amadeus"
	ProviderTravelpayouts = "travelpayouts"
	ProviderDuffel        = "duffel"
)

// ProviderAdapter defines provider-agnostic access to one upstream flight
// API. Implementations own credential management, request signing, wire
// serialisation and offer normalization; callers only ever see canonical
// models and the error types of this package.
type ProviderAdapter interface {
	// Name returns the stable provider name recorded on offers and handles.
	Name() string

	// Search initiates a flight search upstream. Synchronous providers
	// return (nil, offers, nil) with the final normalized offer set.
	// Asynchronous providers return (handle, nil, nil); the caller must then
	// Poll the handle until it reports [models.PollComplete].
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, []models.FlightOffer, error)

	// Poll fetches the current result chunk for an asynchronous search
	// previously started by Search. It returns [models.PollPending] together
	// with any offers produced so far, or [models.PollComplete] once the
	// upstream search has finished. Handles from other providers are
	// rejected. Synchronous providers report complete immediately.
	Poll(ctx context.Context, handle models.SearchHandle) (models.PollStatus, []models.FlightOffer, error)

	// Book submits a booking for a previously returned offer. The offer's
	// Payload is sent back to the provider untouched. Providers without a
	// booking surface return [ErrBookingNotSupported].
	Book(ctx context.Context, offer models.FlightOffer, traveler models.TravelerInfo) (*models.BookingConfirmation, error)
}

// ConnectivityChecker is implemented by adapters whose upstream exposes a
// cheap endpoint suitable for liveness checks. Adapters without one are
// reported reachable without a network call; their real endpoints are too
// expensive to hit on every health request.
type ConnectivityChecker interface {
	// CheckConnectivity performs one lightweight request against the
	// upstream and returns the classified error on failure.
	CheckConnectivity(ctx context.Context) error
}
