// Package service implements the orchestration layer: fanning a search out
// to every configured provider, driving the initiate-then-poll lifecycle
// within its budgets, and recording outcomes for the caller's history.
package service

import (
	"context"

	"github.com/koalaroute/koalaroute/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SearchService orchestrates flight searches across providers.
type SearchService interface {
	// Run performs one complete blocking search: validate, fan out,
	// poll asynchronous providers within the configured budgets, aggregate
	// offers, record history. The returned result carries a terminal state;
	// an error is returned only for invalid requests or when every provider
	// failed outright.
	Run(ctx context.Context, userID int64, req models.SearchRequest) (*models.SearchResult, error)

	// Snapshot returns the current state of a previously started search by
	// its server-issued identifier. Returns [ErrHandleNotFound] for unknown
	// identifiers and [ErrHandleExpired] past the handle TTL.
	Snapshot(ctx context.Context, searchID string) (*models.SearchResult, error)
}

// BookingService submits bookings to the provider that produced the offer.
type BookingService interface {
	// Book routes the booking to the named provider, records the accepted
	// booking, and returns the provider's confirmation.
	Book(ctx context.Context, userID int64, provider string, offer models.FlightOffer, traveler models.TravelerInfo) (*models.BookingConfirmation, error)
}

// HistoryService lists a caller's recorded searches and bookings.
type HistoryService interface {
	ListSearches(ctx context.Context, userID int64, filter models.HistoryFilter) ([]models.SearchRecord, error)
	ListBookings(ctx context.Context, userID int64) ([]models.BookingRecord, error)
}

// HealthService reports component liveness for the health endpoint.
type HealthService interface {
	Health(ctx context.Context) models.HealthStatus
}
