// Package store implements the PostgreSQL-backed audit persistence of the
// engine: search-history rows and booking confirmations. Offers themselves
// are never stored; they are ephemeral upstream documents.
package store

import (
	"context"

	"github.com/koalaroute/koalaroute/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// SearchHistoryRepository records every orchestrated search and lists them
// back per caller.
type SearchHistoryRepository interface {
	// SaveSearch inserts one audit row and populates record.ID with the
	// server-assigned key.
	SaveSearch(ctx context.Context, record *models.SearchRecord) error

	// ListSearches returns the caller's search history, newest first,
	// narrowed by the optional filter fields.
	ListSearches(ctx context.Context, userID int64, filter models.HistoryFilter) ([]models.SearchRecord, error)
}

// BookingRepository records accepted bookings.
type BookingRepository interface {
	// SaveBooking inserts one booking row and populates record.ID.
	SaveBooking(ctx context.Context, record *models.BookingRecord) error

	// ListBookings returns the caller's bookings, newest first.
	ListBookings(ctx context.Context, userID int64) ([]models.BookingRecord, error)
}

// Repositories bundles the persistence interfaces handed to the service
// layer.
type Repositories struct {
	SearchHistory SearchHistoryRepository
	Bookings      BookingRepository
}

// NewRepositories wires the PostgreSQL implementations onto one shared
// connection.
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		SearchHistory: NewSearchHistoryRepository(db),
		Bookings:      NewBookingRepository(db),
	}
}
