package store

import (
	"context"
	"fmt"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/models"
)

// bookingRepository is the PostgreSQL implementation of [BookingRepository].
type bookingRepository struct {
	*DB
	logger *logger.Logger
}

// NewBookingRepository constructs a [BookingRepository] backed by the
// provided connection.
func NewBookingRepository(db *DB) BookingRepository {
	return &bookingRepository{DB: db, logger: db.logger}
}

// SaveBooking implements [BookingRepository]. Booking rows are never
// retried: the booking itself already succeeded upstream and a duplicate
// audit row is worse than a missing one.
func (r *bookingRepository) SaveBooking(ctx context.Context, record *models.BookingRecord) error {
	log := logger.FromContext(ctx)

	err := r.DB.QueryRowContext(ctx, saveBookingQuery,
		record.UserID,
		record.Provider,
		record.OfferID,
		record.OrderID,
		record.BookingURL,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		log.Err(err).
			Str("func", "bookingRepository.SaveBooking").
			Int64("user_id", record.UserID).
			Str("provider", record.Provider).
			Msg("failed to save booking record")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// ListBookings implements [BookingRepository].
func (r *bookingRepository) ListBookings(ctx context.Context, userID int64) ([]models.BookingRecord, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, listBookingsQuery, userID)
	if err != nil {
		log.Err(err).
			Str("func", "bookingRepository.ListBookings").
			Int64("user_id", userID).
			Msg("failed to execute bookings query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.BookingRecord, 0, 16)

	for rows.Next() {
		var record models.BookingRecord

		scanErr := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Provider,
			&record.OfferID,
			&record.OrderID,
			&record.BookingURL,
			&record.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "bookingRepository.ListBookings").
				Int64("user_id", userID).
				Msg("failed to scan booking row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "bookingRepository.ListBookings").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}
