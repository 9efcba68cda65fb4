package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/koalaroute/koalaroute/models"
)

const defaultHistoryLimit = 50

const saveSearchQuery = `
INSERT INTO search_history
	(user_id, origin, destination, departure_date, return_date,
	 passengers, currency, providers, offer_count, state, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id;`

const saveBookingQuery = `
INSERT INTO bookings
	(user_id, provider, offer_id, order_id, booking_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;`

const listBookingsQuery = `
SELECT id, user_id, provider, offer_id, order_id, booking_url, created_at
FROM bookings
WHERE user_id = $1
ORDER BY created_at DESC;`

// buildListSearchesQuery assembles the history listing with its optional
// origin/destination narrowing. Static queries stay as plain constants;
// only this one is dynamic enough to warrant a builder.
func buildListSearchesQuery(userID int64, filter models.HistoryFilter) (string, []any, error) {
	limit := filter.Limit
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	builder := sq.
		Select("id", "user_id", "origin", "destination", "departure_date", "return_date",
			"passengers", "currency", "providers", "offer_count", "state", "created_at").
		From("search_history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)

	if filter.Origin != "" {
		builder = builder.Where(sq.Eq{"origin": filter.Origin})
	}
	if filter.Destination != "" {
		builder = builder.Where(sq.Eq{"destination": filter.Destination})
	}

	return builder.ToSql()
}
