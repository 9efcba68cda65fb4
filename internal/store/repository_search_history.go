// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/models"
)

// searchHistoryRepository is the PostgreSQL implementation of
// [SearchHistoryRepository]. Writes consult the connection's error
// classifier and retry once on transient failures; an audit row is cheap to
// re-insert because the orchestrator only writes it after the search has
// reached a terminal state.
type searchHistoryRepository struct {
	*DB
	logger *logger.Logger
}

// NewSearchHistoryRepository constructs a [SearchHistoryRepository] backed
// by the provided connection.
func NewSearchHistoryRepository(db *DB) SearchHistoryRepository {
	return &searchHistoryRepository{DB: db, logger: db.logger}
}

// SaveSearch implements [SearchHistoryRepository].
func (r *searchHistoryRepository) SaveSearch(ctx context.Context, record *models.SearchRecord) error {
	log := logger.FromContext(ctx)

	insert := func() error {
		return r.DB.QueryRowContext(ctx, saveSearchQuery,
			record.UserID,
			record.Origin,
			record.Destination,
			record.DepartureDate,
			record.ReturnDate,
			record.Passengers,
			record.Currency,
			record.Providers,
			record.OfferCount,
			record.State,
			record.CreatedAt,
		).Scan(&record.ID)
	}

	err := insert()
	if err != nil && r.classifier.Classify(err) == Retryable {
		log.Warn().
			Str("func", "searchHistoryRepository.SaveSearch").
			Int64("user_id", record.UserID).
			Err(err).
			Msg("transient failure saving search record, retrying once")
		err = insert()
	}
	if err != nil {
		log.Err(err).
			Str("func", "searchHistoryRepository.SaveSearch").
			Int64("user_id", record.UserID).
			Msg("failed to save search record")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// ListSearches implements [SearchHistoryRepository].
func (r *searchHistoryRepository) ListSearches(ctx context.Context, userID int64, filter models.HistoryFilter) ([]models.SearchRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListSearchesQuery(userID, filter)
	if err != nil {
		log.Err(err).
			Str("func", "searchHistoryRepository.ListSearches").
			Int64("user_id", userID).
			Msg("failed to build history query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "searchHistoryRepository.ListSearches").
			Int64("user_id", userID).
			Msg("failed to execute history query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.SearchRecord, 0, defaultHistoryLimit)

	for rows.Next() {
		var record models.SearchRecord

		scanErr := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Origin,
			&record.Destination,
			&record.DepartureDate,
			&record.ReturnDate,
			&record.Passengers,
			&record.Currency,
			&record.Providers,
			&record.OfferCount,
			&record.State,
			&record.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "searchHistoryRepository.ListSearches").
				Int64("user_id", userID).
				Msg("failed to scan search record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "searchHistoryRepository.ListSearches").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}
