package service

import (
	"context"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/store"
	"github.com/koalaroute/koalaroute/models"
)

type historyService struct {
	history  store.SearchHistoryRepository
	bookings store.BookingRepository

	logger *logger.Logger
}

// NewHistoryService constructs a [HistoryService].
func NewHistoryService(history store.SearchHistoryRepository, bookings store.BookingRepository, log *logger.Logger) HistoryService {
	return &historyService{history: history, bookings: bookings, logger: log}
}

func (s *historyService) ListSearches(ctx context.Context, userID int64, filter models.HistoryFilter) ([]models.SearchRecord, error) {
	return s.history.ListSearches(ctx, userID, filter)
}

func (s *historyService) ListBookings(ctx context.Context, userID int64) ([]models.BookingRecord, error) {
	return s.bookings.ListBookings(ctx, userID)
}
