package service

import (
	"context"
	"fmt"
	"time"

	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/store"
	"github.com/koalaroute/koalaroute/models"
)

// bookingService routes bookings to the adapter that produced the offer and
// records accepted ones.
type bookingService struct {
	adapters map[string]adapter.ProviderAdapter
	bookings store.BookingRepository
	cfg      config.Search

	logger *logger.Logger
	now    func() time.Time
}

// NewBookingService constructs a [BookingService].
func NewBookingService(adapters []adapter.ProviderAdapter, bookings store.BookingRepository, cfg config.Search, log *logger.Logger) BookingService {
	byName := make(map[string]adapter.ProviderAdapter, len(adapters))
	for _, p := range adapters {
		byName[p.Name()] = p
	}

	return &bookingService{
		adapters: byName,
		bookings: bookings,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// Book implements [BookingService].
func (s *bookingService) Book(ctx context.Context, userID int64, provider string, offer models.FlightOffer, traveler models.TravelerInfo) (*models.BookingConfirmation, error) {
	log := logger.FromContext(ctx)

	p, ok := s.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	bookCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	confirmation, err := p.Book(bookCtx, offer, traveler)
	if err != nil {
		return nil, err
	}

	record := &models.BookingRecord{
		UserID:     userID,
		Provider:   provider,
		OfferID:    offer.ID,
		OrderID:    confirmation.OrderID,
		BookingURL: confirmation.BookingURL,
		CreatedAt:  s.now(),
	}

	// The upstream booking already happened; an audit failure must not turn
	// a confirmed booking into an error for the caller.
	if saveErr := s.bookings.SaveBooking(context.WithoutCancel(ctx), record); saveErr != nil {
		log.Err(saveErr).
			Int64("user_id", userID).
			Str("provider", provider).
			Str("offer_id", offer.ID).
			Msg("failed to record accepted booking")
	}

	return confirmation, nil
}
