// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/store"
	"github.com/koalaroute/koalaroute/models"
)

// searchService drives the full search lifecycle. One Run call owns one
// registry entry; provider goroutines report progress into it so concurrent
// snapshot reads see partial results while the search is still going.
type searchService struct {
	adapters []adapter.ProviderAdapter
	registry *SearchRegistry
	history  store.SearchHistoryRepository
	cfg      config.Search

	logger *logger.Logger
	now    func() time.Time
}

// NewSearchService constructs a [SearchService] over the configured
// adapters.
func NewSearchService(adapters []adapter.ProviderAdapter, registry *SearchRegistry, history store.SearchHistoryRepository, cfg config.Search, log *logger.Logger) SearchService {
	return &searchService{
		adapters: adapters,
		registry: registry,
		history:  history,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// providerOutcome is the per-adapter result of one fan-out.
type providerOutcome struct {
	name   string
	offers []models.FlightOffer
	err    error
}

// Run implements [SearchService].
func (s *searchService) Run(ctx context.Context, userID int64, req models.SearchRequest) (*models.SearchResult, error) {
	log := logger.FromContext(ctx)

	if err := validateSearchRequest(req); err != nil {
		return nil, err
	}
	req = canonicalizeSearchRequest(req, s.cfg.DefaultCurrency)

	searchID := uuid.NewString()
	entry := s.registry.Create(searchID, req.Currency, s.providerNames())
	entry.setState(models.StatePolling)

	log.Info().
		Str("search_id", searchID).
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Int("providers", len(s.adapters)).
		Msg("starting orchestrated search")

	outcomes := make([]providerOutcome, len(s.adapters))
	var wg sync.WaitGroup
	for i, p := range s.adapters {
		wg.Add(1)
		go func(i int, p adapter.ProviderAdapter) {
			defer wg.Done()
			offers, err := s.runProvider(ctx, p, req, entry)
			outcomes[i] = providerOutcome{name: p.Name(), offers: offers, err: err}
		}(i, p)
	}
	wg.Wait()

	state, firstErr := classifyOutcomes(outcomes)
	entry.setState(state)

	result, snapErr := s.registry.Snapshot(searchID)
	if snapErr != nil {
		// The entry cannot expire mid-run under any sane TTL; treat it as
		// an empty result rather than failing a finished search.
		result = &models.SearchResult{SearchID: searchID, State: state, Currency: req.Currency, Providers: s.providerNames()}
	}

	s.recordSearch(ctx, userID, req, result)

	for _, outcome := range outcomes {
		if outcome.err != nil {
			log.Warn().
				Str("search_id", searchID).
				Str("provider", outcome.name).
				Err(outcome.err).
				Msg("provider finished with error")
		}
	}

	if state == models.StateFailed {
		return nil, errors.Join(ErrAllProvidersFailed, firstErr)
	}

	log.Info().
		Str("search_id", searchID).
		Str("state", string(state)).
		Int("offers", len(result.Offers)).
		Msg("search finished")

	return result, nil
}

// Snapshot implements [SearchService].
func (s *searchService) Snapshot(_ context.Context, searchID string) (*models.SearchResult, error) {
	return s.registry.Snapshot(searchID)
}

// runProvider performs the whole lifecycle against one adapter: search,
// then, for asynchronous providers, the poll loop within the configured
// interval and attempt budget. Offers are pushed into the registry entry as
// they arrive.
func (s *searchService) runProvider(ctx context.Context, p adapter.ProviderAdapter, req models.SearchRequest, entry *searchEntry) ([]models.FlightOffer, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	handle, offers, err := p.Search(searchCtx, req)
	cancel()
	if err != nil {
		return nil, err
	}

	// Inline offers are final whether or not a handle came with them; only
	// a handle with an empty initial set needs the poll loop.
	if handle == nil || len(offers) > 0 {
		entry.appendOffers(offers)
		return offers, nil
	}

	handle.Deadline = s.now().Add(s.cfg.HandleTTL)

	var collected []models.FlightOffer
	for attempt := 1; attempt <= s.cfg.PollAttempts; attempt++ {
		if err = sleepCtx(ctx, s.cfg.PollInterval); err != nil {
			return collected, err
		}

		// A handle past its deadline refers to upstream state the provider
		// may already have discarded; stop polling it.
		if handle.Expired(s.now()) {
			return collected, ErrProviderTimedOut
		}

		pollCtx, cancelPoll := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		status, chunk, pollErr := p.Poll(pollCtx, *handle)
		cancelPoll()
		if pollErr != nil {
			return collected, pollErr
		}

		entry.appendOffers(chunk)
		collected = append(collected, chunk...)

		if status == models.PollComplete {
			return collected, nil
		}
	}

	return collected, ErrProviderTimedOut
}

// classifyOutcomes reduces the per-provider outcomes to the orchestration's
// terminal state. One successful provider completes the search; otherwise a
// timed-out provider beats outright failure.
func classifyOutcomes(outcomes []providerOutcome) (models.SearchState, error) {
	var firstErr error
	completed, timedOut := 0, 0

	for _, outcome := range outcomes {
		switch {
		case outcome.err == nil:
			completed++
		case errors.Is(outcome.err, ErrProviderTimedOut):
			timedOut++
		default:
			if firstErr == nil {
				firstErr = outcome.err
			}
		}
	}

	switch {
	case completed > 0:
		return models.StateComplete, nil
	case timedOut > 0:
		return models.StateTimedOut, nil
	default:
		return models.StateFailed, firstErr
	}
}

// recordSearch writes the audit row. History failures are logged, never
// surfaced: the caller already has their result.
func (s *searchService) recordSearch(ctx context.Context, userID int64, req models.SearchRequest, result *models.SearchResult) {
	record := &models.SearchRecord{
		UserID:        userID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Passengers:    req.Passengers(),
		Currency:      strings.ToUpper(result.Currency),
		Providers:     strings.Join(result.Providers, ","),
		OfferCount:    len(result.Offers),
		State:         result.State,
		CreatedAt:     s.now(),
	}

	if err := s.history.SaveSearch(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Err(err).
			Str("search_id", result.SearchID).
			Int64("user_id", userID).
			Msg("failed to record search history")
	}
}

func (s *searchService) providerNames() []string {
	names := make([]string, 0, len(s.adapters))
	for _, p := range s.adapters {
		names = append(names, p.Name())
	}
	return names
}

// sleepCtx pauses for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
