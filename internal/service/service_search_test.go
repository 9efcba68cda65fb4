package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/mock"
	"github.com/koalaroute/koalaroute/models"
)

func testSearchConfig() config.Search {
	return config.Search{
		PollInterval:    time.Millisecond,
		PollAttempts:    3,
		ProviderTimeout: time.Second,
		HandleTTL:       time.Minute,
		DefaultCurrency: "usd",
	}
}

func newSearchFixture(t *testing.T, adapters ...adapter.ProviderAdapter) (SearchService, *mock.MockSearchHistoryRepository, *SearchRegistry) {
	t.Helper()

	ctrl := gomock.NewController(t)
	history := mock.NewMockSearchHistoryRepository(ctrl)
	registry := NewSearchRegistry(time.Minute)

	svc := NewSearchService(adapters, registry, history, testSearchConfig(), logger.Nop())
	return svc, history, registry
}

func namedAdapter(ctrl *gomock.Controller, name string) *mock.MockProviderAdapter {
	p := mock.NewMockProviderAdapter(ctrl)
	p.EXPECT().Name().Return(name).AnyTimes()
	return p
}

// ── Run ─────────────────────────────────────────────────────────────────────

func TestSearchService_Run_SyncProviderCompletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	amadeus := namedAdapter(ctrl, adapter.ProviderAmadeus)

	offers := []models.FlightOffer{
		{ID: "am-1", Provider: adapter.ProviderAmadeus, Price: 33000, Currency: "USD"},
	}
	amadeus.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, offers, nil)

	svc, history, _ := newSearchFixture(t, amadeus)

	var saved *models.SearchRecord
	history.EXPECT().
		SaveSearch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *models.SearchRecord) error {
			saved = record
			return nil
		})

	result, err := svc.Run(context.Background(), 42, validRequest())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, models.StateComplete, result.State)
	assert.NotEmpty(t, result.SearchID)
	assert.Equal(t, "usd", result.Currency)
	assert.Equal(t, []string{adapter.ProviderAmadeus}, result.Providers)
	assert.Equal(t, offers, result.Offers)

	require.NotNil(t, saved)
	assert.Equal(t, int64(42), saved.UserID)
	assert.Equal(t, "MAD", saved.Origin)
	assert.Equal(t, "BCN", saved.Destination)
	assert.Equal(t, 1, saved.OfferCount)
	assert.Equal(t, models.StateComplete, saved.State)
	assert.Equal(t, "USD", saved.Currency)
}

func TestSearchService_Run_AsyncProviderPollsUntilComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	tp := namedAdapter(ctrl, adapter.ProviderTravelpayouts)

	handle := &models.SearchHandle{Provider: adapter.ProviderTravelpayouts, ID: "uuid-1"}
	tp.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(handle, nil, nil)

	firstChunk := []models.FlightOffer{{ID: "tp-1", Provider: adapter.ProviderTravelpayouts}}
	secondChunk := []models.FlightOffer{{ID: "tp-2", Provider: adapter.ProviderTravelpayouts}}
	gomock.InOrder(
		tp.EXPECT().
			Poll(gomock.Any(), gomock.Any()).
			Return(models.PollPending, firstChunk, nil),
		tp.EXPECT().
			Poll(gomock.Any(), gomock.Any()).
			Return(models.PollComplete, secondChunk, nil),
	)

	svc, history, _ := newSearchFixture(t, tp)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StateComplete, result.State)
	require.Len(t, result.Offers, 2)
	assert.Equal(t, "tp-1", result.Offers[0].ID)
	assert.Equal(t, "tp-2", result.Offers[1].ID)
}

// TestSearchService_Run_InlineOffersSkipPolling verifies that a provider
// returning its initial offer set alongside a handle is final: no Poll call
// is ever issued (gomock fails the test on an unexpected Poll).
func TestSearchService_Run_InlineOffersSkipPolling(t *testing.T) {
	ctrl := gomock.NewController(t)
	duffel := namedAdapter(ctrl, adapter.ProviderDuffel)

	handle := &models.SearchHandle{Provider: adapter.ProviderDuffel, ID: "orq-9"}
	inline := []models.FlightOffer{{ID: "off-1", Provider: adapter.ProviderDuffel}}
	duffel.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(handle, inline, nil)

	svc, history, _ := newSearchFixture(t, duffel)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StateComplete, result.State)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "off-1", result.Offers[0].ID)
}

func TestSearchService_Run_PollDeadlineStamped(t *testing.T) {
	ctrl := gomock.NewController(t)
	duffel := namedAdapter(ctrl, adapter.ProviderDuffel)

	duffel.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(&models.SearchHandle{Provider: adapter.ProviderDuffel, ID: "orq-1"}, nil, nil)
	duffel.EXPECT().
		Poll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h models.SearchHandle) (models.PollStatus, []models.FlightOffer, error) {
			assert.False(t, h.Deadline.IsZero(), "handle deadline must be stamped before polling")
			return models.PollComplete, nil, nil
		})

	svc, history, _ := newSearchFixture(t, duffel)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Run(context.Background(), 1, validRequest())
	require.NoError(t, err)
}

func TestSearchService_Run_PollBudgetExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	tp := namedAdapter(ctrl, adapter.ProviderTravelpayouts)

	tp.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(&models.SearchHandle{Provider: adapter.ProviderTravelpayouts, ID: "uuid-2"}, nil, nil)

	partial := []models.FlightOffer{{ID: "tp-partial"}}
	tp.EXPECT().
		Poll(gomock.Any(), gomock.Any()).
		Return(models.PollPending, partial, nil)
	tp.EXPECT().
		Poll(gomock.Any(), gomock.Any()).
		Return(models.PollPending, nil, nil).
		Times(2)

	svc, history, _ := newSearchFixture(t, tp)

	var saved *models.SearchRecord
	history.EXPECT().
		SaveSearch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *models.SearchRecord) error {
			saved = record
			return nil
		})

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err, "a timed-out search still returns its partial result")

	assert.Equal(t, models.StateTimedOut, result.State)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "tp-partial", result.Offers[0].ID)

	require.NotNil(t, saved)
	assert.Equal(t, models.StateTimedOut, saved.State)
}

// TestSearchService_Run_StaleHandleStopsPolling verifies that a handle past
// its deadline is never polled again: the provider times out without another
// upstream call (gomock fails the test on an unexpected Poll).
func TestSearchService_Run_StaleHandleStopsPolling(t *testing.T) {
	ctrl := gomock.NewController(t)
	tp := namedAdapter(ctrl, adapter.ProviderTravelpayouts)

	tp.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(&models.SearchHandle{Provider: adapter.ProviderTravelpayouts, ID: "uuid-3"}, nil, nil)

	cfg := testSearchConfig()
	cfg.HandleTTL = -time.Second

	history := mock.NewMockSearchHistoryRepository(ctrl)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	svc := NewSearchService([]adapter.ProviderAdapter{tp}, NewSearchRegistry(time.Minute), history, cfg, logger.Nop())

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StateTimedOut, result.State)
	assert.Empty(t, result.Offers)
}

func TestSearchService_Run_AllProvidersFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	amadeus := namedAdapter(ctrl, adapter.ProviderAmadeus)
	duffel := namedAdapter(ctrl, adapter.ProviderDuffel)

	upstreamErr := &adapter.UpstreamError{Provider: adapter.ProviderAmadeus, StatusCode: 500}
	amadeus.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil, upstreamErr)
	duffel.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("connection refused"))

	svc, history, _ := newSearchFixture(t, amadeus, duffel)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background(), 7, validRequest())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestSearchService_Run_OneProviderCarriesTheSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	amadeus := namedAdapter(ctrl, adapter.ProviderAmadeus)
	tp := namedAdapter(ctrl, adapter.ProviderTravelpayouts)

	amadeus.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, []models.FlightOffer{{ID: "am-1"}}, nil)
	tp.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, nil, &adapter.AuthError{Provider: adapter.ProviderTravelpayouts, Err: errors.New("invalid signature")})

	svc, history, _ := newSearchFixture(t, amadeus, tp)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StateComplete, result.State)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "am-1", result.Offers[0].ID)
}

func TestSearchService_Run_InvalidRequestSkipsProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	amadeus := mock.NewMockProviderAdapter(ctrl)

	svc, _, registry := newSearchFixture(t, amadeus)

	req := validRequest()
	req.Adults = 0

	result, err := svc.Run(context.Background(), 7, req)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidSearchRequest)
	assert.Zero(t, registry.Len(), "rejected requests must not register a search")
}

func TestSearchService_Run_HistoryFailureDoesNotFailSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	amadeus := namedAdapter(ctrl, adapter.ProviderAmadeus)
	amadeus.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, []models.FlightOffer{{ID: "am-1"}}, nil)

	svc, history, _ := newSearchFixture(t, amadeus)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StateComplete, result.State)
}

// ── Snapshot ────────────────────────────────────────────────────────────────

func TestSearchService_Snapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	amadeus := namedAdapter(ctrl, adapter.ProviderAmadeus)
	amadeus.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, []models.FlightOffer{{ID: "am-1"}}, nil)

	svc, history, _ := newSearchFixture(t, amadeus)
	history.EXPECT().SaveSearch(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background(), 7, validRequest())
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(context.Background(), result.SearchID)
	require.NoError(t, err)
	assert.Equal(t, result.SearchID, snapshot.SearchID)
	assert.Equal(t, models.StateComplete, snapshot.State)
	assert.Len(t, snapshot.Offers, 1)

	_, err = svc.Snapshot(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrHandleNotFound)
}

// ── classifyOutcomes ────────────────────────────────────────────────────────

func TestClassifyOutcomes(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		outcomes  []providerOutcome
		wantState models.SearchState
		wantErr   error
	}{
		{
			name:      "single success",
			outcomes:  []providerOutcome{{name: "a"}},
			wantState: models.StateComplete,
		},
		{
			name: "success beats timeout and failure",
			outcomes: []providerOutcome{
				{name: "a", err: ErrProviderTimedOut},
				{name: "b"},
				{name: "c", err: boom},
			},
			wantState: models.StateComplete,
		},
		{
			name: "timeout beats failure",
			outcomes: []providerOutcome{
				{name: "a", err: boom},
				{name: "b", err: ErrProviderTimedOut},
			},
			wantState: models.StateTimedOut,
		},
		{
			name: "all failed keeps the first error",
			outcomes: []providerOutcome{
				{name: "a", err: boom},
				{name: "b", err: errors.New("later")},
			},
			wantState: models.StateFailed,
			wantErr:   boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := classifyOutcomes(tt.outcomes)
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}
