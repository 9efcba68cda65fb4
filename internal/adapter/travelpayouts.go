// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/crypto"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/normalize"
	"github.com/koalaroute/koalaroute/internal/utils"
	"github.com/koalaroute/koalaroute/models"
)

// defaultUserIP is sent when the caller's address is not forwarded to the
// engine. The upstream requires the field but does not validate it against
// the TCP peer.
const defaultUserIP = "127.0.0.1"

type travelpayoutsAdapter struct {
	client *utils.HTTPClient
	cfg    config.Travelpayouts
	conv   *normalize.Converter

	logger *logger.Logger
}

// NewTravelpayoutsAdapter constructs a [ProviderAdapter] for the
// Travelpayouts realtime flight-search API. Searches are asynchronous: the
// signed initiate call yields a search uuid that must then be polled for
// result chunks. The API has no booking surface.
func NewTravelpayoutsAdapter(cfg config.Travelpayouts, conv *normalize.Converter, timeout time.Duration, log *logger.Logger) (ProviderAdapter, error) {
	client, err := newProviderClient(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	return &travelpayoutsAdapter{client: client, cfg: cfg, conv: conv, logger: log}, nil
}

// Name implements [ProviderAdapter].
func (t *travelpayoutsAdapter) Name() string { return ProviderTravelpayouts }

// Search implements [ProviderAdapter]. It builds the wire body, signs it
// with the partner token, and exchanges it for a search uuid. The initiate
// POST starts upstream work and is therefore never retried.
func (t *travelpayoutsAdapter) Search(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, []models.FlightOffer, error) {
	body := t.initiateBody(req)
	body["signature"] = crypto.Sign(body, t.cfg.Token)

	var initiated struct {
		SearchID string `json:"search_id"`
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Access-Token", t.cfg.Token).
		SetBody(body).
		SetResult(&initiated).
		Post("/v1/flight_search")
	if err != nil {
		return nil, nil, &TransportError{Provider: ProviderTravelpayouts, Err: err}
	}
	if err = mapUpstreamError(ProviderTravelpayouts, resp); err != nil {
		return nil, nil, err
	}
	if initiated.SearchID == "" {
		return nil, nil, fmt.Errorf("travelpayouts: initiate response carries no search_id")
	}

	handle := &models.SearchHandle{
		Provider:  ProviderTravelpayouts,
		ID:        initiated.SearchID,
		CreatedAt: time.Now(),
		Request:   req,
	}
	return handle, nil, nil
}

// tpResultChunk is one element of the polling response. While the upstream
// search is still running the chunks carry the search uuid and no proposals;
// proposals appear once gate results start arriving.
type tpResultChunk struct {
	SearchID  string            `json:"search_id"`
	Proposals []json.RawMessage `json:"proposals"`
}

// Poll implements [ProviderAdapter]. Result fetches are idempotent GETs and
// go through the bounded retry.
func (t *travelpayoutsAdapter) Poll(ctx context.Context, handle models.SearchHandle) (models.PollStatus, []models.FlightOffer, error) {
	if handle.Provider != ProviderTravelpayouts {
		return "", nil, ErrHandleWrongProvider
	}

	resp, err := getWithRetry(ctx, func(ctx context.Context) (*resty.Response, error) {
		return t.client.R().
			SetContext(ctx).
			SetHeader("X-Access-Token", t.cfg.Token).
			SetQueryParam("uuid", handle.ID).
			Get("/v1/flight_search_results")
	})
	if err != nil {
		return "", nil, &TransportError{Provider: ProviderTravelpayouts, Err: err}
	}
	if err = mapUpstreamError(ProviderTravelpayouts, resp); err != nil {
		return "", nil, err
	}

	var chunks []tpResultChunk
	if err = json.Unmarshal(resp.Body(), &chunks); err != nil {
		return "", nil, fmt.Errorf("travelpayouts: decode results response: %w", err)
	}

	var proposals []json.RawMessage
	for _, chunk := range chunks {
		proposals = append(proposals, chunk.Proposals...)
	}

	if len(proposals) == 0 {
		// Stub chunks only, the upstream search is still running.
		return models.PollPending, nil, nil
	}

	offers, skipped := normalize.Batch(proposals, t.proposalNormalizer(handle))
	if skipped > 0 {
		t.logger.Warn().Int("skipped", skipped).Msg("travelpayouts: dropped malformed proposals")
	}

	return models.PollComplete, offers, nil
}

// Book implements [ProviderAdapter]. The realtime search API is search-only.
func (t *travelpayoutsAdapter) Book(_ context.Context, _ models.FlightOffer, _ models.TravelerInfo) (*models.BookingConfirmation, error) {
	return nil, ErrBookingNotSupported
}

// CheckConnectivity implements [ConnectivityChecker] against the currency
// table endpoint, the cheapest authenticated call the upstream offers.
func (t *travelpayoutsAdapter) CheckConnectivity(ctx context.Context) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("X-Access-Token", t.cfg.Token).
		Get("/v1/latest_currencies")
	if err != nil {
		return &TransportError{Provider: ProviderTravelpayouts, Err: err}
	}
	return mapUpstreamError(ProviderTravelpayouts, resp)
}

// initiateBody builds the signable wire body for the initiate call. The map
// shape matters: the signature covers every scalar reachable from it.
func (t *travelpayoutsAdapter) initiateBody(req models.SearchRequest) map[string]any {
	tripClass := req.TripClass
	if tripClass == "" {
		tripClass = models.TripClassEconomy
	}

	segments := []any{
		map[string]any{
			"origin":      strings.ToUpper(req.Origin),
			"destination": strings.ToUpper(req.Destination),
			"date":        req.DepartureDate,
		},
	}
	if req.ReturnDate != "" {
		segments = append(segments, map[string]any{
			"origin":      strings.ToUpper(req.Destination),
			"destination": strings.ToUpper(req.Origin),
			"date":        req.ReturnDate,
		})
	}

	return map[string]any{
		"marker":     t.cfg.Marker,
		"host":       t.cfg.Host,
		"user_ip":    defaultUserIP,
		"locale":     "en",
		"trip_class": tripClass,
		"passengers": map[string]any{
			"adults":   req.Adults,
			"children": req.Children,
			"infants":  req.Infants,
		},
		"segments": segments,
	}
}

// tpProposal mirrors the subset of an upstream proposal needed for
// normalization. Prices arrive in upstream units and cover one passenger,
// so the converter applies both the rate and the passenger count.
type tpProposal struct {
	Sign     string   `json:"sign"`
	Carriers []string `json:"carriers"`
	Segment  []struct {
		Flight []struct {
			Departure     string `json:"departure"`
			Arrival       string `json:"arrival"`
			DepartureDate string `json:"departure_date"`
			DepartureTime string `json:"departure_time"`
			ArrivalDate   string `json:"arrival_date"`
			ArrivalTime   string `json:"arrival_time"`
		} `json:"flight"`
	} `json:"segment"`
	Terms map[string]struct {
		UnifiedPrice float64 `json:"unified_price"`
		Price        float64 `json:"price"`
		Currency     string  `json:"currency"`
	} `json:"terms"`
}

func (t *travelpayoutsAdapter) proposalNormalizer(handle models.SearchHandle) func(json.RawMessage) (models.FlightOffer, error) {
	currency := t.conv.Resolve(handle.Request.Currency)
	passengers := handle.Request.Passengers()
	if passengers < 1 {
		passengers = 1
	}

	return func(raw json.RawMessage) (models.FlightOffer, error) {
		var p tpProposal
		if err := json.Unmarshal(raw, &p); err != nil {
			return models.FlightOffer{}, err
		}
		if len(p.Segment) == 0 || len(p.Segment[0].Flight) == 0 {
			return models.FlightOffer{}, errors.New("proposal has no flights")
		}
		if len(p.Terms) == 0 {
			return models.FlightOffer{}, errors.New("proposal has no terms")
		}

		// Any term works; gates quote the same unified price.
		var unified float64
		for _, term := range p.Terms {
			unified = term.UnifiedPrice
			if unified == 0 {
				unified = term.Price
			}
			break
		}
		if unified == 0 {
			return models.FlightOffer{}, errors.New("proposal has no usable price")
		}

		outbound := p.Segment[0].Flight
		first := outbound[0]
		last := outbound[len(outbound)-1]

		airline := ""
		if len(p.Carriers) > 0 {
			airline = p.Carriers[0]
		}

		id := p.Sign
		if id == "" {
			id = handle.ID
		}

		// Per-passenger upstream price: the converter multiplies by the
		// passenger count after applying the currency rate.
		return models.FlightOffer{
			ID:          id,
			Provider:    ProviderTravelpayouts,
			Airline:     normalize.StringOrUnknown(airline),
			Origin:      normalize.StringOrUnknown(first.Departure),
			Destination: normalize.StringOrUnknown(last.Arrival),
			DepartureAt: normalize.StringOrUnknown(localTimestamp(first.DepartureDate, first.DepartureTime)),
			ArrivalAt:   normalize.StringOrUnknown(localTimestamp(last.ArrivalDate, last.ArrivalTime)),
			Price:       t.conv.Convert(unified, currency, passengers),
			Currency:    strings.ToUpper(currency),
			Passengers:  passengers,
			Payload:     raw,
		}, nil
	}
}

// localTimestamp joins the upstream's split date and time fields into one
// RFC 3339 local timestamp, or returns "" when either half is missing.
func localTimestamp(date, clock string) string {
	if date == "" || clock == "" {
		return ""
	}
	return date + "T" + clock + ":00"
}
