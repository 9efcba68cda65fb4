package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/normalize"
	"github.com/koalaroute/koalaroute/internal/utils"
	"github.com/koalaroute/koalaroute/models"
)

// duffelAPIVersion pins the wire contract; the upstream rejects requests
// without it.
const duffelAPIVersion = "v2"

type duffelAdapter struct {
	client *utils.HTTPClient
	conv   *normalize.Converter

	logger *logger.Logger
}

// NewDuffelAdapter constructs a [ProviderAdapter] for the Duffel flights
// API. Search creates an offer request and returns its inline offers along
// with a handle; polling refetches the offers produced for that request.
// Booking creates a hosted checkout session and returns its link.
func NewDuffelAdapter(cfg config.Duffel, conv *normalize.Converter, timeout time.Duration, log *logger.Logger) (ProviderAdapter, error) {
	client, err := newProviderClient(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	client.
		SetAuthToken(cfg.APIToken).
		SetHeader("Duffel-Version", duffelAPIVersion)

	return &duffelAdapter{client: client, conv: conv, logger: log}, nil
}

// Name implements [ProviderAdapter].
func (d *duffelAdapter) Name() string { return ProviderDuffel }

// Search implements [ProviderAdapter]. The single POST creates the offer
// request and returns its initial offer set inline, so the search is
// complete immediately. The handle still refers to the offer-request
// resource in case the initial set arrives empty and Poll has to refetch it.
func (d *duffelAdapter) Search(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, []models.FlightOffer, error) {
	var created struct {
		Data struct {
			ID     string            `json:"id"`
			Offers []json.RawMessage `json:"offers"`
		} `json:"data"`
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("return_offers", "true").
		SetBody(map[string]any{"data": duffelOfferRequest(req)}).
		SetResult(&created).
		Post("/air/offer_requests")
	if err != nil {
		return nil, nil, &TransportError{Provider: ProviderDuffel, Err: err}
	}
	if err = mapUpstreamError(ProviderDuffel, resp); err != nil {
		return nil, nil, err
	}
	if created.Data.ID == "" {
		return nil, nil, fmt.Errorf("duffel: offer request response carries no id")
	}

	offers, skipped := normalize.Batch(created.Data.Offers, d.offerNormalizer(req))
	if skipped > 0 {
		d.logger.Warn().Int("skipped", skipped).Msg("duffel: dropped malformed offers")
	}

	handle := &models.SearchHandle{
		Provider:  ProviderDuffel,
		ID:        created.Data.ID,
		CreatedAt: time.Now(),
		Request:   req,
	}
	return handle, offers, nil
}

// Poll implements [ProviderAdapter]. An empty offer list means the upstream
// is still forming results for the request; a non-empty list is final.
func (d *duffelAdapter) Poll(ctx context.Context, handle models.SearchHandle) (models.PollStatus, []models.FlightOffer, error) {
	if handle.Provider != ProviderDuffel {
		return "", nil, ErrHandleWrongProvider
	}

	resp, err := getWithRetry(ctx, func(ctx context.Context) (*resty.Response, error) {
		return d.client.R().
			SetContext(ctx).
			SetQueryParam("offer_request_id", handle.ID).
			Get("/air/offers")
	})
	if err != nil {
		return "", nil, &TransportError{Provider: ProviderDuffel, Err: err}
	}
	if err = mapUpstreamError(ProviderDuffel, resp); err != nil {
		return "", nil, err
	}

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err = json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", nil, fmt.Errorf("duffel: decode offers response: %w", err)
	}

	if len(payload.Data) == 0 {
		return models.PollPending, nil, nil
	}

	offers, skipped := normalize.Batch(payload.Data, d.offerNormalizer(handle.Request))
	if skipped > 0 {
		d.logger.Warn().Int("skipped", skipped).Msg("duffel: dropped malformed offers")
	}

	return models.PollComplete, offers, nil
}

// Book implements [ProviderAdapter]. It creates a hosted checkout session
// for the offer and returns its link; ticketing happens on the hosted page,
// not in this engine. Session creation is never retried.
func (d *duffelAdapter) Book(ctx context.Context, offer models.FlightOffer, traveler models.TravelerInfo) (*models.BookingConfirmation, error) {
	var session struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}

	body := map[string]any{
		"data": map[string]any{
			"reference":             offer.ID,
			"checkout_display_text": fmt.Sprintf("%s %s to %s", offer.Airline, offer.Origin, offer.Destination),
			"traveller_email":       traveler.Email,
			"traveller_first_name":  traveler.FirstName,
			"traveller_last_name":   traveler.LastName,
		},
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&session).
		Post("/links/sessions")
	if err != nil {
		return nil, &TransportError{Provider: ProviderDuffel, Err: err}
	}
	if err = mapUpstreamError(ProviderDuffel, resp); err != nil {
		return nil, err
	}
	if session.Data.URL == "" {
		return nil, fmt.Errorf("duffel: session response carries no url")
	}

	return &models.BookingConfirmation{
		Provider:   ProviderDuffel,
		BookingURL: session.Data.URL,
		Raw:        json.RawMessage(resp.Body()),
	}, nil
}

// duffelOfferRequest shapes the search into the upstream offer-request
// document.
func duffelOfferRequest(req models.SearchRequest) map[string]any {
	slices := []map[string]any{{
		"origin":         strings.ToUpper(req.Origin),
		"destination":    strings.ToUpper(req.Destination),
		"departure_date": req.DepartureDate,
	}}
	if req.ReturnDate != "" {
		slices = append(slices, map[string]any{
			"origin":         strings.ToUpper(req.Destination),
			"destination":    strings.ToUpper(req.Origin),
			"departure_date": req.ReturnDate,
		})
	}

	passengers := make([]map[string]any, 0, req.Passengers())
	for i := 0; i < req.Adults; i++ {
		passengers = append(passengers, map[string]any{"type": "adult"})
	}
	for i := 0; i < req.Children; i++ {
		passengers = append(passengers, map[string]any{"type": "child"})
	}
	for i := 0; i < req.Infants; i++ {
		passengers = append(passengers, map[string]any{"type": "infant_without_seat"})
	}

	cabin := "economy"
	if req.TripClass == models.TripClassBusiness {
		cabin = "business"
	}

	return map[string]any{
		"slices":      slices,
		"passengers":  passengers,
		"cabin_class": cabin,
	}
}

// duffelOffer mirrors the subset of the upstream offer needed for
// normalization. total_amount already covers every passenger.
type duffelOffer struct {
	ID            string `json:"id"`
	TotalAmount   string `json:"total_amount"`
	TotalCurrency string `json:"total_currency"`
	Owner         struct {
		IataCode string `json:"iata_code"`
	} `json:"owner"`
	Slices []struct {
		Segments []struct {
			DepartingAt string `json:"departing_at"`
			ArrivingAt  string `json:"arriving_at"`
			Origin      struct {
				IataCode string `json:"iata_code"`
			} `json:"origin"`
			Destination struct {
				IataCode string `json:"iata_code"`
			} `json:"destination"`
		} `json:"segments"`
	} `json:"slices"`
}

// offerNormalizer maps raw upstream offers into [models.FlightOffer] priced
// in the request's currency. Duffel quotes total_amount in the owner's
// currency, so the price is rebased through the rate table before it leaves
// the adapter.
func (d *duffelAdapter) offerNormalizer(req models.SearchRequest) func(json.RawMessage) (models.FlightOffer, error) {
	requested := d.conv.Resolve(req.Currency)
	passengers := req.Passengers()

	return func(raw json.RawMessage) (models.FlightOffer, error) {
		var offer duffelOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			return models.FlightOffer{}, err
		}
		if len(offer.Slices) == 0 || len(offer.Slices[0].Segments) == 0 {
			return models.FlightOffer{}, fmt.Errorf("offer %s has no segments", offer.ID)
		}

		quoted, err := normalize.MinorUnits(offer.TotalAmount)
		if err != nil {
			return models.FlightOffer{}, fmt.Errorf("unparsable total amount %q: %w", offer.TotalAmount, err)
		}
		price, currency := d.conv.Rebase(quoted, offer.TotalCurrency, requested)

		outbound := offer.Slices[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		return models.FlightOffer{
			ID:          offer.ID,
			Provider:    ProviderDuffel,
			Airline:     normalize.StringOrUnknown(offer.Owner.IataCode),
			Origin:      normalize.StringOrUnknown(first.Origin.IataCode),
			Destination: normalize.StringOrUnknown(last.Destination.IataCode),
			DepartureAt: normalize.StringOrUnknown(first.DepartingAt),
			ArrivalAt:   normalize.StringOrUnknown(last.ArrivingAt),
			Price:       price,
			Currency:    currency,
			Passengers:  passengers,
			Payload:     raw,
		}, nil
	}
}
