// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/normalize"
	"github.com/koalaroute/koalaroute/internal/utils"
	"github.com/koalaroute/koalaroute/models"
)

// maxAmadeusOffers caps the number of offers requested per search.
const maxAmadeusOffers = 50

type amadeusAdapter struct {
	client *utils.HTTPClient
	cfg    config.Amadeus
	tokens *tokenCache
	conv   *normalize.Converter

	logger *logger.Logger
}

// NewAmadeusAdapter constructs a [ProviderAdapter] for the Amadeus
// Self-Service flight API. Searches are synchronous and bookings create
// ticketed orders directly. Bearer tokens are obtained through the OAuth2
// client-credentials flow and cached until shortly before expiry.
func NewAmadeusAdapter(cfg config.Amadeus, conv *normalize.Converter, timeout time.Duration, log *logger.Logger) (ProviderAdapter, error) {
	client, err := newProviderClient(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	a := &amadeusAdapter{client: client, cfg: cfg, conv: conv, logger: log}
	a.tokens = newTokenCache(a.exchangeCredentials, defaultTokenMargin)
	return a, nil
}

// Name implements [ProviderAdapter].
func (a *amadeusAdapter) Name() string { return ProviderAmadeus }

// exchangeCredentials performs the OAuth2 client-credentials exchange.
func (a *amadeusAdapter) exchangeCredentials(ctx context.Context) (models.AccessToken, error) {
	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     a.cfg.ClientID,
			"client_secret": a.cfg.ClientSecret,
		}).
		SetResult(&grant).
		Post("/v1/security/oauth2/token")
	if err != nil {
		return models.AccessToken{}, &TransportError{Provider: ProviderAmadeus, Err: err}
	}
	if err = mapUpstreamError(ProviderAmadeus, resp); err != nil {
		return models.AccessToken{}, err
	}
	if grant.AccessToken == "" {
		return models.AccessToken{}, &AuthError{Provider: ProviderAmadeus, Err: errors.New("token exchange returned no access token")}
	}

	return models.AccessToken{
		Value:     grant.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}, nil
}

// Search implements [ProviderAdapter]. Amadeus answers in a single request,
// so no handle is ever issued. A 401 on a token the cache considered valid
// triggers exactly one re-exchange before the request is given up on.
func (a *amadeusAdapter) Search(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, []models.FlightOffer, error) {
	query := a.searchQuery(req)

	resp, err := a.authedGet(ctx, "/v2/shopping/flight-offers", query)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		a.tokens.Invalidate()
		if resp, err = a.authedGet(ctx, "/v2/shopping/flight-offers", query); err != nil {
			return nil, nil, err
		}
	}
	if err = mapUpstreamError(ProviderAmadeus, resp); err != nil {
		return nil, nil, err
	}

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err = json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, nil, fmt.Errorf("amadeus: decode offers response: %w", err)
	}

	offers, skipped := normalize.Batch(payload.Data, a.offerNormalizer(req.Passengers()))
	if skipped > 0 {
		a.logger.Warn().Int("skipped", skipped).Msg("amadeus: dropped malformed offers")
	}

	return nil, offers, nil
}

// Poll implements [ProviderAdapter]. Searches complete inside Search, so
// any handle presented here is already final.
func (a *amadeusAdapter) Poll(_ context.Context, handle models.SearchHandle) (models.PollStatus, []models.FlightOffer, error) {
	if handle.Provider != "" && handle.Provider != ProviderAmadeus {
		return "", nil, ErrHandleWrongProvider
	}
	return models.PollComplete, nil, nil
}

// Book implements [ProviderAdapter]. It creates a flight order from the
// offer's untouched upstream payload and the traveler details. Order
// creation is not idempotent and is therefore never retried.
func (a *amadeusAdapter) Book(ctx context.Context, offer models.FlightOffer, traveler models.TravelerInfo) (*models.BookingConfirmation, error) {
	if len(offer.Payload) == 0 {
		return nil, fmt.Errorf("amadeus: offer %s carries no bookable payload", offer.ID)
	}

	token, err := a.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"data": map[string]any{
			"type":         "flight-order",
			"flightOffers": []json.RawMessage{offer.Payload},
			"travelers":    []map[string]any{amadeusTraveler(traveler)},
		},
	}

	var order struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&order).
		Post("/v1/booking/flight-orders")
	if err != nil {
		return nil, &TransportError{Provider: ProviderAmadeus, Err: err}
	}
	if err = mapUpstreamError(ProviderAmadeus, resp); err != nil {
		return nil, err
	}
	if order.Data.ID == "" {
		return nil, fmt.Errorf("amadeus: order response carries no id")
	}

	return &models.BookingConfirmation{
		Provider: ProviderAmadeus,
		OrderID:  order.Data.ID,
		Raw:      json.RawMessage(resp.Body()),
	}, nil
}

func (a *amadeusAdapter) authedGet(ctx context.Context, path string, query map[string]string) (*resty.Response, error) {
	token, err := a.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := getWithRetry(ctx, func(ctx context.Context) (*resty.Response, error) {
		return a.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParams(query).
			Get(path)
	})
	if err != nil {
		return nil, &TransportError{Provider: ProviderAmadeus, Err: err}
	}
	return resp, nil
}

func (a *amadeusAdapter) searchQuery(req models.SearchRequest) map[string]string {
	query := map[string]string{
		"originLocationCode":      strings.ToUpper(req.Origin),
		"destinationLocationCode": strings.ToUpper(req.Destination),
		"departureDate":           req.DepartureDate,
		"adults":                  strconv.Itoa(req.Adults),
		"currencyCode":            strings.ToUpper(a.conv.Resolve(req.Currency)),
		"max":                     strconv.Itoa(maxAmadeusOffers),
	}
	if req.ReturnDate != "" {
		query["returnDate"] = req.ReturnDate
	}
	if req.Children > 0 {
		query["children"] = strconv.Itoa(req.Children)
	}
	if req.Infants > 0 {
		query["infants"] = strconv.Itoa(req.Infants)
	}
	if req.TripClass == models.TripClassBusiness {
		query["travelClass"] = "BUSINESS"
	}
	return query
}

// amadeusOffer mirrors the subset of the upstream offer document needed for
// normalization. The full raw document still travels on the offer payload.
type amadeusOffer struct {
	ID                     string   `json:"id"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	Itineraries            []struct {
		Segments []struct {
			Departure amadeusEndpoint `json:"departure"`
			Arrival   amadeusEndpoint `json:"arrival"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
}

type amadeusEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

// offerNormalizer shapes raw upstream offers into the canonical model.
// grandTotal already covers all travelers in the requested currency, so no
// conversion or passenger multiplication applies here.
func (a *amadeusAdapter) offerNormalizer(passengers int) func(json.RawMessage) (models.FlightOffer, error) {
	return func(raw json.RawMessage) (models.FlightOffer, error) {
		var offer amadeusOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			return models.FlightOffer{}, err
		}
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			return models.FlightOffer{}, errors.New("offer has no segments")
		}

		price, err := normalize.MinorUnits(offer.Price.GrandTotal)
		if err != nil {
			return models.FlightOffer{}, fmt.Errorf("unparsable grand total %q: %w", offer.Price.GrandTotal, err)
		}

		outbound := offer.Itineraries[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		airline := ""
		if len(offer.ValidatingAirlineCodes) > 0 {
			airline = offer.ValidatingAirlineCodes[0]
		}

		return models.FlightOffer{
			ID:          offer.ID,
			Provider:    ProviderAmadeus,
			Airline:     normalize.StringOrUnknown(airline),
			Origin:      normalize.StringOrUnknown(first.Departure.IataCode),
			Destination: normalize.StringOrUnknown(last.Arrival.IataCode),
			DepartureAt: normalize.StringOrUnknown(first.Departure.At),
			ArrivalAt:   normalize.StringOrUnknown(last.Arrival.At),
			Price:       price,
			Currency:    strings.ToUpper(normalize.StringOrUnknown(offer.Price.Currency)),
			Passengers:  passengers,
			Payload:     raw,
		}, nil
	}
}

// amadeusTraveler shapes the engine's traveler model into the upstream
// traveler document.
func amadeusTraveler(t models.TravelerInfo) map[string]any {
	traveler := map[string]any{
		"id":          "1",
		"dateOfBirth": t.DateOfBirth,
		"name": map[string]any{
			"firstName": t.FirstName,
			"lastName":  t.LastName,
		},
		"gender": strings.ToUpper(t.Gender),
		"contact": map[string]any{
			"emailAddress": t.Email,
			"phones": []map[string]any{{
				"deviceType": "MOBILE",
				"number":     t.Phone,
			}},
		},
	}

	if t.PassportNumber != "" {
		traveler["documents"] = []map[string]any{{
			"documentType":    "PASSPORT",
			"number":          t.PassportNumber,
			"expiryDate":      t.PassportExpiry,
			"issuanceCountry": t.PassportCountry,
			"nationality":     t.PassportCountry,
			"holder":          true,
		}}
	}

	return traveler
}
