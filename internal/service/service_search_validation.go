package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/koalaroute/koalaroute/models"
)

const wireDateLayout = "2006-01-02"

// validateSearchRequest rejects requests no provider could serve. Every
// failure wraps [ErrInvalidSearchRequest] so the transport layer can map the
// whole family to one status code.
func validateSearchRequest(req models.SearchRequest) error {
	origin := strings.ToUpper(strings.TrimSpace(req.Origin))
	destination := strings.ToUpper(strings.TrimSpace(req.Destination))

	switch {
	case !isIATACode(origin):
		return fmt.Errorf("%w: origin must be a 3-letter IATA code", ErrInvalidSearchRequest)
	case !isIATACode(destination):
		return fmt.Errorf("%w: destination must be a 3-letter IATA code", ErrInvalidSearchRequest)
	case origin == destination:
		return fmt.Errorf("%w: origin and destination must differ", ErrInvalidSearchRequest)
	case req.Adults < 1:
		return fmt.Errorf("%w: at least one adult passenger is required", ErrInvalidSearchRequest)
	case req.Children < 0 || req.Infants < 0:
		return fmt.Errorf("%w: passenger counts must not be negative", ErrInvalidSearchRequest)
	case req.Infants > req.Adults:
		return fmt.Errorf("%w: each infant requires an accompanying adult", ErrInvalidSearchRequest)
	}

	departure, err := time.Parse(wireDateLayout, req.DepartureDate)
	if err != nil {
		return fmt.Errorf("%w: departure date must be formatted %s", ErrInvalidSearchRequest, wireDateLayout)
	}

	if req.ReturnDate != "" {
		ret, parseErr := time.Parse(wireDateLayout, req.ReturnDate)
		if parseErr != nil {
			return fmt.Errorf("%w: return date must be formatted %s", ErrInvalidSearchRequest, wireDateLayout)
		}
		if ret.Before(departure) {
			return fmt.Errorf("%w: return date precedes departure date", ErrInvalidSearchRequest)
		}
	}

	if req.TripClass != "" && req.TripClass != models.TripClassEconomy && req.TripClass != models.TripClassBusiness {
		return fmt.Errorf("%w: unsupported trip class %q", ErrInvalidSearchRequest, req.TripClass)
	}

	return nil
}

// canonicalizeSearchRequest normalises casing and fills the defaulted
// fields, so every adapter sees the same request shape.
func canonicalizeSearchRequest(req models.SearchRequest, defaultCurrency string) models.SearchRequest {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))

	if req.TripClass == "" {
		req.TripClass = models.TripClassEconomy
	}

	req.Currency = strings.ToLower(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = strings.ToLower(defaultCurrency)
	}

	return req
}

func isIATACode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
