// SPDX-License-Identifier: Apache-2.0

// Package normalize holds the shared utilities every provider adapter uses
// to shape raw upstream proposals into canonical [models.FlightOffer] values:
// currency conversion, minor-unit arithmetic, and tolerant batch mapping.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

// IdentityRate is the conversion rate applied when the requested currency is
// absent from the configured table. The search still succeeds and the price
// stays in upstream units rather than failing the whole request.
const IdentityRate = 1.0

// Converter converts upstream price units into the caller's requested
// currency using a static, configuration-supplied rate table. It is
// immutable after construction and safe for concurrent use.
type Converter struct {
	rates           map[string]float64
	defaultCurrency string
}

// NewConverter builds a Converter from the configured rate table and default
// currency code. Codes are handled case-insensitively.
func NewConverter(rates map[string]float64, defaultCurrency string) *Converter {
	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		normalized[strings.ToLower(code)] = rate
	}

	return &Converter{
		rates:           normalized,
		defaultCurrency: strings.ToLower(defaultCurrency),
	}
}

// Resolve returns the lower-case currency code to price a request in:
// the requested code when present, the configured default otherwise.
func (c *Converter) Resolve(requested string) string {
	if requested == "" {
		return c.defaultCurrency
	}
	return strings.ToLower(requested)
}

// Rate returns the conversion rate from upstream price units into currency,
// or [IdentityRate] when the currency is not in the table.
func (c *Converter) Rate(currency string) float64 {
	if rate, ok := c.rates[strings.ToLower(currency)]; ok {
		return rate
	}
	return IdentityRate
}

// Convert turns a per-itinerary amount in upstream price units into minor
// units of currency, multiplied by the passenger count and rounded to whole
// minor units (two decimal places of the major unit).
func (c *Converter) Convert(amount float64, currency string, passengers int) int64 {
	if passengers < 1 {
		passengers = 1
	}
	return int64(math.Round(amount * c.Rate(currency) * float64(passengers) * 100))
}

// Rebase converts a price in minor units quoted in one currency into minor
// units of the requested currency, using the cross rate implied by the table
// (both codes are expressed against the same upstream unit). It returns the
// converted price together with the upper-case code it is now quoted in.
// When the two codes already match, or either one is absent from the table,
// the price keeps its quoted currency.
func (c *Converter) Rebase(minor int64, quoted, requested string) (int64, string) {
	from, quotedKnown := c.rates[strings.ToLower(quoted)]
	to, requestedKnown := c.rates[strings.ToLower(requested)]

	if strings.EqualFold(quoted, requested) || !quotedKnown || !requestedKnown {
		return minor, strings.ToUpper(StringOrUnknown(quoted))
	}

	return int64(math.Round(MajorUnits(minor) * to / from * 100)), strings.ToUpper(requested)
}

// MinorUnits parses a decimal amount string (e.g. Duffel's "123.45") into
// minor units.
func MinorUnits(amount string) (int64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(value * 100)), nil
}

// MajorUnits is the inverse of [MinorUnits] for re-conversion checks.
func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}
