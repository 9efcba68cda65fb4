package models

import "encoding/json"

// UnknownField is substituted for optional offer attributes a provider did
// not supply (airline code, arrival time). Normalization never fails a whole
// batch because of a missing optional field.
const UnknownField = "N/A"

// FlightOffer is the canonical, bookable itinerary produced by offer
// normalization. It is immutable once created. Prices always carry the
// caller's requested currency; raw provider price units are never surfaced.
type FlightOffer struct {
	// ID identifies the offer within its provider's namespace.
	ID string `json:"id"`

	// Provider is the name of the adapter the offer came from.
	Provider string `json:"provider"`

	// Airline is the two-letter IATA carrier code of the validating airline,
	// or [UnknownField] when the provider omitted it.
	Airline string `json:"airline"`

	// Origin and Destination are IATA codes of the itinerary endpoints.
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// DepartureAt and ArrivalAt are RFC 3339 timestamps as reported by the
	// provider. ArrivalAt may be [UnknownField].
	DepartureAt string `json:"departure_at"`
	ArrivalAt   string `json:"arrival_at"`

	// Price is the total amount in minor units of Currency, already
	// converted for the requested currency and multiplied by the passenger
	// count.
	Price int64 `json:"price"`

	// Currency is the upper-case ISO code Price is denominated in.
	Currency string `json:"currency"`

	// Passengers is the passenger count the price covers.
	Passengers int `json:"passengers"`

	// Payload is the untouched provider offer document. The booking
	// submitter sends it back to the provider that produced it; it is opaque
	// to every other component.
	Payload json.RawMessage `json:"payload,omitempty"`
}
