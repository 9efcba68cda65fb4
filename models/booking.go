package models

import "encoding/json"

// TravelerInfo carries the passenger details a provider needs to create an
// order. Document fields are only required by providers that issue tickets
// directly (Amadeus); link-based providers ignore them.
type TravelerInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`

	// PassportNumber, PassportExpiry and PassportCountry describe the
	// traveler's identity document.
	PassportNumber  string `json:"passport_number,omitempty"`
	PassportExpiry  string `json:"passport_expiry,omitempty"`
	PassportCountry string `json:"passport_country,omitempty"`
}

// BookingConfirmation is the result of a successful one-shot order or
// booking-link creation. Exactly one of OrderID and BookingURL is set,
// depending on whether the provider creates orders directly or hands the
// traveler a hosted checkout link.
type BookingConfirmation struct {
	// Provider is the adapter that accepted the booking.
	Provider string `json:"provider"`

	// OrderID is the provider-side order reference for direct bookings.
	OrderID string `json:"order_id,omitempty"`

	// BookingURL is the hosted checkout link for link-based providers.
	BookingURL string `json:"booking_url,omitempty"`

	// Raw is the provider's full confirmation document, kept for auditing.
	Raw json.RawMessage `json:"raw,omitempty"`
}
