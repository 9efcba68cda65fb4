package models

import "time"

// SearchRecord is the audit row written after every orchestrated search,
// regardless of outcome. It captures what was asked and how it ended, never
// the offers themselves.
type SearchRecord struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departure_date"`
	ReturnDate    string      `json:"return_date,omitempty"`
	Passengers    int         `json:"passengers"`
	Currency      string      `json:"currency"`
	Providers     string      `json:"providers"`
	OfferCount    int         `json:"offer_count"`
	State         SearchState `json:"state"`
	CreatedAt     time.Time   `json:"created_at"`
}

// HistoryFilter narrows a search-history listing. Zero values mean
// "no constraint"; Limit falls back to a server-side default.
type HistoryFilter struct {
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// BookingRecord is the audit row written after a successful booking
// submission.
type BookingRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Provider   string    `json:"provider"`
	OfferID    string    `json:"offer_id"`
	OrderID    string    `json:"order_id,omitempty"`
	BookingURL string    `json:"booking_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
