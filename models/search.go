package models

import "time"

// TripClass values accepted by upstream providers. "Y" is economy, "C" is
// business; providers that use word-style cabin classes map these internally.
const (
	TripClassEconomy  = "Y"
	TripClassBusiness = "C"
)

// SearchRequest represents a caller's flight-search intent. It is created once
// per call and never mutated afterwards; adapters translate it into
// provider-specific wire requests.
type SearchRequest struct {
	// Origin is the IATA code of the departure airport or city (e.g. "MAD").
	Origin string `json:"origin"`

	// Destination is the IATA code of the arrival airport or city (e.g. "BCN").
	Destination string `json:"destination"`

	// DepartureDate is the outbound date in "2006-01-02" format.
	DepartureDate string `json:"departure_at"`

	// ReturnDate is the optional inbound date in "2006-01-02" format.
	// Empty for one-way searches.
	ReturnDate string `json:"return_at,omitempty"`

	// Adults is the number of adult passengers. Must be at least 1.
	Adults int `json:"adults"`

	// Children is the number of child passengers (2-11 years).
	Children int `json:"children"`

	// Infants is the number of infant passengers (under 2 years).
	Infants int `json:"infants"`

	// TripClass is the requested cabin class, one of [TripClassEconomy] or
	// [TripClassBusiness]. Defaults to economy when empty.
	TripClass string `json:"trip_class,omitempty"`

	// Currency is the ISO code (lower case) the caller wants prices in.
	// When empty the engine's configured default currency is used.
	Currency string `json:"currency,omitempty"`
}

// Passengers returns the total passenger count across all age groups.
func (r SearchRequest) Passengers() int {
	return r.Adults + r.Children + r.Infants
}

// PollStatus is the discriminated outcome of a single adapter poll.
type PollStatus string

const (
	// PollPending means the upstream search is still running and the caller
	// should poll again after the configured interval.
	PollPending PollStatus = "pending"

	// PollComplete means the upstream search produced its final offer set.
	PollComplete PollStatus = "complete"
)

// SearchState describes where an orchestrated search is in its lifecycle.
// Complete, TimedOut and Failed are terminal; no polling happens after them.
type SearchState string

const (
	StateInitiated SearchState = "initiated"
	StatePolling   SearchState = "polling"
	StateComplete  SearchState = "complete"
	StateTimedOut  SearchState = "timed_out"
	StateFailed    SearchState = "failed"
)

// Terminal reports whether no further state transitions may occur.
func (s SearchState) Terminal() bool {
	return s == StateComplete || s == StateTimedOut || s == StateFailed
}

// SearchHandle is an opaque reference to an in-flight asynchronous provider
// search. A handle is only ever valid against the provider that issued it;
// the orchestrator's registry enforces that invariant by keying handles with
// a server-issued identifier.
type SearchHandle struct {
	// Provider is the name of the adapter that created the handle.
	Provider string `json:"provider"`

	// ID is the opaque upstream search identifier (e.g. a Travelpayouts
	// search uuid or a Duffel offer-request id).
	ID string `json:"id"`

	// CreatedAt is when the upstream search was initiated.
	CreatedAt time.Time `json:"created_at"`

	// Deadline is the wall-clock instant after which the handle is
	// considered stale and is discarded by the janitor.
	Deadline time.Time `json:"deadline"`

	// Request is the originating search request. Carrying it on the handle
	// lets poll-time normalization price offers without extra lookup state.
	Request SearchRequest `json:"request"`
}

// Expired reports whether the handle's deadline has passed at the given time.
func (h SearchHandle) Expired(now time.Time) bool {
	return !h.Deadline.IsZero() && now.After(h.Deadline)
}

// SearchResult is the aggregated outcome of one orchestrated search across
// every configured provider.
type SearchResult struct {
	// SearchID is the server-issued identifier the result can be re-fetched
	// under until it expires.
	SearchID string `json:"search_id"`

	// State is the terminal state the orchestration reached, or a
	// non-terminal state when the result is a progress snapshot.
	State SearchState `json:"state"`

	// Currency is the lower-case ISO code the search was priced in.
	Currency string `json:"currency"`

	// Providers lists the adapters the search fanned out to.
	Providers []string `json:"providers"`

	// Offers is the normalized offer set collected so far.
	Offers []FlightOffer `json:"offers"`
}
