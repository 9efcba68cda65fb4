// SPDX-License-Identifier: Apache-2.0

package service

import (
	"sync"
	"time"

	"github.com/koalaroute/koalaroute/models"
)

// SearchRegistry holds every search the engine has run or is running,
// keyed by its server-issued identifier. Entries carry a deadline; the
// janitor worker prunes expired ones so the registry cannot grow without
// bound.
type SearchRegistry struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*searchEntry
}

// searchEntry is the registry's view of one search. The per-entry mutex
// serialises progress updates from provider goroutines against snapshot
// reads, without blocking unrelated searches.
type searchEntry struct {
	mu sync.Mutex

	id        string
	state     models.SearchState
	currency  string
	providers []string
	offers    []models.FlightOffer
	deadline  time.Time
}

// NewSearchRegistry constructs an empty registry whose entries expire ttl
// after creation.
func NewSearchRegistry(ttl time.Duration) *SearchRegistry {
	return &SearchRegistry{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*searchEntry),
	}
}

// Create registers a new search in [models.StateInitiated] and returns its
// entry for the orchestrator to drive.
func (r *SearchRegistry) Create(id, currency string, providers []string) *searchEntry {
	entry := &searchEntry{
		id:        id,
		state:     models.StateInitiated,
		currency:  currency,
		providers: providers,
		deadline:  r.now().Add(r.ttl),
	}

	r.mu.Lock()
	r.entries[id] = entry
	r.mu.Unlock()

	return entry
}

// Snapshot returns a point-in-time copy of a search's state and offers.
func (r *SearchRegistry) Snapshot(id string) (*models.SearchResult, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrHandleNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if r.now().After(entry.deadline) {
		return nil, ErrHandleExpired
	}

	offers := make([]models.FlightOffer, len(entry.offers))
	copy(offers, entry.offers)

	return &models.SearchResult{
		SearchID:  entry.id,
		State:     entry.state,
		Currency:  entry.currency,
		Providers: entry.providers,
		Offers:    offers,
	}, nil
}

// Prune removes every expired entry and returns how many were dropped.
func (r *SearchRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, entry := range r.entries {
		if now.After(entry.deadline) {
			delete(r.entries, id)
			pruned++
		}
	}
	return pruned
}

// Len reports the number of live entries.
func (r *SearchRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// setState transitions the entry. Terminal states are sticky: once the
// search has completed, timed out or failed, no further transition applies.
func (e *searchEntry) setState(state models.SearchState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Terminal() {
		return
	}
	e.state = state
}

// appendOffers adds a progress chunk from one provider goroutine.
func (e *searchEntry) appendOffers(offers []models.FlightOffer) {
	if len(offers) == 0 {
		return
	}

	e.mu.Lock()
	e.offers = append(e.offers, offers...)
	e.mu.Unlock()
}
