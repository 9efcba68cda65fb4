package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/service"
	"github.com/koalaroute/koalaroute/internal/utils"
	"github.com/koalaroute/koalaroute/models"
)

// bookRequest is the wire shape of a booking submission. The offer is sent
// back exactly as it was returned by the search endpoint, payload included.
type bookRequest struct {
	Provider string              `json:"provider"`
	Offer    models.FlightOffer  `json:"offer"`
	Traveler models.TravelerInfo `json:"traveler"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.search").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var searchRequest models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&searchRequest); err != nil {
		log.Err(err).Str("func", "*Handler.search").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.Search.Run(ctx, userID, searchRequest)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSearchRequest):
			log.Err(err).Str("func", "*Handler.search").Msg("invalid search request")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			log.Err(err).Str("func", "*Handler.search").Msg("search failed across all providers")
			http.Error(w, "search failed", statusFromError(err))
			return
		}
	}

	// A search that exhausted its poll budget without a single offer is a
	// timeout from the caller's point of view; partial results are still 200.
	status := http.StatusOK
	if result.State == models.StateTimedOut && len(result.Offers) == 0 {
		status = http.StatusRequestTimeout
	}

	utils.WriteJSON(w, result, status)
}

func (h *Handler) searchSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	searchID := chi.URLParam(r, "searchID")
	if searchID == "" {
		http.Error(w, "search ID is required", http.StatusBadRequest)
		return
	}

	result, err := h.services.Search.Snapshot(ctx, searchID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.searchSnapshot").Str("search_id", searchID).Msg("error fetching search snapshot")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.book").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var request bookRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.book").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	confirmation, err := h.services.Booking.Book(ctx, userID, request.Provider, request.Offer, request.Traveler)
	if err != nil {
		log.Err(err).Str("func", "*Handler.book").Str("provider", request.Provider).Msg("booking failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, confirmation, http.StatusCreated)
}
