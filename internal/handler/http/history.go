package http

import (
	"net/http"
	"strconv"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/utils"
	"github.com/koalaroute/koalaroute/models"
)

func (h *Handler) listSearches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.listSearches").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	filter := models.HistoryFilter{
		Origin:      r.URL.Query().Get("origin"),
		Destination: r.URL.Query().Get("destination"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	records, err := h.services.History.ListSearches(ctx, userID, filter)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listSearches").Msg("error listing search history")
		http.Error(w, "error listing search history", statusFromError(err))
		return
	}

	utils.WriteJSON(w, records, http.StatusOK)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.listBookings").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	records, err := h.services.History.ListBookings(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listBookings").Msg("error listing bookings")
		http.Error(w, "error listing bookings", statusFromError(err))
		return
	}

	utils.WriteJSON(w, records, http.StatusOK)
}
