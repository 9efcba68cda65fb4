package http

import (
	"net/http"

	"github.com/koalaroute/koalaroute/internal/utils"
	"github.com/koalaroute/koalaroute/models"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := h.services.Health.Health(r.Context())

	code := http.StatusOK
	if status.Status != models.HealthOK {
		code = http.StatusServiceUnavailable
	}

	utils.WriteJSON(w, status, code)
}
