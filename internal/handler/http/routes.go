package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Compress(5))

	// routes without authorization
	router.Get("/api/health", h.health)

	router.Group(func(r chi.Router) {
		r.Use(h.withAuth)

		r.Post("/api/flights/search", h.search)
		r.Get("/api/flights/search/{searchID}", h.searchSnapshot)
		r.Post("/api/flights/book", h.book)
		r.Get("/api/flights/history", h.listSearches)
		r.Get("/api/flights/bookings", h.listBookings)
	})

	return router
}
