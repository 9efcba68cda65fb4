package service

import (
	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/store"
)

// Services bundles the orchestration services handed to the transport
// layer. Registry is exposed for the janitor worker.
type Services struct {
	Search  SearchService
	Booking BookingService
	History HistoryService
	Health  HealthService

	Registry *SearchRegistry
}

// NewServices wires the service layer over the configured adapters and
// repositories.
func NewServices(adapters []adapter.ProviderAdapter, repos *store.Repositories, db Pinger, cfg *config.StructuredConfig, log *logger.Logger) *Services {
	registry := NewSearchRegistry(cfg.Search.HandleTTL)

	return &Services{
		Search:   NewSearchService(adapters, registry, repos.SearchHistory, cfg.Search, log),
		Booking:  NewBookingService(adapters, repos.Bookings, cfg.Search, log),
		History:  NewHistoryService(repos.SearchHistory, repos.Bookings, log),
		Health:   NewHealthService(db, adapters, log),
		Registry: registry,
	}
}
