package service

import (
	"context"
	"time"

	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/models"
)

const healthPingTimeout = 2 * time.Second

// Pinger is the slice of the database connection the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthService struct {
	db       Pinger
	adapters []adapter.ProviderAdapter

	logger *logger.Logger
}

// NewHealthService constructs a [HealthService].
func NewHealthService(db Pinger, adapters []adapter.ProviderAdapter, log *logger.Logger) HealthService {
	return &healthService{db: db, adapters: adapters, logger: log}
}

// Health implements [HealthService]. Adapters exposing a cheap upstream
// endpoint are checked for connectivity; the rest report reachable without
// a network call, their real endpoints cost too much for liveness traffic.
func (s *healthService) Health(ctx context.Context) models.HealthStatus {
	status := models.HealthStatus{
		Status:    models.HealthOK,
		Providers: make(map[string]bool, len(s.adapters)),
	}

	for _, p := range s.adapters {
		status.Providers[p.Name()] = true

		checker, ok := p.(adapter.ConnectivityChecker)
		if !ok {
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
		err := checker.CheckConnectivity(checkCtx)
		cancel()
		if err != nil {
			s.logger.Err(err).Str("provider", p.Name()).Msg("health: provider connectivity check failed")
			status.Providers[p.Name()] = false
			status.Status = models.HealthDegraded
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		s.logger.Err(err).Msg("health: database ping failed")
		status.Status = models.HealthDegraded
		return status
	}

	status.Database = true
	return status
}
