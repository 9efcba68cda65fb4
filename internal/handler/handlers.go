package handler

import (
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/handler/http"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, cfg.Auth, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
