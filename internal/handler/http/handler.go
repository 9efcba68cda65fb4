package http

import (
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/service"
)

type Handler struct {
	services *service.Services
	auth     config.Auth

	logger *logger.Logger
}

func NewHandler(services *service.Services, auth config.Auth, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		auth:     auth,
		logger:   logger,
	}
}
