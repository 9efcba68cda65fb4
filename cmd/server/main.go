package main

import (
	"context"
	"fmt"

	"github.com/koalaroute/koalaroute/internal/adapter"
	"github.com/koalaroute/koalaroute/internal/config"
	"github.com/koalaroute/koalaroute/internal/handler"
	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/normalize"
	"github.com/koalaroute/koalaroute/internal/server"
	"github.com/koalaroute/koalaroute/internal/service"
	"github.com/koalaroute/koalaroute/internal/store"
	"github.com/koalaroute/koalaroute/internal/workers"
	"github.com/koalaroute/koalaroute/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("koalaroute-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to postgres")
	}
	defer db.Close()

	if err = migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repos := store.NewRepositories(db)
	converter := normalize.NewConverter(cfg.Search.CurrencyRates, cfg.Search.DefaultCurrency)

	adapters, err := buildAdapters(cfg, converter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating provider adapters")
	}
	if len(adapters) == 0 {
		log.Fatal().Msg("no providers configured, nothing to search")
	}

	services := service.NewServices(adapters, repos, db, cfg, log)

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	janitor := workers.NewJanitor(services.Registry, cfg.Workers.JanitorInterval, log)
	background := workers.NewWorkers(janitor)

	srv, err := server.NewServer(handlers, background, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// buildAdapters constructs an adapter for every provider with usable
// credentials. Unconfigured providers are simply left out of the fan-out.
func buildAdapters(cfg *config.StructuredConfig, converter *normalize.Converter, log *logger.Logger) ([]adapter.ProviderAdapter, error) {
	var adapters []adapter.ProviderAdapter

	if cfg.Providers.Amadeus.Configured() {
		amadeus, err := adapter.NewAmadeusAdapter(cfg.Providers.Amadeus, converter, cfg.Search.ProviderTimeout, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, amadeus)
	}

	if cfg.Providers.Travelpayouts.Configured() {
		travelpayouts, err := adapter.NewTravelpayoutsAdapter(cfg.Providers.Travelpayouts, converter, cfg.Search.ProviderTimeout, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, travelpayouts)
	}

	if cfg.Providers.Duffel.Configured() {
		duffel, err := adapter.NewDuffelAdapter(cfg.Providers.Duffel, converter, cfg.Search.ProviderTimeout, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, duffel)
	}

	return adapters, nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
