package fx

import (
	"tournament-elo/internal/api"
	"tournament-elo/internal/config"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/database"
	"tournament-elo/internal/loader"
	"tournament-elo/internal/logger"
	"tournament-elo/internal/metrics"
	"tournament-elo/internal/repository"
	"tournament-elo/internal/server"
	"tournament-elo/internal/service"

	"go.uber.org/fx"
)

func applyLogLevel(cfg *config.Config) error {
	return logger.SetLevel(cfg.LogLevel)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Invoke(applyLogLevel),
	fx.Provide(database.New),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewSnapshotRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewRatingHistoryRepository),
	// inputs
	fx.Provide(api.NewResultsClient),
	fx.Provide(loader.NewLoader),
	// svc
	fx.Provide(service.NewPipeline),
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewMatchService),
	// server
	fx.Provide(server.NewServer),
)

// Lifecycle must be passed to the top-level app.
var Lifecycle = fx.Options(
	fx.StartTimeout(constants.StartTimeout),
)
