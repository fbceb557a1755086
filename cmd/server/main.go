package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"
	"tournament-elo/internal/config"
	"tournament-elo/internal/constants"
	fxmodules "tournament-elo/internal/fx"
	"tournament-elo/internal/server"
	"tournament-elo/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fxmodules.Lifecycle,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	srvHandlers *server.Server,
	ratingSvc *service.RatingService,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           srvHandlers.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	refreshCtx, stopRefresh := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// the read model must exist before the first request
			if _, err := ratingSvc.Refresh(ctx); err != nil {
				return fmt.Errorf("initial refresh failed: %w", err)
			}

			if cfg.RefreshInterval > 0 {
				go refreshLoop(refreshCtx, ratingSvc, cfg.RefreshInterval, logger)
			}

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			stopRefresh()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

func refreshLoop(ctx context.Context, ratingSvc *service.RatingService, every time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info().Dur("interval", every).Msg("periodic refresh enabled")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// failures keep the previous snapshot and are logged by the service
			_, _ = ratingSvc.Refresh(ctx)
		}
	}
}
