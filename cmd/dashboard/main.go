package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/flood-alert-dashboard/internal/adapter/http"
	"github.com/couchcryptid/flood-alert-dashboard/internal/adapter/vigicrues"
	"github.com/couchcryptid/flood-alert-dashboard/internal/config"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
	"github.com/couchcryptid/flood-alert-dashboard/internal/pipeline"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if !cfg.ColorSeedFixed {
		logger.Info("COLOR_SEED not set, colors will differ between runs", "color_seed", cfg.ColorSeed)
	}

	builder := pipeline.New(vigicrues.NewLoader(logger), logger, metrics)
	ds, err := builder.Build(cfg.DataPath, cfg.ColorSeed)
	if err != nil {
		logger.Error("failed to build dataset", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ds, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
