package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/app"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/config"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/logging"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/metrics"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/server"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	metadata, closeMetadata, err := app.BuildMetadata(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create metadata provider", "provider", cfg.Provider.Kind, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeMetadata(context.Background()); err != nil {
			logger.Warn("closing metadata provider failed", "error", err)
		}
	}()

	pathService := service.NewPathService(metadata, logger, app.ServiceOptions(cfg.Search))
	apiHandlers := server.NewAPIHandlers(logger, pathService)

	var metricsHandler http.Handler
	if cfg.HTTP.MetricsEnabled {
		metricsHandler = metrics.Handler()
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           metadata,
		API:              apiHandlers,
		Metrics:          metricsHandler,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
