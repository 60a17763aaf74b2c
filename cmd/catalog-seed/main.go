package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/app"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/catalog"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/config"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/logging"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "./data/catalogue.json", "Catalogue file to load (.json, .yaml or .yml)")
		workers     = flag.Int("workers", 4, "Number of concurrent workers for seeding")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "catalog_seed")

	cat, err := dataset.Load(*datasetPath)
	if err != nil {
		logger.Error("failed to load catalogue", "error", err, "path", *datasetPath)
		os.Exit(1)
	}
	if len(cat.Movies) == 0 {
		logger.Error("catalogue empty", "path", *datasetPath)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := app.BuildGraphClient(ctx, logger, cfg.Graph)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	writer := catalog.NewWriter(graphClient)
	if err := writer.EnsureSchema(ctx); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	logger.Info("seeding movies", "count", len(cat.Movies), "workers", *workers)
	if err := service.NewBulkSeeder(writer, *workers).Seed(ctx, cat.Movies); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	total, err := writer.CountMovies(ctx)
	if err != nil {
		logger.Warn("counting movies failed", "error", err)
	}
	logger.Info("seeding complete", "duration", time.Since(start).String(), "movies", len(cat.Movies), "stored", total)
}
