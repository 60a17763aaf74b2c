// Package app builds the runtime object graph shared by the server and the command line tools.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/cache"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/catalog"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/config"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/graph"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/tmdb"
)

// CloseFunc releases resources held by a built component.
type CloseFunc func(ctx context.Context) error

func noopClose(context.Context) error { return nil }

// BuildMetadata constructs the provider selected by cfg and wraps it in the memoizing cache.
func BuildMetadata(ctx context.Context, cfg config.Config, logger *slog.Logger) (*cache.Provider, CloseFunc, error) {
	source, closeFn, err := buildSource(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("metadata provider ready",
		"provider", cfg.Provider.Kind,
		"cache_capacity", cfg.Cache.Capacity,
		"cache_failure_ttl", cfg.Cache.FailureTTL)
	return cache.NewProvider(source, cache.Options{
		Capacity:   cfg.Cache.Capacity,
		FailureTTL: cfg.Cache.FailureTTL,
	}), closeFn, nil
}

func buildSource(ctx context.Context, cfg config.Config, logger *slog.Logger) (provider.MetadataProvider, CloseFunc, error) {
	switch strings.ToLower(cfg.Provider.Kind) {
	case config.ProviderTMDB:
		client, err := tmdb.NewClient(tmdb.Options{
			APIKey:      cfg.TMDB.APIKey,
			AccessToken: cfg.TMDB.AccessToken,
			BaseURL:     cfg.TMDB.BaseURL,
			Timeout:     cfg.TMDB.Timeout,
			RateLimit:   cfg.TMDB.RateLimit,
			RateBurst:   cfg.TMDB.RateBurst,
			MaxRetries:  cfg.TMDB.MaxRetries,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, noopClose, nil

	case config.ProviderCatalog:
		client, err := BuildGraphClient(ctx, logger, cfg.Graph)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewProvider(client), client.Close, nil

	case config.ProviderDataset:
		cat, err := dataset.Load(cfg.Provider.DatasetPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("dataset loaded", "path", cfg.Provider.DatasetPath, "movies", len(cat.Movies))
		return dataset.NewProvider(cat), noopClose, nil

	default:
		return nil, nil, fmt.Errorf("unknown metadata provider %q", cfg.Provider.Kind)
	}
}

// BuildGraphClient connects to Neo4j and verifies connectivity before returning.
func BuildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (graph.Client, error) {
	if cfg.URI == "" {
		return nil, graph.ErrMissingURI
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.URI, "database", cfg.Database)
	return client, nil
}

// ServiceOptions maps the search section of cfg onto PathService options.
func ServiceOptions(cfg config.SearchConfig) service.Options {
	return service.Options{
		PeopleLimit:      cfg.PeopleLimit,
		FilmographyLimit: cfg.FilmographyLimit,
		Workers:          cfg.Workers,
		Timeout:          cfg.Timeout,
	}
}
