package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/cache"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/metrics"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/pathfinder"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

const (
	// NoDirector is reported for listings whose crew has no director.
	NoDirector = "N/A"

	defaultListingLimit = 20
	maxListingLimit     = 50
)

// MetadataCache is a memoized provider with an explicit lifecycle.
type MetadataCache interface {
	provider.MetadataProvider
	Reset()
	Stats() []cache.Stats
}

// Options bounds the searches run by a PathService.
type Options struct {
	PeopleLimit      int
	FilmographyLimit int
	Workers          int
	Timeout          time.Duration
}

// PathResult is a found chain of movies.
type PathResult struct {
	Mode      pathfinder.Mode
	Start     domain.MovieSummary
	End       domain.MovieSummary
	Steps     []pathfinder.Step
	Processed []domain.MovieID
	Cost      float64
	Duration  time.Duration
}

// Titles returns the movie titles along the path.
func (r PathResult) Titles() []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Movie.Title
	}
	return out
}

// Connections returns, for every hop, the name of the person linking the two movies.
func (r PathResult) Connections() []string {
	if len(r.Steps) < 2 {
		return []string{}
	}
	out := make([]string, 0, len(r.Steps)-1)
	for _, s := range r.Steps[1:] {
		out = append(out, s.ConnectionName())
	}
	return out
}

// MovieListing is a title search hit with its director.
type MovieListing struct {
	Movie    domain.MovieSummary
	Director string
}

// PathService resolves titles, runs searches and formats their results.
type PathService struct {
	metadata  MetadataCache
	engines   map[pathfinder.Mode]*pathfinder.Engine
	formatter *pathfinder.Formatter
	workers   int
	logger    *slog.Logger
}

// NewPathService wires the expander, heuristic, engines and formatter over metadata.
func NewPathService(metadata MetadataCache, logger *slog.Logger, opts Options) *PathService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = pathfinder.DefaultWorkers
	}
	logger = logger.With("component", "path_service")

	expander := pathfinder.NewExpander(metadata, logger, pathfinder.ExpanderOptions{
		PeopleLimit:      opts.PeopleLimit,
		FilmographyLimit: opts.FilmographyLimit,
		Workers:          opts.Workers,
	})
	heuristic := pathfinder.NewCastOverlap(metadata)

	engines := make(map[pathfinder.Mode]*pathfinder.Engine, 2)
	for _, mode := range []pathfinder.Mode{pathfinder.ModeUniform, pathfinder.ModeHeuristic} {
		engines[mode] = pathfinder.NewEngine(expander, pathfinder.Options{
			Strategy: pathfinder.StrategyFor(mode, heuristic),
			Timeout:  opts.Timeout,
			Workers:  opts.Workers,
			Logger:   logger,
		})
	}

	return &PathService{
		metadata:  metadata,
		engines:   engines,
		formatter: pathfinder.NewFormatter(metadata, logger),
		workers:   opts.Workers,
		logger:    logger,
	}
}

// FindPath connects the best matches for two titles. It returns an *UnresolvedError when a
// title matches nothing and a *NoPathError when the search ends without a meeting.
func (s *PathService) FindPath(ctx context.Context, startTitle, endTitle string, mode pathfinder.Mode) (PathResult, error) {
	started := time.Now()
	engine, ok := s.engines[mode]
	if !ok {
		return PathResult{}, fmt.Errorf("unsupported search mode %q", mode)
	}

	start, err := s.resolve(ctx, "start", startTitle)
	if err != nil {
		metrics.ObserveSearch(string(mode), "unresolved", started, 0)
		return PathResult{}, err
	}
	end, err := s.resolve(ctx, "end", endTitle)
	if err != nil {
		metrics.ObserveSearch(string(mode), "unresolved", started, 0)
		return PathResult{}, err
	}

	res := engine.Search(ctx, start.ID, end.ID)
	if !res.Found {
		outcome := "not_found"
		if res.TimedOut {
			outcome = "timeout"
		}
		metrics.ObserveSearch(string(mode), outcome, started, len(res.Processed))
		s.logger.Info("no path found",
			"mode", mode, "start", start.ID, "end", end.ID,
			"processed", len(res.Processed), "timedOut", res.TimedOut)
		return PathResult{}, &NoPathError{Processed: res.Processed, TimedOut: res.TimedOut}
	}

	steps := s.formatter.Format(ctx, res.Path)
	metrics.ObserveSearch(string(mode), "found", started, len(res.Processed))
	s.logger.Info("path found",
		"mode", mode, "start", start.ID, "end", end.ID,
		"length", len(res.Path), "processed", len(res.Processed),
		"duration", time.Since(started))

	return PathResult{
		Mode:      mode,
		Start:     start,
		End:       end,
		Steps:     steps,
		Processed: res.Processed,
		Cost:      res.Cost,
		Duration:  time.Since(started),
	}, nil
}

func (s *PathService) resolve(ctx context.Context, role, title string) (domain.MovieSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.MovieSummary{}, &UnresolvedError{Role: role, Title: title}
	}
	hits, err := s.metadata.SearchByTitle(ctx, title, 1)
	if err != nil {
		return domain.MovieSummary{}, &UnresolvedError{Role: role, Title: title, Err: err}
	}
	if len(hits) == 0 {
		return domain.MovieSummary{}, &UnresolvedError{Role: role, Title: title}
	}
	return hits[0], nil
}

// SearchMovies lists movies matching query with their directors. Director lookups run
// concurrently; a failed lookup reports NoDirector.
func (s *PathService) SearchMovies(ctx context.Context, query string, limit int) ([]MovieListing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []MovieListing{}, nil
	}
	if limit <= 0 {
		limit = defaultListingLimit
	}
	if limit > maxListingLimit {
		limit = maxListingLimit
	}

	hits, err := s.metadata.SearchByTitle(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search movies %q: %w", query, err)
	}

	listings := make([]MovieListing, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, hit := range hits {
		g.Go(func() error {
			listings[i] = MovieListing{Movie: hit, Director: NoDirector}
			credits, err := s.metadata.MovieCredits(gctx, hit.ID)
			if err != nil {
				s.logger.Debug("director lookup failed", "movieId", hit.ID, "error", err)
				return nil
			}
			if director, ok := credits.Director(); ok {
				listings[i].Director = director.Name
			}
			return nil
		})
	}
	_ = g.Wait()
	return listings, nil
}

// CacheStats returns per-kind cache counters.
func (s *PathService) CacheStats() []cache.Stats {
	return s.metadata.Stats()
}

// ResetCache drops every memoized lookup.
func (s *PathService) ResetCache() {
	s.metadata.Reset()
	s.logger.Info("metadata cache reset")
}
