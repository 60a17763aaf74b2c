package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

const (
	DefaultPeopleLimit      = 50
	DefaultFilmographyLimit = 50
	DefaultWorkers          = 8
)

// CreditSource is the part of the metadata provider the expander and heuristic read from.
type CreditSource interface {
	MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error)
	PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error)
}

// Neighbor is a movie adjacent to the expanded one and the person connecting them.
type Neighbor struct {
	Movie domain.MovieID
	Via   domain.Person
}

// ExpanderOptions bounds an expansion. Zero values select the defaults.
type ExpanderOptions struct {
	PeopleLimit      int
	FilmographyLimit int
	Workers          int
}

// Expander produces the bounded, deterministically ordered neighbor list of a movie.
type Expander struct {
	source           CreditSource
	logger           *slog.Logger
	peopleLimit      int
	filmographyLimit int
	workers          int
}

// NewExpander constructs an Expander reading through source, which should be memoized.
func NewExpander(source CreditSource, logger *slog.Logger, opts ExpanderOptions) *Expander {
	if opts.PeopleLimit <= 0 {
		opts.PeopleLimit = DefaultPeopleLimit
	}
	if opts.FilmographyLimit <= 0 {
		opts.FilmographyLimit = DefaultFilmographyLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		source:           source,
		logger:           logger,
		peopleLimit:      opts.PeopleLimit,
		filmographyLimit: opts.FilmographyLimit,
		workers:          opts.Workers,
	}
}

// Expand returns at most PeopleLimit*FilmographyLimit neighbors of id. People are visited by
// popularity and each person's movies by recency, so the first person seen for a movie is the
// highest ranked one. A credits failure is returned; a filmography failure only drops that
// person.
func (e *Expander) Expand(ctx context.Context, id domain.MovieID) ([]Neighbor, error) {
	credits, err := e.source.MovieCredits(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("credits for movie %d: %w", id, err)
	}

	people := rankPeople(credits.People(), e.peopleLimit)
	films := make([][]domain.MovieSummary, len(people))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, person := range people {
		g.Go(func() error {
			f, err := e.source.PersonFilmography(gctx, person.ID)
			if err != nil {
				if isContextErr(err) {
					return err
				}
				e.logger.Debug("skipping person without filmography",
					"movieId", id, "personId", person.ID, "error", err)
				return nil
			}
			films[i] = rankFilmography(f.Movies(), e.filmographyLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("filmographies for movie %d: %w", id, err)
	}

	seen := map[domain.MovieID]struct{}{id: {}}
	var neighbors []Neighbor
	for i, person := range people {
		for _, movie := range films[i] {
			if _, dup := seen[movie.ID]; dup {
				continue
			}
			seen[movie.ID] = struct{}{}
			neighbors = append(neighbors, Neighbor{Movie: movie.ID, Via: person})
		}
	}
	return neighbors, nil
}

// rankPeople deduplicates by id, keeping the first credit, and returns the limit most popular.
// Ties keep credit order.
func rankPeople(people []domain.Person, limit int) []domain.Person {
	seen := make(map[domain.PersonID]struct{}, len(people))
	ranked := make([]domain.Person, 0, len(people))
	for _, p := range people {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Popularity > ranked[j].Popularity
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// rankFilmography deduplicates by id and returns the limit most recent movies, most popular
// first within a release date. Undated movies rank last.
func rankFilmography(movies []domain.MovieSummary, limit int) []domain.MovieSummary {
	seen := make(map[domain.MovieID]struct{}, len(movies))
	ranked := make([]domain.MovieSummary, 0, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		ranked = append(ranked, m)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ReleaseDate != b.ReleaseDate {
			if a.ReleaseDate == "" || b.ReleaseDate == "" {
				return b.ReleaseDate == ""
			}
			return a.ReleaseDate > b.ReleaseDate
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ID < b.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
