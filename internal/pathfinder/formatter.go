package pathfinder

import (
	"context"
	"log/slog"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// UnknownConnection labels a hop whose movies no longer share a credited person.
const UnknownConnection = "Unknown"

// DetailSource is the part of the metadata provider the formatter reads from.
type DetailSource interface {
	MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error)
	MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error)
}

// Step is one movie of a formatted path. Connection links it to the previous step and is nil
// for the first step and for hops that could not be re-verified.
type Step struct {
	Movie      domain.Movie
	Connection *domain.Person
}

// ConnectionName returns the connecting person's name or UnknownConnection.
func (s Step) ConnectionName() string {
	if s.Connection == nil {
		return UnknownConnection
	}
	return s.Connection.Name
}

// Formatter turns a path of movie ids into presentable steps.
type Formatter struct {
	source DetailSource
	logger *slog.Logger
}

// NewFormatter builds a formatter over a (memoized) detail source.
func NewFormatter(source DetailSource, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{source: source, logger: logger}
}

// Format resolves every movie and, for each consecutive pair, the shared person with the lowest
// id across cast and crew. The caps applied during expansion can produce hops that do not
// survive this re-check; those get a nil Connection. Lookup failures degrade to placeholders.
func (f *Formatter) Format(ctx context.Context, path []domain.MovieID) []Step {
	steps := make([]Step, 0, len(path))
	var prev []domain.Person
	for i, id := range path {
		movie, err := f.source.MovieDetails(ctx, id)
		if err != nil {
			f.logger.Warn("movie details unavailable", "movieId", id, "error", err)
			movie = domain.Movie{ID: id, Title: UnknownConnection}
		}

		var people []domain.Person
		if credits, err := f.source.MovieCredits(ctx, id); err == nil {
			people = credits.People()
		} else {
			f.logger.Warn("movie credits unavailable", "movieId", id, "error", err)
		}

		step := Step{Movie: movie}
		if i > 0 {
			step.Connection = sharedPerson(prev, people)
		}
		steps = append(steps, step)
		prev = people
	}
	return steps
}

// sharedPerson returns the person with the lowest id credited in both lists, taken from a.
func sharedPerson(a, b []domain.Person) *domain.Person {
	inB := make(map[domain.PersonID]struct{}, len(b))
	for _, p := range b {
		inB[p.ID] = struct{}{}
	}

	var best *domain.Person
	for i := range a {
		if _, ok := inB[a[i].ID]; !ok {
			continue
		}
		if best == nil || a[i].ID < best.ID {
			p := a[i]
			best = &p
		}
	}
	return best
}
