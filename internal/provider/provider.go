package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// MetadataProvider is the contract the search core requires from a movie metadata source.
// Every call may fail; failures are returned as errors and never panic.
type MetadataProvider interface {
	SearchByTitle(ctx context.Context, title string, limit int) ([]domain.MovieSummary, error)
	MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error)
	MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error)
	PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error)
}

// Prober is implemented by providers that can report backend readiness.
type Prober interface {
	Probe(ctx context.Context) error
}

// ErrNotFound marks an id or title the provider has no record of.
var ErrNotFound = errors.New("not found")

// FetchError records which lookup failed.
type FetchError struct {
	Kind string
	Key  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Kind, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetch kinds, also used as cache and metric labels.
const (
	KindSearch      = "search"
	KindDetails     = "details"
	KindCredits     = "credits"
	KindFilmography = "filmography"
)

// NewFetchError wraps err with the lookup kind and key.
func NewFetchError(kind, key string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Kind: kind, Key: key, Err: err}
}
