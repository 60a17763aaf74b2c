// Package catalog stores a movie catalogue in the graph database and serves it as a metadata
// provider, so searches can run without the remote API.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/graph"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/metrics"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

const providerLabel = "catalog"

// Provider reads movies and credits from the graph.
type Provider struct {
	client graph.Client
}

// NewProvider returns a provider over client.
func NewProvider(client graph.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.MovieSummary, error) {
	query := strings.ToLower(strings.TrimSpace(title))
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	res, err := p.read(ctx, provider.KindSearch, title, searchMoviesCypher, map[string]any{
		"query": query,
		"limit": int64(limit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MovieSummary, 0, len(res.Records))
	for _, rec := range res.Records {
		if s, ok := summaryFrom(rec); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *Provider) MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error) {
	res, err := p.read(ctx, provider.KindDetails, id.String(), movieDetailsCypher, map[string]any{"movieId": int64(id)})
	if err != nil {
		return domain.Movie{}, err
	}
	if len(res.Records) == 0 {
		return domain.Movie{}, provider.NewFetchError(provider.KindDetails, id.String(), provider.ErrNotFound)
	}

	rec := res.Records[0]
	return domain.Movie{
		ID:          id,
		Title:       rec.String("title"),
		ReleaseDate: rec.String("releaseDate"),
		PosterPath:  rec.String("posterPath"),
		Overview:    rec.String("overview"),
		Popularity:  rec.Float64("popularity"),
	}, nil
}

// MovieCredits returns cast in billing order followed by crew. The statement yields one row
// with null person fields for a movie without credits and no rows for an unknown movie.
func (p *Provider) MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error) {
	res, err := p.read(ctx, provider.KindCredits, id.String(), movieCreditsCypher, map[string]any{"movieId": int64(id)})
	if err != nil {
		return domain.Credits{}, err
	}
	if len(res.Records) == 0 {
		return domain.Credits{}, provider.NewFetchError(provider.KindCredits, id.String(), provider.ErrNotFound)
	}

	credits := domain.Credits{MovieID: id}
	for _, rec := range res.Records {
		personID, ok := rec.Int64("personId")
		if !ok {
			continue
		}
		person := domain.Person{
			ID:         domain.PersonID(personID),
			Name:       rec.String("name"),
			Character:  rec.String("character"),
			Job:        rec.String("job"),
			Department: rec.String("department"),
			Popularity: rec.Float64("popularity"),
		}
		if rec.String("kind") == actedIn {
			credits.Cast = append(credits.Cast, person)
		} else {
			credits.Crew = append(credits.Crew, person)
		}
	}
	return credits, nil
}

func (p *Provider) PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error) {
	res, err := p.read(ctx, provider.KindFilmography, id.String(), personFilmographyCypher, map[string]any{"personId": int64(id)})
	if err != nil {
		return domain.Filmography{}, err
	}
	if len(res.Records) == 0 {
		return domain.Filmography{}, provider.NewFetchError(provider.KindFilmography, id.String(), provider.ErrNotFound)
	}

	films := domain.Filmography{PersonID: id}
	for _, rec := range res.Records {
		summary, ok := summaryFrom(rec)
		if !ok {
			continue
		}
		if rec.String("kind") == actedIn {
			films.Cast = append(films.Cast, summary)
		} else {
			films.Crew = append(films.Crew, summary)
		}
	}
	return films, nil
}

// Probe reports whether the graph database is reachable.
func (p *Provider) Probe(ctx context.Context) error {
	return p.client.VerifyConnectivity(ctx)
}

func (p *Provider) read(ctx context.Context, kind, key, cypher string, params map[string]any) (graph.Result, error) {
	started := time.Now()
	res, err := p.client.ExecuteRead(ctx, cypher, params)
	metrics.ObserveProviderRequest(providerLabel, kind, started, err)
	if err != nil {
		return graph.Result{}, provider.NewFetchError(kind, key, err)
	}
	return res, nil
}

func summaryFrom(rec graph.Record) (domain.MovieSummary, bool) {
	id, ok := rec.Int64("id")
	if !ok {
		return domain.MovieSummary{}, false
	}
	return domain.MovieSummary{
		ID:          domain.MovieID(id),
		Title:       rec.String("title"),
		ReleaseDate: rec.String("releaseDate"),
		PosterPath:  rec.String("posterPath"),
		Popularity:  rec.Float64("popularity"),
	}, true
}
