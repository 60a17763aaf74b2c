package cache

import (
	"context"
	"strings"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

// Provider memoizes a MetadataProvider with one Memo per fetch kind, so eviction pressure on
// filmographies cannot push out movie credits and vice versa.
type Provider struct {
	source provider.MetadataProvider

	search      *Memo[searchKey, []domain.MovieSummary]
	details     *Memo[domain.MovieID, domain.Movie]
	credits     *Memo[domain.MovieID, domain.Credits]
	filmography *Memo[domain.PersonID, domain.Filmography]
}

type searchKey struct {
	title string
	limit int
}

// NewProvider wraps source. opts.Capacity bounds each per-kind cache independently.
func NewProvider(source provider.MetadataProvider, opts Options) *Provider {
	return &Provider{
		source:      source,
		search:      NewMemo[searchKey, []domain.MovieSummary](provider.KindSearch, opts),
		details:     NewMemo[domain.MovieID, domain.Movie](provider.KindDetails, opts),
		credits:     NewMemo[domain.MovieID, domain.Credits](provider.KindCredits, opts),
		filmography: NewMemo[domain.PersonID, domain.Filmography](provider.KindFilmography, opts),
	}
}

func (p *Provider) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.MovieSummary, error) {
	key := searchKey{title: normalizeTitle(title), limit: limit}
	return p.search.Get(ctx, key, func(ctx context.Context) ([]domain.MovieSummary, error) {
		return p.source.SearchByTitle(ctx, title, limit)
	})
}

func (p *Provider) MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error) {
	return p.details.Get(ctx, id, func(ctx context.Context) (domain.Movie, error) {
		return p.source.MovieDetails(ctx, id)
	})
}

func (p *Provider) MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error) {
	return p.credits.Get(ctx, id, func(ctx context.Context) (domain.Credits, error) {
		return p.source.MovieCredits(ctx, id)
	})
}

func (p *Provider) PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error) {
	return p.filmography.Get(ctx, id, func(ctx context.Context) (domain.Filmography, error) {
		return p.source.PersonFilmography(ctx, id)
	})
}

// Probe delegates to the wrapped provider when it supports readiness checks.
func (p *Provider) Probe(ctx context.Context) error {
	if prober, ok := p.source.(provider.Prober); ok {
		return prober.Probe(ctx)
	}
	return nil
}

// Reset empties every per-kind cache.
func (p *Provider) Reset() {
	p.search.Reset()
	p.details.Reset()
	p.credits.Reset()
	p.filmography.Reset()
}

// Stats returns one snapshot per fetch kind.
func (p *Provider) Stats() []Stats {
	return []Stats{
		p.search.Stats(),
		p.details.Stats(),
		p.credits.Stats(),
		p.filmography.Stats(),
	}
}

// normalizeTitle collapses whitespace and case so equivalent queries share a cache slot.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
