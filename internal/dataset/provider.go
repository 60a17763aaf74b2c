package dataset

import (
	"context"
	"sort"
	"strings"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

// Provider serves a Catalogue from memory. It never fails except for unknown ids.
type Provider struct {
	order       []domain.MovieID
	movies      map[domain.MovieID]domain.Movie
	credits     map[domain.MovieID]domain.Credits
	filmography map[domain.PersonID]*domain.Filmography
}

// NewProvider indexes the catalogue. Movies keep catalogue order inside each filmography.
func NewProvider(cat Catalogue) *Provider {
	p := &Provider{
		order:       make([]domain.MovieID, 0, len(cat.Movies)),
		movies:      make(map[domain.MovieID]domain.Movie, len(cat.Movies)),
		credits:     make(map[domain.MovieID]domain.Credits, len(cat.Movies)),
		filmography: make(map[domain.PersonID]*domain.Filmography),
	}

	for _, rec := range cat.Movies {
		movie := rec.Movie()
		p.order = append(p.order, movie.ID)
		p.movies[movie.ID] = movie
		p.credits[movie.ID] = rec.Credits()

		summary := movie.Summary()
		for _, c := range rec.Cast {
			f := p.filmographyOf(domain.PersonID(c.ID))
			f.Cast = append(f.Cast, summary)
		}
		for _, c := range rec.Crew {
			f := p.filmographyOf(domain.PersonID(c.ID))
			f.Crew = append(f.Crew, summary)
		}
	}
	return p
}

func (p *Provider) filmographyOf(id domain.PersonID) *domain.Filmography {
	f, ok := p.filmography[id]
	if !ok {
		f = &domain.Filmography{PersonID: id}
		p.filmography[id] = f
	}
	return f
}

// SearchByTitle returns exact (case-insensitive) matches first, then substring matches,
// each group ordered by popularity.
func (p *Provider) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.MovieSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(title))
	if query == "" {
		return nil, nil
	}

	type hit struct {
		summary domain.MovieSummary
		exact   bool
	}
	var hits []hit
	for _, id := range p.order {
		m := p.movies[id]
		name := strings.ToLower(m.Title)
		if !strings.Contains(name, query) {
			continue
		}
		hits = append(hits, hit{summary: m.Summary(), exact: name == query})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].exact != hits[j].exact {
			return hits[i].exact
		}
		if hits[i].summary.Popularity != hits[j].summary.Popularity {
			return hits[i].summary.Popularity > hits[j].summary.Popularity
		}
		return hits[i].summary.ID < hits[j].summary.ID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.MovieSummary, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.summary)
	}
	return out, nil
}

func (p *Provider) MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return domain.Movie{}, err
	}
	m, ok := p.movies[id]
	if !ok {
		return domain.Movie{}, provider.NewFetchError(provider.KindDetails, id.String(), provider.ErrNotFound)
	}
	return m, nil
}

func (p *Provider) MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credits{}, err
	}
	c, ok := p.credits[id]
	if !ok {
		return domain.Credits{}, provider.NewFetchError(provider.KindCredits, id.String(), provider.ErrNotFound)
	}
	return c, nil
}

func (p *Provider) PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error) {
	if err := ctx.Err(); err != nil {
		return domain.Filmography{}, err
	}
	f, ok := p.filmography[id]
	if !ok {
		return domain.Filmography{}, provider.NewFetchError(provider.KindFilmography, id.String(), provider.ErrNotFound)
	}
	return *f, nil
}
