package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

// fanOutCatalogue has movie 1 crediting six people of increasing popularity, each of whom
// also appears in four movies of their own.
func fanOutCatalogue() dataset.Catalogue {
	var cast []dataset.CreditRecord
	for i := int64(1); i <= 6; i++ {
		cast = append(cast, actor(10+i, fmt.Sprintf("Person %d", i), float64(i)))
	}
	cat := dataset.Catalogue{Movies: []dataset.MovieRecord{film(1, "Hub", "1990-01-01", cast...)}}
	for i := int64(1); i <= 6; i++ {
		for j := int64(1); j <= 4; j++ {
			cat.Movies = append(cat.Movies, film(100*i+j, fmt.Sprintf("Movie %d-%d", i, j),
				fmt.Sprintf("%d-01-01", 2000+j), cast[i-1]))
		}
	}
	return cat
}

func TestExpand_AppliesPeopleAndFilmographyCaps(t *testing.T) {
	s := newStack(t, fanOutCatalogue(), ExpanderOptions{PeopleLimit: 3, FilmographyLimit: 2})

	neighbors, err := s.expander.Expand(context.Background(), 1)
	require.NoError(t, err)

	var ids []domain.MovieID
	var via []domain.PersonID
	for _, n := range neighbors {
		ids = append(ids, n.Movie)
		via = append(via, n.Via.ID)
	}
	assert.Equal(t, []domain.MovieID{604, 603, 504, 503, 404, 403}, ids)
	assert.Equal(t, []domain.PersonID{16, 16, 15, 15, 14, 14}, via)
	assert.Equal(t, 3, s.recorder.Total("filmography"))
}

func TestExpand_NeverExceedsCapProduct(t *testing.T) {
	for _, limits := range [][2]int{{1, 1}, {2, 3}, {6, 4}, {50, 50}} {
		s := newStack(t, fanOutCatalogue(), ExpanderOptions{PeopleLimit: limits[0], FilmographyLimit: limits[1]})
		neighbors, err := s.expander.Expand(context.Background(), 1)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(neighbors), limits[0]*limits[1])
		for _, n := range neighbors {
			assert.NotEqual(t, domain.MovieID(1), n.Movie)
		}
	}
}

func TestExpand_FirstRankedPersonWins(t *testing.T) {
	minor, star := actor(1, "Minor", 1), actor(2, "Star", 9)
	cat := dataset.Catalogue{Movies: []dataset.MovieRecord{
		film(1, "Origin", "2000-01-01", minor, star),
		film(2, "Shared", "2001-01-01", minor, star),
	}}
	s := newStack(t, cat, ExpanderOptions{})

	neighbors, err := s.expander.Expand(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "Star", neighbors[0].Via.Name)
}

func TestExpand_SkipsPersonWithFailedFilmography(t *testing.T) {
	s := newStack(t, fanOutCatalogue(), ExpanderOptions{PeopleLimit: 2, FilmographyLimit: 1})
	s.recorder.Fail("filmography", 16, errors.New("upstream unavailable"))

	neighbors, err := s.expander.Expand(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, domain.MovieID(504), neighbors[0].Movie)
}

func TestExpand_ReturnsCreditsFailure(t *testing.T) {
	s := newStack(t, fanOutCatalogue(), ExpanderOptions{})
	s.recorder.Fail("credits", 1, errors.New("boom"))

	_, err := s.expander.Expand(context.Background(), 1)
	require.Error(t, err)

	var fetchErr *provider.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, provider.KindCredits, fetchErr.Kind)
	assert.Zero(t, s.recorder.Total("filmography"))
}

func TestRankPeople(t *testing.T) {
	people := []domain.Person{
		{ID: 1, Name: "a", Popularity: 2},
		{ID: 2, Name: "b", Popularity: 5},
		{ID: 1, Name: "a-crew", Popularity: 9},
		{ID: 3, Name: "c", Popularity: 2},
	}

	ranked := rankPeople(people, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].Name)
	assert.Equal(t, "a", ranked[1].Name, "duplicate keeps first credit, ties keep credit order")
}

func TestRankFilmography(t *testing.T) {
	movies := []domain.MovieSummary{
		{ID: 1, ReleaseDate: ""},
		{ID: 2, ReleaseDate: "2010-01-01", Popularity: 1},
		{ID: 5, ReleaseDate: "2020-01-01", Popularity: 3},
		{ID: 4, ReleaseDate: "2020-01-01", Popularity: 3},
		{ID: 3, ReleaseDate: "2020-01-01", Popularity: 8},
		{ID: 2, ReleaseDate: "2010-01-01", Popularity: 1},
	}

	ranked := rankFilmography(movies, 10)
	var ids []domain.MovieID
	for _, m := range ranked {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []domain.MovieID{3, 4, 5, 2, 1}, ids)
	assert.Len(t, rankFilmography(movies, 2), 2)
}
