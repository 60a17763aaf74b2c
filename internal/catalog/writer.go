package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/graph"
)

// Writer persists catalogue records into the graph.
type Writer struct {
	client graph.Client
}

// NewWriter returns a writer over client.
func NewWriter(client graph.Client) *Writer {
	return &Writer{client: client}
}

// EnsureSchema creates the uniqueness constraints and title index. It is idempotent.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaCypher {
		if _, err := w.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

// UpsertMovie merges the movie, its people and their credit edges.
func (w *Writer) UpsertMovie(ctx context.Context, rec dataset.MovieRecord) error {
	if rec.ID <= 0 {
		return errors.New("movie id is required")
	}

	params := map[string]any{
		"movieId": rec.ID,
		"props":   movieProperties(rec),
		"cast":    castParams(rec.Cast),
		"crew":    crewParams(rec.Crew),
	}
	if _, err := w.client.ExecuteWrite(ctx, upsertMovieCypher, params); err != nil {
		return fmt.Errorf("upsert movie %d: %w", rec.ID, err)
	}
	return nil
}

// CountMovies returns the number of stored movies.
func (w *Writer) CountMovies(ctx context.Context) (int64, error) {
	res, err := w.client.ExecuteRead(ctx, countMoviesCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	n, _ := res.Records[0].Int64("movies")
	return n, nil
}

func movieProperties(rec dataset.MovieRecord) map[string]any {
	return map[string]any{
		"title":       rec.Title,
		"releaseDate": rec.ReleaseDate,
		"posterPath":  rec.PosterPath,
		"overview":    rec.Overview,
		"popularity":  rec.Popularity,
	}
}

func castParams(cast []dataset.CreditRecord) []map[string]any {
	out := make([]map[string]any, 0, len(cast))
	for i, c := range cast {
		out = append(out, map[string]any{
			"personId":   c.ID,
			"name":       c.Name,
			"popularity": c.Popularity,
			"character":  c.Character,
			"order":      int64(i),
		})
	}
	return out
}

func crewParams(crew []dataset.CreditRecord) []map[string]any {
	out := make([]map[string]any, 0, len(crew))
	for _, c := range crew {
		out = append(out, map[string]any{
			"personId":   c.ID,
			"name":       c.Name,
			"popularity": c.Popularity,
			"job":        c.Job,
			"department": c.Department,
		})
	}
	return out
}
