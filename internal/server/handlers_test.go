package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/cache"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/pathfinder"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalogue() dataset.Catalogue {
	p1 := dataset.CreditRecord{ID: 1, Name: "Person One", Character: "Hero", Popularity: 5}
	p2 := dataset.CreditRecord{ID: 2, Name: "Person Two", Popularity: 4}
	director := dataset.CreditRecord{ID: 50, Name: "Dee Rector", Job: "Director"}
	return dataset.Catalogue{Movies: []dataset.MovieRecord{
		{ID: 100, Title: "Alpha", ReleaseDate: "2001-01-01", PosterPath: "/a.jpg", Cast: []dataset.CreditRecord{p1}, Crew: []dataset.CreditRecord{director}},
		{ID: 200, Title: "Bravo", ReleaseDate: "2002-01-01", Cast: []dataset.CreditRecord{p1, p2}},
		{ID: 300, Title: "Charlie", Cast: []dataset.CreditRecord{p2}},
		{ID: 400, Title: "Island", Cast: []dataset.CreditRecord{{ID: 9, Name: "Loner"}}},
	}}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	metadata := cache.NewProvider(dataset.NewProvider(testCatalogue()), cache.Options{Capacity: 64})
	svc := service.NewPathService(metadata, quietLogger(), service.Options{})
	return NewRouter(quietLogger(), RouterDependencies{
		Health: metadata,
		API:    NewAPIHandlers(quietLogger(), svc),
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchPath(t *testing.T) {
	router := newTestRouter(t)

	for _, algorithm := range []string{"", "bfs", "dijkstra", "astar"} {
		t.Run(algorithm, func(t *testing.T) {
			rec := get(t, router, "/search_path?start=Alpha&end=Charlie&algorithm="+algorithm)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp pathResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, resp.Path)
			assert.Equal(t, []string{"Person One", "Person Two"}, resp.Connections)
			require.Len(t, resp.Steps, 3)
			assert.Nil(t, resp.Steps[0].Connection)
			assert.Equal(t, "Hero", resp.Steps[1].Connection.Character)
			assert.Equal(t, "N/A", resp.Steps[2].Year)
		})
	}
}

func TestSearchPath_BadRequest(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/search_path?start=Alpha").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/search_path?start=Alpha&end=Bravo&algorithm=greedy").Code)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search_path?start=a&end=b", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestSearchPath_Unresolved(t *testing.T) {
	rec := get(t, newTestRouter(t), "/search_path?start=Alpha&end=Zulu")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp unresolvedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Zulu", resp.Unresolved)
	assert.Equal(t, "end", resp.Role)
}

func TestSearchPath_NoPath(t *testing.T) {
	rec := get(t, newTestRouter(t), "/search_path?start=Alpha&end=Island")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp noPathResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Processed, domain.MovieID(100))
	assert.Contains(t, resp.Processed, domain.MovieID(400))
}

type failingFinder struct{ PathFinder }

func (failingFinder) FindPath(context.Context, string, string, pathfinder.Mode) (service.PathResult, error) {
	return service.PathResult{}, errors.New("unexpected")
}

func TestSearchPath_InternalError(t *testing.T) {
	router := NewRouter(quietLogger(), RouterDependencies{API: NewAPIHandlers(quietLogger(), failingFinder{})})
	assert.Equal(t, http.StatusInternalServerError, get(t, router, "/search_path?start=a&end=b").Code)
}

func TestSearchMovie(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/search_movie?movie_name=alpha")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []movieListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, movieListingResponse{ID: 100, Title: "Alpha", Year: "2001", Director: "Dee Rector", PosterPath: "/a.jpg"}, resp[0])

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/search_movie").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/search_movie?movie_name=a&limit=x").Code)
}

func TestCacheEndpoints(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusOK, get(t, router, "/search_path?start=Alpha&end=Bravo").Code)

	var stats cacheResponse
	rec := get(t, router, "/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats.Caches, 4)

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	assert.Equal(t, http.StatusNoContent, del.Code)

	rec = get(t, router, "/cache")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	for _, s := range stats.Caches {
		assert.Zero(t, s.Size, s.Name)
	}
}

func TestHealthz(t *testing.T) {
	router := NewRouter(quietLogger(), RouterDependencies{
		Health: HealthFunc(func(context.Context) error { return errors.New("neo4j unreachable") }),
	})
	rec := get(t, router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")

	assert.Equal(t, http.StatusOK, get(t, newTestRouter(t), "/healthz").Code)
}

func TestMetricsRouteIsOptional(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, newTestRouter(t), "/metrics").Code)

	router := NewRouter(quietLogger(), RouterDependencies{
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") }),
	})
	assert.Equal(t, http.StatusOK, get(t, router, "/metrics").Code)
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(quietLogger(), RouterDependencies{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/search_path", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
