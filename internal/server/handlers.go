package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/cache"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/pathfinder"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
)

// PathFinder is the service contract the HTTP handlers depend on.
type PathFinder interface {
	FindPath(ctx context.Context, startTitle, endTitle string, mode pathfinder.Mode) (service.PathResult, error)
	SearchMovies(ctx context.Context, query string, limit int) ([]service.MovieListing, error)
	CacheStats() []cache.Stats
	ResetCache()
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service PathFinder
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc PathFinder) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

type movieListingResponse struct {
	ID         domain.MovieID `json:"id"`
	Title      string         `json:"title"`
	Year       string         `json:"year"`
	Director   string         `json:"director"`
	PosterPath string         `json:"posterPath,omitempty"`
}

type connectionResponse struct {
	ID        domain.PersonID `json:"id"`
	Name      string          `json:"name"`
	Character string          `json:"character,omitempty"`
	Job       string          `json:"job,omitempty"`
}

type stepResponse struct {
	ID         domain.MovieID      `json:"id"`
	Title      string              `json:"title"`
	Year       string              `json:"year"`
	PosterPath string              `json:"posterPath,omitempty"`
	Connection *connectionResponse `json:"connection,omitempty"`
}

type pathResponse struct {
	Algorithm   string           `json:"algorithm"`
	Path        []string         `json:"path"`
	Connections []string         `json:"connections"`
	Steps       []stepResponse   `json:"steps"`
	Processed   []domain.MovieID `json:"processed"`
	Cost        float64          `json:"cost"`
	DurationMs  int64            `json:"durationMs"`
}

type unresolvedResponse struct {
	Error      string `json:"error"`
	Role       string `json:"role"`
	Unresolved string `json:"unresolved"`
}

type noPathResponse struct {
	Error     string           `json:"error"`
	Processed []domain.MovieID `json:"processed"`
	TimedOut  bool             `json:"timedOut"`
}

type cacheResponse struct {
	Caches []cache.Stats `json:"caches"`
}

func (h *APIHandlers) handleSearchMovie(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("movie_name"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "movie_name is required")
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := h.service.SearchMovies(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("movie search failed", "error", err, "query", query)
		writeError(w, http.StatusBadGateway, "movie search failed")
		return
	}

	resp := make([]movieListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, movieListingResponse{
			ID:         l.Movie.ID,
			Title:      l.Movie.Title,
			Year:       l.Movie.Year(),
			Director:   l.Director,
			PosterPath: l.Movie.PosterPath,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleSearchPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}
	mode, err := pathfinder.ParseMode(q.Get("algorithm"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.FindPath(r.Context(), start, end, mode)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	resp := pathResponse{
		Algorithm:   string(result.Mode),
		Path:        result.Titles(),
		Connections: result.Connections(),
		Steps:       make([]stepResponse, 0, len(result.Steps)),
		Processed:   result.Processed,
		Cost:        result.Cost,
		DurationMs:  result.Duration.Milliseconds(),
	}
	for _, s := range result.Steps {
		step := stepResponse{
			ID:         s.Movie.ID,
			Title:      s.Movie.Title,
			Year:       s.Movie.Year(),
			PosterPath: s.Movie.PosterPath,
		}
		if s.Connection != nil {
			step.Connection = &connectionResponse{
				ID:        s.Connection.ID,
				Name:      s.Connection.Name,
				Character: s.Connection.Character,
				Job:       s.Connection.Job,
			}
		}
		resp.Steps = append(resp.Steps, step)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) writeSearchError(w http.ResponseWriter, err error) {
	var unresolved *service.UnresolvedError
	var noPath *service.NoPathError
	switch {
	case errors.As(err, &unresolved):
		respondJSON(w, http.StatusNotFound, unresolvedResponse{
			Error:      "could not find a movie titled " + strconv.Quote(unresolved.Title),
			Role:       unresolved.Role,
			Unresolved: unresolved.Title,
		})
	case errors.As(err, &noPath):
		processed := noPath.Processed
		if processed == nil {
			processed = []domain.MovieID{}
		}
		respondJSON(w, http.StatusNotFound, noPathResponse{
			Error:     "could not find a path between the movies",
			Processed: processed,
			TimedOut:  noPath.TimedOut,
		})
	default:
		h.logger.Error("path search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "path search failed")
	}
}

func (h *APIHandlers) handleCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, cacheResponse{Caches: h.service.CacheStats()})
	case http.MethodDelete:
		h.service.ResetCache()
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
