// Package tmdb implements the metadata provider on top of The Movie Database REST API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/metrics"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

const (
	DefaultBaseURL   = "https://api.themoviedb.org/3/"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 40
	DefaultRateBurst = 10
	defaultBackoff   = 250 * time.Millisecond
	providerLabel    = "tmdb"
)

// ErrMissingCredentials is returned when neither an API key nor an access token is configured.
var ErrMissingCredentials = errors.New("tmdb api key or access token is required")

// StatusError reports an unexpected HTTP status from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed when repeated.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Options configures a Client.
type Options struct {
	APIKey      string
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64
	RateBurst   int
	// MaxRetries is the number of extra attempts after a 429 or 5xx. Zero disables retries.
	MaxRetries  int
	Backoff     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Client is a rate limited TMDB client.
type Client struct {
	http        *http.Client
	baseURL     *url.URL
	apiKey      string
	accessToken string
	limiter     *rate.Limiter
	maxRetries  int
	backoff     time.Duration
	logger      *slog.Logger
}

// NewClient validates opts and builds a client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" && opts.AccessToken == "" {
		return nil, ErrMissingCredentials
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid tmdb base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = DefaultRateBurst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		http:        opts.HTTPClient,
		baseURL:     base,
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		maxRetries:  opts.MaxRetries,
		backoff:     opts.Backoff,
		logger:      opts.Logger,
	}, nil
}

type movieResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
}

func (m movieResult) summary() domain.MovieSummary {
	return domain.MovieSummary{
		ID:          domain.MovieID(m.ID),
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		PosterPath:  m.PosterPath,
		Popularity:  m.Popularity,
	}
}

type personResult struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Character  string  `json:"character"`
	Job        string  `json:"job"`
	Department string  `json:"department"`
	Popularity float64 `json:"popularity"`
}

func (p personResult) person() domain.Person {
	return domain.Person{
		ID:         domain.PersonID(p.ID),
		Name:       p.Name,
		Character:  p.Character,
		Job:        p.Job,
		Department: p.Department,
		Popularity: p.Popularity,
	}
}

type searchResponse struct {
	Results []movieResult `json:"results"`
}

type creditsResponse struct {
	Cast []personResult `json:"cast"`
	Crew []personResult `json:"crew"`
}

type movieCreditsResponse struct {
	Cast []movieResult `json:"cast"`
	Crew []movieResult `json:"crew"`
}

// SearchByTitle returns the first page of search/movie results, truncated to limit.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.MovieSummary, error) {
	query := url.Values{"query": {title}, "include_adult": {"false"}}
	var resp searchResponse
	if err := c.get(ctx, provider.KindSearch, title, "search/movie", query, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.MovieSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.summary())
	}
	return out, nil
}

func (c *Client) MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error) {
	var resp movieResult
	if err := c.get(ctx, provider.KindDetails, id.String(), "movie/"+id.String(), nil, &resp); err != nil {
		return domain.Movie{}, err
	}
	return domain.Movie{
		ID:          domain.MovieID(resp.ID),
		Title:       resp.Title,
		ReleaseDate: resp.ReleaseDate,
		PosterPath:  resp.PosterPath,
		Overview:    resp.Overview,
		Popularity:  resp.Popularity,
	}, nil
}

func (c *Client) MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error) {
	var resp creditsResponse
	if err := c.get(ctx, provider.KindCredits, id.String(), "movie/"+id.String()+"/credits", nil, &resp); err != nil {
		return domain.Credits{}, err
	}

	credits := domain.Credits{
		MovieID: id,
		Cast:    make([]domain.Person, 0, len(resp.Cast)),
		Crew:    make([]domain.Person, 0, len(resp.Crew)),
	}
	for _, p := range resp.Cast {
		credits.Cast = append(credits.Cast, p.person())
	}
	for _, p := range resp.Crew {
		credits.Crew = append(credits.Crew, p.person())
	}
	return credits, nil
}

func (c *Client) PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error) {
	var resp movieCreditsResponse
	if err := c.get(ctx, provider.KindFilmography, id.String(), "person/"+id.String()+"/movie_credits", nil, &resp); err != nil {
		return domain.Filmography{}, err
	}

	films := domain.Filmography{
		PersonID: id,
		Cast:     make([]domain.MovieSummary, 0, len(resp.Cast)),
		Crew:     make([]domain.MovieSummary, 0, len(resp.Crew)),
	}
	for _, m := range resp.Cast {
		films.Cast = append(films.Cast, m.summary())
	}
	for _, m := range resp.Crew {
		films.Crew = append(films.Crew, m.summary())
	}
	return films, nil
}

// Probe checks that the API accepts the configured credentials.
func (c *Client) Probe(ctx context.Context) error {
	var discard map[string]any
	return c.get(ctx, "probe", "configuration", "configuration", nil, &discard)
}

// get performs a GET with rate limiting and retries and decodes the JSON body into out.
// Failures are wrapped in a provider.FetchError; 404 maps to provider.ErrNotFound.
func (c *Client) get(ctx context.Context, kind, key, path string, query url.Values, out any) error {
	started := time.Now()
	err := c.retry(ctx, func(ctx context.Context) error {
		return c.do(ctx, path, query, out)
	})
	metrics.ObserveProviderRequest(providerLabel, kind, started, err)
	if err != nil {
		return provider.NewFetchError(kind, key, err)
	}
	return nil
}

// retry runs fn and repeats it up to maxRetries times while it fails with a retryable status,
// backing off linearly. It stops at once on context cancellation.
func (c *Client) retry(ctx context.Context, fn func(context.Context) error) error {
	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var status *StatusError
		if !errors.As(lastErr, &status) || !status.Retryable() || attempt == attempts {
			return lastErr
		}
		c.logger.Debug("retrying tmdb request", "attempt", attempt, "status", status.Code)

		timer := time.NewTimer(time.Duration(attempt) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	params := url.Values{}
	for k, v := range query {
		params[k] = v
	}
	if c.accessToken == "" {
		params.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return provider.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
