// Package providertest offers a call-recording MetadataProvider wrapper for tests.
package providertest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider"
)

// Recorder wraps a MetadataProvider, counts every call by kind and key and can inject
// failures for chosen keys.
type Recorder struct {
	next provider.MetadataProvider

	mu       sync.Mutex
	calls    map[string]int
	order    []string
	failures map[string]error
}

// NewRecorder wraps next.
func NewRecorder(next provider.MetadataProvider) *Recorder {
	return &Recorder{
		next:     next,
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// Fail makes every future call of kind for the numeric id key return err.
func (r *Recorder) Fail(kind string, key int64, err error) *Recorder {
	return r.FailKey(kind, strconv.FormatInt(key, 10), err)
}

// FailKey is Fail for string keys such as search titles.
func (r *Recorder) FailKey(kind, key string, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[callKey(kind, key)] = err
	return r
}

// Recover removes a failure injected with Fail.
func (r *Recorder) Recover(kind string, key int64) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, callKey(kind, strconv.FormatInt(key, 10)))
	return r
}

// Count returns how often kind was called for key.
func (r *Recorder) Count(kind, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[callKey(kind, key)]
}

// Total returns how often kind was called for any key.
func (r *Recorder) Total(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, key := range r.order {
		if strings.HasPrefix(key, kind+":") {
			total += r.calls[key]
		}
	}
	return total
}

// Calls returns a snapshot of call counts keyed by "kind:key".
func (r *Recorder) Calls() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.calls))
	for k, v := range r.calls {
		out[k] = v
	}
	return out
}

func (r *Recorder) record(kind, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := callKey(kind, key)
	if _, seen := r.calls[k]; !seen {
		r.order = append(r.order, k)
	}
	r.calls[k]++
	if err, ok := r.failures[k]; ok {
		return provider.NewFetchError(kind, key, err)
	}
	return nil
}

func (r *Recorder) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.MovieSummary, error) {
	if err := r.record(provider.KindSearch, title); err != nil {
		return nil, err
	}
	return r.next.SearchByTitle(ctx, title, limit)
}

func (r *Recorder) MovieDetails(ctx context.Context, id domain.MovieID) (domain.Movie, error) {
	if err := r.record(provider.KindDetails, id.String()); err != nil {
		return domain.Movie{}, err
	}
	return r.next.MovieDetails(ctx, id)
}

func (r *Recorder) MovieCredits(ctx context.Context, id domain.MovieID) (domain.Credits, error) {
	if err := r.record(provider.KindCredits, id.String()); err != nil {
		return domain.Credits{}, err
	}
	return r.next.MovieCredits(ctx, id)
}

func (r *Recorder) PersonFilmography(ctx context.Context, id domain.PersonID) (domain.Filmography, error) {
	if err := r.record(provider.KindFilmography, id.String()); err != nil {
		return domain.Filmography{}, err
	}
	return r.next.PersonFilmography(ctx, id)
}

func callKey(kind, key string) string {
	return fmt.Sprintf("%s:%s", kind, key)
}
