package pathfinder

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/cache"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/provider/providertest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func actor(id int64, name string, popularity float64) dataset.CreditRecord {
	return dataset.CreditRecord{ID: id, Name: name, Popularity: popularity}
}

func film(id int64, title, released string, cast ...dataset.CreditRecord) dataset.MovieRecord {
	return dataset.MovieRecord{ID: id, Title: title, ReleaseDate: released, Popularity: 1, Cast: cast}
}

type stack struct {
	recorder  *providertest.Recorder
	cached    *cache.Provider
	expander  *Expander
	formatter *Formatter
}

func newStack(t *testing.T, cat dataset.Catalogue, opts ExpanderOptions) stack {
	t.Helper()
	rec := providertest.NewRecorder(dataset.NewProvider(cat))
	cached := cache.NewProvider(rec, cache.Options{Capacity: 1024})
	return stack{
		recorder:  rec,
		cached:    cached,
		expander:  NewExpander(cached, discardLogger(), opts),
		formatter: NewFormatter(cached, discardLogger()),
	}
}

func (s stack) engine(mode Mode, observer Observer) *Engine {
	return NewEngine(s.expander, Options{
		Strategy: StrategyFor(mode, NewCastOverlap(s.cached)),
		Observer: observer,
		Logger:   discardLogger(),
	})
}

// adjacency is a hand-built graph for exercising the engine without a provider.
type adjacency map[domain.MovieID][]domain.MovieID

func undirected(edges ...[2]domain.MovieID) adjacency {
	adj := adjacency{}
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	for id := range adj {
		sort.Slice(adj[id], func(i, j int) bool { return adj[id][i] < adj[id][j] })
	}
	return adj
}

func (a adjacency) Expand(_ context.Context, id domain.MovieID) ([]Neighbor, error) {
	out := make([]Neighbor, 0, len(a[id]))
	for _, n := range a[id] {
		out = append(out, Neighbor{Movie: n})
	}
	return out, nil
}

type settleEvent struct {
	dir  Direction
	id   domain.MovieID
	cost float64
}

type settleLog struct {
	mu     sync.Mutex
	events []settleEvent
}

func (l *settleLog) Settled(dir Direction, id domain.MovieID, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, settleEvent{dir: dir, id: id, cost: cost})
}

type zeroHeuristic struct{}

func (zeroHeuristic) Estimate(context.Context, domain.MovieID, domain.MovieID) float64 { return 0 }
