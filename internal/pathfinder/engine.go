package pathfinder

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// NeighborSource expands a movie into its adjacent movies.
type NeighborSource interface {
	Expand(ctx context.Context, id domain.MovieID) ([]Neighbor, error)
}

// Observer receives search events. Implementations must be fast; they run on the search loop.
type Observer interface {
	Settled(dir Direction, id domain.MovieID, cost float64)
}

// Options configures an Engine. A nil Strategy selects UniformCost.
type Options struct {
	Strategy Strategy
	Timeout  time.Duration
	Workers  int
	Observer Observer
	Logger   *slog.Logger
}

// Result is the outcome of one search. Processed lists every movie settled by either frontier,
// in settle order. When the deadline fires before a meeting, Found is false and TimedOut true.
type Result struct {
	Found     bool
	Path      []domain.MovieID
	Processed []domain.MovieID
	Cost      float64
	Meeting   domain.MovieID
	TimedOut  bool
}

// Engine runs bidirectional searches. It holds no per-search state and may be reused.
type Engine struct {
	neighbors NeighborSource
	strategy  Strategy
	timeout   time.Duration
	workers   int
	observer  Observer
	logger    *slog.Logger
}

// NewEngine constructs an Engine expanding nodes through neighbors.
func NewEngine(neighbors NeighborSource, opts Options) *Engine {
	if opts.Strategy == nil {
		opts.Strategy = UniformCost{}
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		neighbors: neighbors,
		strategy:  opts.Strategy,
		timeout:   opts.Timeout,
		workers:   opts.Workers,
		observer:  opts.Observer,
		logger:    opts.Logger,
	}
}

type meeting struct {
	found bool
	node  domain.MovieID
	cost  float64
}

type search struct {
	processed []domain.MovieID
	touched   map[domain.MovieID]struct{}
	best      meeting
}

// offer records node as the meeting point when total improves on the best known total.
func (s *search) offer(node domain.MovieID, total float64) {
	if s.best.found && total >= s.best.cost {
		return
	}
	s.best = meeting{found: true, node: node, cost: total}
}

func (s *search) touch(id domain.MovieID) {
	if _, ok := s.touched[id]; ok {
		return
	}
	s.touched[id] = struct{}{}
	s.processed = append(s.processed, id)
}

// Search looks for a chain of movies from start to end. It never fails: provider errors turn
// nodes into dead ends and exhaustion or the deadline yield Found == false.
func (e *Engine) Search(ctx context.Context, start, end domain.MovieID) Result {
	if start == end {
		return Result{
			Found:     true,
			Path:      []domain.MovieID{start},
			Processed: []domain.MovieID{start},
			Meeting:   start,
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	fwd := newFrontier(Forward, start, end, e.strategy.Priority(ctx, 0, start, end))
	bwd := newFrontier(Backward, end, start, e.strategy.Priority(ctx, 0, end, start))
	s := &search{touched: make(map[domain.MovieID]struct{})}

	timedOut := false
	for !fwd.empty() && !bwd.empty() {
		if ctx.Err() != nil {
			timedOut = true
			break
		}
		e.step(ctx, fwd, bwd, s)
		e.step(ctx, bwd, fwd, s)
		if s.best.found && e.done(fwd, bwd, s.best.cost) {
			break
		}
	}
	if !timedOut && ctx.Err() != nil && !s.best.found {
		timedOut = true
	}

	res := Result{Processed: s.processed, TimedOut: timedOut}
	if !s.best.found {
		return res
	}
	res.Found = true
	res.Meeting = s.best.node
	res.Cost = s.best.cost
	res.Path = reconstruct(fwd, bwd, s.best.node)
	return res
}

// done reports whether the recorded meeting may be returned. Inexact strategies stop at the
// first meeting; exact ones wait until both queue heads together cannot beat it.
func (e *Engine) done(fwd, bwd *frontier, best float64) bool {
	if !e.strategy.Exact() {
		return true
	}
	f, okF := fwd.top()
	b, okB := bwd.top()
	if !okF || !okB {
		return true
	}
	return f+b >= best
}

// step settles the best node of f, expands it and relaxes its neighbors, recording meetings
// with other.
func (e *Engine) step(ctx context.Context, f, other *frontier, s *search) {
	item, ok := f.pop()
	if !ok {
		return
	}
	f.settled[item.id] = true
	s.touch(item.id)
	if e.observer != nil {
		e.observer.Settled(f.dir, item.id, item.cost)
	}
	if c, ok := other.cost[item.id]; ok {
		s.offer(item.id, item.cost+c)
	}

	neighbors, err := e.neighbors.Expand(ctx, item.id)
	if err != nil {
		e.logger.Debug("dead end", "direction", f.dir.String(), "movieId", item.id, "error", err)
		return
	}

	cost := item.cost + 1
	var queued []domain.MovieID
	for _, n := range neighbors {
		if f.relax(n.Movie, item.id, cost) {
			queued = append(queued, n.Movie)
		}
		if c, ok := other.cost[n.Movie]; ok {
			s.offer(n.Movie, f.cost[n.Movie]+c)
		}
	}

	for i, score := range e.priorities(ctx, queued, cost, f.target) {
		f.push(queued[i], cost, score)
	}
}

// priorities scores newly queued nodes. Inexact strategies may hit the provider, so they are
// scored concurrently; results are indexed by input position.
func (e *Engine) priorities(ctx context.Context, ids []domain.MovieID, cost float64, target domain.MovieID) []float64 {
	scores := make([]float64, len(ids))
	if e.strategy.Exact() {
		for i, id := range ids {
			scores[i] = e.strategy.Priority(ctx, cost, id, target)
		}
		return scores
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, id := range ids {
		g.Go(func() error {
			scores[i] = e.strategy.Priority(ctx, cost, id, target)
			return nil
		})
	}
	_ = g.Wait()
	return scores
}

// reconstruct joins the forward chain start..meeting with the backward chain meeting..end.
func reconstruct(fwd, bwd *frontier, node domain.MovieID) []domain.MovieID {
	head := fwd.chain(node)
	path := make([]domain.MovieID, 0, len(head))
	for i := len(head) - 1; i >= 0; i-- {
		path = append(path, head[i])
	}
	tail := bwd.chain(node)
	return append(path, tail[1:]...)
}
