package pathfinder

import (
	"context"
	"fmt"
	"strings"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// Mode selects the search strategy.
type Mode string

const (
	ModeUniform   Mode = "uniform"
	ModeHeuristic Mode = "heuristic"
)

// ParseMode accepts the canonical mode names plus the aliases of the public API.
// An empty string selects uniform-cost search.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform", "bfs", "dijkstra":
		return ModeUniform, nil
	case "heuristic", "astar", "a*":
		return ModeHeuristic, nil
	default:
		return "", fmt.Errorf("unknown search algorithm %q", s)
	}
}

// Strategy turns the accumulated cost of a node into its queue priority.
type Strategy interface {
	Priority(ctx context.Context, cost float64, node, target domain.MovieID) float64
	// Exact reports whether priorities are plain costs. Exact strategies keep searching after
	// the first meeting until no cheaper meeting is possible.
	Exact() bool
}

// UniformCost orders the queue by accumulated cost alone.
type UniformCost struct{}

func (UniformCost) Priority(_ context.Context, cost float64, _, _ domain.MovieID) float64 {
	return cost
}

func (UniformCost) Exact() bool { return true }

// HeuristicGuided adds a heuristic estimate towards the opposite terminus.
type HeuristicGuided struct {
	Heuristic Heuristic
}

func (s HeuristicGuided) Priority(ctx context.Context, cost float64, node, target domain.MovieID) float64 {
	return cost + s.Heuristic.Estimate(ctx, node, target)
}

func (HeuristicGuided) Exact() bool { return false }

// StrategyFor returns the strategy implementing mode.
func StrategyFor(mode Mode, h Heuristic) Strategy {
	if mode == ModeHeuristic && h != nil {
		return HeuristicGuided{Heuristic: h}
	}
	return UniformCost{}
}
