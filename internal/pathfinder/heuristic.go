package pathfinder

import (
	"context"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// Heuristic estimates the remaining number of hops between two movies.
type Heuristic interface {
	Estimate(ctx context.Context, from, to domain.MovieID) float64
}

// CastOverlap returns 0 when two movies share a cast member and 1 otherwise.
// It is a coarse two-valued guess, not a proven lower bound.
type CastOverlap struct {
	source CreditSource
}

// NewCastOverlap builds the heuristic over a (memoized) credit source.
func NewCastOverlap(source CreditSource) CastOverlap {
	return CastOverlap{source: source}
}

func (h CastOverlap) Estimate(ctx context.Context, from, to domain.MovieID) float64 {
	if from == to {
		return 0
	}
	a, err := h.source.MovieCredits(ctx, from)
	if err != nil {
		return 1
	}
	b, err := h.source.MovieCredits(ctx, to)
	if err != nil {
		return 1
	}

	cast := make(map[domain.PersonID]struct{}, len(a.Cast))
	for _, p := range a.Cast {
		cast[p.ID] = struct{}{}
	}
	for _, p := range b.Cast {
		if _, ok := cast[p.ID]; ok {
			return 0
		}
	}
	return 1
}
