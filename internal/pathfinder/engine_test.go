package pathfinder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

func chainCatalogue() dataset.Catalogue {
	p1 := actor(1, "Person One", 5)
	p2 := actor(2, "Person Two", 4)
	return dataset.Catalogue{Movies: []dataset.MovieRecord{
		film(100, "Movie A", "2001-01-01", p1),
		film(200, "Movie B", "2002-01-01", p1, p2),
		film(300, "Movie C", "2003-01-01", p2),
	}}
}

func TestSearch_DirectConnection(t *testing.T) {
	shared := actor(7, "Shared Star", 9)
	cat := dataset.Catalogue{Movies: []dataset.MovieRecord{
		film(1, "Start", "2010-05-01", shared, actor(8, "Other", 1)),
		film(2, "End", "2012-05-01", shared),
	}}

	for _, mode := range []Mode{ModeUniform, ModeHeuristic} {
		t.Run(string(mode), func(t *testing.T) {
			s := newStack(t, cat, ExpanderOptions{})
			res := s.engine(mode, nil).Search(context.Background(), 1, 2)

			require.True(t, res.Found)
			assert.Equal(t, []domain.MovieID{1, 2}, res.Path)
			assert.Equal(t, float64(1), res.Cost)

			steps := s.formatter.Format(context.Background(), res.Path)
			require.Len(t, steps, 2)
			assert.Nil(t, steps[0].Connection)
			assert.Equal(t, "Shared Star", steps[1].ConnectionName())
		})
	}
}

func TestSearch_ThreeMovieChain(t *testing.T) {
	for _, mode := range []Mode{ModeUniform, ModeHeuristic} {
		t.Run(string(mode), func(t *testing.T) {
			s := newStack(t, chainCatalogue(), ExpanderOptions{})
			res := s.engine(mode, nil).Search(context.Background(), 100, 300)

			require.True(t, res.Found)
			assert.Equal(t, []domain.MovieID{100, 200, 300}, res.Path)

			steps := s.formatter.Format(context.Background(), res.Path)
			require.Len(t, steps, 3)
			assert.Equal(t, "Movie A", steps[0].Movie.Title)
			assert.Equal(t, "Person One", steps[1].ConnectionName())
			assert.Equal(t, "Person Two", steps[2].ConnectionName())
		})
	}
}

func TestSearch_SameStartAndEnd(t *testing.T) {
	s := newStack(t, chainCatalogue(), ExpanderOptions{})
	res := s.engine(ModeUniform, nil).Search(context.Background(), 200, 200)

	require.True(t, res.Found)
	assert.Equal(t, []domain.MovieID{200}, res.Path)
	assert.Zero(t, s.recorder.Total("credits"))
}

func TestSearch_NoPathReportsSettledNodes(t *testing.T) {
	p1, p2 := actor(1, "Left", 1), actor(2, "Right", 1)
	cat := dataset.Catalogue{Movies: []dataset.MovieRecord{
		film(10, "Left A", "2000-01-01", p1),
		film(11, "Left B", "2001-01-01", p1),
		film(20, "Right A", "2000-01-01", p2),
		film(21, "Right B", "2001-01-01", p2),
	}}
	s := newStack(t, cat, ExpanderOptions{})
	log := &settleLog{}

	res := s.engine(ModeUniform, log).Search(context.Background(), 10, 20)

	require.False(t, res.Found)
	assert.False(t, res.TimedOut)
	assert.Empty(t, res.Path)

	settled := make([]domain.MovieID, 0, len(log.events))
	for _, ev := range log.events {
		settled = append(settled, ev.id)
	}
	assert.ElementsMatch(t, settled, res.Processed)
	assert.ElementsMatch(t, []domain.MovieID{10, 11, 20, 21}, res.Processed)
}

func TestSearch_FetchesEachKeyOnce(t *testing.T) {
	for _, mode := range []Mode{ModeUniform, ModeHeuristic} {
		t.Run(string(mode), func(t *testing.T) {
			s := newStack(t, chainCatalogue(), ExpanderOptions{})
			res := s.engine(mode, nil).Search(context.Background(), 100, 300)
			require.True(t, res.Found)
			s.formatter.Format(context.Background(), res.Path)

			calls := s.recorder.Calls()
			require.NotEmpty(t, calls)
			for key, n := range calls {
				assert.Equal(t, 1, n, "provider called more than once for %s", key)
			}
		})
	}
}

func TestSearch_SettledNodesAreSettledOnce(t *testing.T) {
	s := newStack(t, chainCatalogue(), ExpanderOptions{})
	log := &settleLog{}
	s.engine(ModeUniform, log).Search(context.Background(), 100, 300)

	type key struct {
		dir Direction
		id  domain.MovieID
	}
	seen := map[key]bool{}
	last := map[Direction]float64{}
	for _, ev := range log.events {
		k := key{ev.dir, ev.id}
		assert.False(t, seen[k], "%s settled twice on %s side", ev.id, ev.dir)
		seen[k] = true
		assert.GreaterOrEqual(t, ev.cost, last[ev.dir], "uniform settle order must not decrease")
		last[ev.dir] = ev.cost
	}
}

func TestSearch_Deterministic(t *testing.T) {
	cat := chainCatalogue()
	extra := actor(3, "Bridge", 2)
	cat.Movies[0].Cast = append(cat.Movies[0].Cast, extra)
	cat.Movies = append(cat.Movies,
		film(400, "Movie D", "2004-01-01", extra, actor(2, "Person Two", 4)),
		film(500, "Movie E", "2004-01-01", extra),
	)

	var runs []Result
	for i := 0; i < 3; i++ {
		s := newStack(t, cat, ExpanderOptions{})
		runs = append(runs, s.engine(ModeUniform, nil).Search(context.Background(), 100, 300))
	}
	for _, r := range runs[1:] {
		assert.Equal(t, runs[0].Path, r.Path)
		assert.Equal(t, runs[0].Processed, r.Processed)
	}
}

func TestSearch_SkipsFailedExpansion(t *testing.T) {
	p := func(id int64) dataset.CreditRecord { return actor(id, fmt.Sprintf("P%d", id), 1) }
	cat := dataset.Catalogue{Movies: []dataset.MovieRecord{
		film(1, "Start", "2000-01-01", p(1), p(4)),
		film(2, "Broken Left", "2001-01-01", p(1), p(2)),
		film(3, "Broken Right", "2001-01-01", p(2), p(3)),
		film(4, "End", "2002-01-01", p(3), p(7)),
		film(5, "Detour One", "2003-01-01", p(4), p(5)),
		film(6, "Detour Two", "2004-01-01", p(5), p(6)),
		film(7, "Detour Three", "2005-01-01", p(6), p(7)),
	}}
	s := newStack(t, cat, ExpanderOptions{})
	s.recorder.Fail("credits", 2, assert.AnError).Fail("credits", 3, assert.AnError)

	res := s.engine(ModeUniform, nil).Search(context.Background(), 1, 4)

	require.True(t, res.Found)
	assert.Equal(t, []domain.MovieID{1, 5, 6, 7, 4}, res.Path)
	assert.Contains(t, res.Processed, domain.MovieID(2))
	assert.Contains(t, res.Processed, domain.MovieID(3))
}

func TestEngine_UniformReturnsShortestPath(t *testing.T) {
	// 1-10-40-90-100 is the shortest chain, but 1-10-20-60-50-100 meets first.
	graph := undirected(
		[2]domain.MovieID{1, 10},
		[2]domain.MovieID{10, 20},
		[2]domain.MovieID{10, 40},
		[2]domain.MovieID{20, 60},
		[2]domain.MovieID{60, 50},
		[2]domain.MovieID{50, 100},
		[2]domain.MovieID{51, 100},
		[2]domain.MovieID{90, 100},
		[2]domain.MovieID{40, 90},
	)

	res := NewEngine(graph, Options{Logger: discardLogger()}).Search(context.Background(), 1, 100)

	require.True(t, res.Found)
	assert.Equal(t, float64(4), res.Cost)
	assert.Equal(t, []domain.MovieID{1, 10, 40, 90, 100}, res.Path)
}

func TestEngine_InexactStrategyStopsAtFirstMeeting(t *testing.T) {
	graph := undirected(
		[2]domain.MovieID{1, 10},
		[2]domain.MovieID{10, 20},
		[2]domain.MovieID{10, 40},
		[2]domain.MovieID{20, 60},
		[2]domain.MovieID{60, 50},
		[2]domain.MovieID{50, 100},
		[2]domain.MovieID{51, 100},
		[2]domain.MovieID{90, 100},
		[2]domain.MovieID{40, 90},
	)

	res := NewEngine(graph, Options{
		Strategy: HeuristicGuided{Heuristic: zeroHeuristic{}},
		Logger:   discardLogger(),
	}).Search(context.Background(), 1, 100)

	require.True(t, res.Found)
	assert.Equal(t, float64(5), res.Cost)
	assert.Equal(t, domain.MovieID(1), res.Path[0])
	assert.Equal(t, domain.MovieID(100), res.Path[len(res.Path)-1])
}

type blockingSource struct{}

func (blockingSource) Expand(ctx context.Context, _ domain.MovieID) ([]Neighbor, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEngine_DeadlineReportsNotFound(t *testing.T) {
	res := NewEngine(blockingSource{}, Options{
		Timeout: 20 * time.Millisecond,
		Logger:  discardLogger(),
	}).Search(context.Background(), 1, 2)

	assert.False(t, res.Found)
	assert.True(t, res.TimedOut)
	assert.Equal(t, []domain.MovieID{1, 2}, res.Processed)
}

func TestReconstruct_TruncatesAtMissingPredecessor(t *testing.T) {
	fwd := newFrontier(Forward, 1, 9, 0)
	bwd := newFrontier(Backward, 9, 1, 0)
	fwd.pred[5] = 4 // 4 has no predecessor recorded
	bwd.pred[5] = 9

	assert.Equal(t, []domain.MovieID{4, 5, 9}, reconstruct(fwd, bwd, 5))
}

func TestFrontier_RelaxNeverRaisesOrTouchesSettled(t *testing.T) {
	f := newFrontier(Forward, 1, 9, 0)

	assert.True(t, f.relax(2, 1, 3))
	assert.False(t, f.relax(2, 1, 4))
	assert.Equal(t, float64(3), f.cost[2])

	assert.True(t, f.relax(2, 5, 2))
	assert.Equal(t, domain.MovieID(5), f.pred[2])

	f.settled[2] = true
	assert.False(t, f.relax(2, 6, 1))
	assert.Equal(t, float64(2), f.cost[2])
}

func TestFrontier_PopSkipsStaleEntries(t *testing.T) {
	f := newFrontier(Forward, 1, 9, 0)
	item, ok := f.pop()
	require.True(t, ok)
	f.settled[item.id] = true

	f.relax(3, 1, 5)
	f.push(3, 5, 5)
	f.relax(3, 1, 2)
	f.push(3, 2, 2)
	f.relax(4, 1, 2)
	f.push(4, 2, 2)

	first, ok := f.pop()
	require.True(t, ok)
	assert.Equal(t, domain.MovieID(3), first.id)
	f.settled[first.id] = true

	second, ok := f.pop()
	require.True(t, ok)
	assert.Equal(t, domain.MovieID(4), second.id)
	f.settled[second.id] = true

	_, ok = f.pop()
	assert.False(t, ok, "stale entry for 3 must be discarded")
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":          ModeUniform,
		"bfs":       ModeUniform,
		"Dijkstra":  ModeUniform,
		"uniform":   ModeUniform,
		"astar":     ModeHeuristic,
		"heuristic": ModeHeuristic,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("greedy")
	assert.Error(t, err)
}
