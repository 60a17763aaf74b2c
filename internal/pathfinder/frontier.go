package pathfinder

import (
	"container/heap"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// Direction names the side of the bidirectional search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

type queueItem struct {
	score float64
	cost  float64
	id    domain.MovieID
}

// priorityQueue orders by score, then cost, then id, so pops are fully deterministic.
type priorityQueue []queueItem

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score < q[j].score
	}
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].id < q[j].id
}

func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// frontier is one side of the search. Queue entries are deleted lazily: a node may be queued
// several times and only the entry matching its current cost is live.
type frontier struct {
	dir     Direction
	origin  domain.MovieID
	target  domain.MovieID
	cost    map[domain.MovieID]float64
	pred    map[domain.MovieID]domain.MovieID
	settled map[domain.MovieID]bool
	queue   priorityQueue
}

func newFrontier(dir Direction, origin, target domain.MovieID, score float64) *frontier {
	f := &frontier{
		dir:     dir,
		origin:  origin,
		target:  target,
		cost:    map[domain.MovieID]float64{origin: 0},
		pred:    make(map[domain.MovieID]domain.MovieID),
		settled: make(map[domain.MovieID]bool),
	}
	heap.Push(&f.queue, queueItem{score: score, cost: 0, id: origin})
	return f
}

func (f *frontier) live(item queueItem) bool {
	return !f.settled[item.id] && item.cost <= f.cost[item.id]
}

// pop removes and returns the best live entry.
func (f *frontier) pop() (queueItem, bool) {
	for f.queue.Len() > 0 {
		item := heap.Pop(&f.queue).(queueItem)
		if f.live(item) {
			return item, true
		}
	}
	return queueItem{}, false
}

// top returns the score of the best live entry without removing it.
func (f *frontier) top() (float64, bool) {
	for f.queue.Len() > 0 {
		if f.live(f.queue[0]) {
			return f.queue[0].score, true
		}
		heap.Pop(&f.queue)
	}
	return 0, false
}

func (f *frontier) empty() bool {
	_, ok := f.top()
	return !ok
}

// relax lowers the cost of id reached from prev. Settled nodes and non-improving costs are
// ignored; it reports whether the node must be (re)queued.
func (f *frontier) relax(id, prev domain.MovieID, cost float64) bool {
	if f.settled[id] {
		return false
	}
	if current, ok := f.cost[id]; ok && current <= cost {
		return false
	}
	f.cost[id] = cost
	f.pred[id] = prev
	return true
}

func (f *frontier) push(id domain.MovieID, cost, score float64) {
	heap.Push(&f.queue, queueItem{score: score, cost: cost, id: id})
}

// chain walks predecessors from id towards the origin. It stops early at a missing
// predecessor, returning the partial chain.
func (f *frontier) chain(id domain.MovieID) []domain.MovieID {
	out := []domain.MovieID{id}
	for cur := id; cur != f.origin; {
		prev, ok := f.pred[cur]
		if !ok || len(out) > len(f.pred) {
			break
		}
		out = append(out, prev)
		cur = prev
	}
	return out
}
