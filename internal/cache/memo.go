// Package cache memoizes metadata lookups behind bounded, least-recently-used caches.
package cache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/metrics"
)

const (
	// DefaultCapacity bounds a Memo constructed with a non-positive capacity.
	DefaultCapacity = 4096
	// DefaultFailureTTL is how long a failed fetch is served from the cache before the key is
	// fetched again.
	DefaultFailureTTL = 30 * time.Second
)

// Options configures a Memo.
type Options struct {
	Capacity int
	// FailureTTL bounds how long failures stay cached. Successful values are only evicted by
	// capacity pressure or Reset.
	FailureTTL time.Duration
}

// FetchFunc loads the value for a key that is not cached yet.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Memo is a bounded LRU cache that fetches each distinct key at most once for as long as the
// key stays resident. Failed fetches are cached for FailureTTL, so a broken id is not retried
// on every lookup of one search but a transient outage does not outlive it. Concurrent lookups
// of the same missing key share a single in-flight fetch.
//
// Cached values are shared between callers and must be treated as read-only.
type Memo[K comparable, V any] struct {
	name       string
	capacity   int
	failureTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[K]*list.Element
	lru     *list.List
	flight  singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	fetches   atomic.Int64
	evictions atomic.Int64
}

type memoEntry[K comparable, V any] struct {
	key     K
	value   V
	err     error
	expires time.Time
}

type flightResult[V any] struct {
	value V
	err   error
	// abandoned is set when the caller that ran the fetch had its context cancelled.
	abandoned bool
}

// Stats is a point-in-time snapshot of a Memo.
type Stats struct {
	Name      string `json:"name"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Fetches   int64  `json:"fetches"`
	Evictions int64  `json:"evictions"`
}

// NewMemo creates an empty cache holding at most opts.Capacity entries.
func NewMemo[K comparable, V any](name string, opts Options) *Memo[K, V] {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.FailureTTL <= 0 {
		opts.FailureTTL = DefaultFailureTTL
	}
	return &Memo[K, V]{
		name:       name,
		capacity:   opts.Capacity,
		failureTTL: opts.FailureTTL,
		now:        time.Now,
		entries:    make(map[K]*list.Element),
		lru:        list.New(),
	}
}

// Get returns the cached value or failure for key, invoking fetch on a miss.
//
// A caller that joins a fetch started by another caller whose context is then cancelled does
// not inherit that cancellation: it runs the lookup again under its own context.
func (m *Memo[K, V]) Get(ctx context.Context, key K, fetch FetchFunc[V]) (V, error) {
	if entry, ok := m.lookup(key); ok {
		m.hits.Add(1)
		metrics.CacheHit(m.name)
		return entry.value, entry.err
	}
	m.misses.Add(1)
	metrics.CacheMiss(m.name)

	flightKey := fmt.Sprint(key)
	for {
		res, _, _ := m.flight.Do(flightKey, func() (interface{}, error) {
			// The previous flight for this key may have completed after our lookup.
			if entry, ok := m.lookup(key); ok {
				return flightResult[V]{value: entry.value, err: entry.err}, nil
			}
			m.fetches.Add(1)
			value, err := fetch(ctx)
			if isContextErr(err) {
				return flightResult[V]{value: value, err: err, abandoned: ctx.Err() != nil}, nil
			}
			m.store(key, value, err)
			return flightResult[V]{value: value, err: err}, nil
		})

		out := res.(flightResult[V])
		if out.abandoned && ctx.Err() == nil {
			continue
		}
		return out.value, out.err
	}
}

// Len reports the number of resident entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Reset drops every entry. Counters are kept.
func (m *Memo[K, V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[K]*list.Element)
	m.lru.Init()
}

// Stats returns the current counters.
func (m *Memo[K, V]) Stats() Stats {
	return Stats{
		Name:      m.name,
		Size:      m.Len(),
		Capacity:  m.capacity,
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Fetches:   m.fetches.Load(),
		Evictions: m.evictions.Load(),
	}
}

func (m *Memo[K, V]) lookup(key K) (memoEntry[K, V], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return memoEntry[K, V]{}, false
	}
	if entry := elem.Value.(*memoEntry[K, V]); entry.err != nil && !m.now().Before(entry.expires) {
		m.lru.Remove(elem)
		delete(m.entries, key)
		return memoEntry[K, V]{}, false
	}
	m.lru.MoveToFront(elem)
	return *elem.Value.(*memoEntry[K, V]), true
}

func (m *Memo[K, V]) store(key K, value V, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if err != nil {
		expires = m.now().Add(m.failureTTL)
	}

	if elem, ok := m.entries[key]; ok {
		entry := elem.Value.(*memoEntry[K, V])
		entry.value, entry.err, entry.expires = value, err, expires
		m.lru.MoveToFront(elem)
		return
	}

	m.entries[key] = m.lru.PushFront(&memoEntry[K, V]{key: key, value: value, err: err, expires: expires})
	for m.lru.Len() > m.capacity {
		oldest := m.lru.Back()
		m.lru.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoEntry[K, V]).key)
		m.evictions.Add(1)
		metrics.CacheEviction(m.name)
	}
}

// isContextErr reports cancellation of the caller, which says nothing about the key itself.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
