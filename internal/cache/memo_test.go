package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo_FetchesOnce(t *testing.T) {
	m := NewMemo[int, string]("test", Options{Capacity: 8})
	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	for i := 0; i < 5; i++ {
		v, err := m.Get(context.Background(), 1, fetch)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	}
	assert.Equal(t, int32(1), calls.Load())

	stats := m.Stats()
	assert.Equal(t, int64(4), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Fetches)
}

func TestMemo_CachesFailures(t *testing.T) {
	m := NewMemo[int, string]("test", Options{Capacity: 8})
	boom := errors.New("boom")
	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	}

	_, err := m.Get(context.Background(), 7, fetch)
	require.ErrorIs(t, err, boom)
	_, err = m.Get(context.Background(), 7, fetch)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemo_DoesNotCacheCancellation(t *testing.T) {
	m := NewMemo[int, string]("test", Options{Capacity: 8})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, 1, func(ctx context.Context) (string, error) { return "", ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Len())

	v, err := m.Get(context.Background(), 1, func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestMemo_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemo[int, int]("test", Options{Capacity: 2})
	ctx := context.Background()
	var calls atomic.Int32
	fetch := func(v int) FetchFunc[int] {
		return func(context.Context) (int, error) {
			calls.Add(1)
			return v, nil
		}
	}

	_, _ = m.Get(ctx, 1, fetch(1))
	_, _ = m.Get(ctx, 2, fetch(2))
	_, _ = m.Get(ctx, 1, fetch(1)) // 1 becomes most recent
	_, _ = m.Get(ctx, 3, fetch(3)) // evicts 2

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, int64(1), m.Stats().Evictions)

	_, _ = m.Get(ctx, 1, fetch(1))
	assert.Equal(t, int32(3), calls.Load(), "1 must still be resident")
	_, _ = m.Get(ctx, 2, fetch(2))
	assert.Equal(t, int32(4), calls.Load(), "2 must have been evicted")
}

func TestMemo_ConcurrentMissesShareOneFetch(t *testing.T) {
	m := NewMemo[string, int]("test", Options{Capacity: 8})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Get(context.Background(), "key", fetch)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestMemo_ResetKeepsCounters(t *testing.T) {
	m := NewMemo[int, int]("test", Options{Capacity: 0})
	_, _ = m.Get(context.Background(), 1, func(context.Context) (int, error) { return 1, nil })
	m.Reset()

	stats := m.Stats()
	assert.Zero(t, stats.Size)
	assert.Equal(t, DefaultCapacity, stats.Capacity)
	assert.Equal(t, int64(1), stats.Fetches)
}

func TestMemo_FailuresExpireAfterTTL(t *testing.T) {
	m := NewMemo[int, string]("test", Options{Capacity: 8, FailureTTL: time.Minute})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	boom := errors.New("503 from upstream")
	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "recovered", nil
	}

	_, err := m.Get(context.Background(), 1, fetch)
	require.ErrorIs(t, err, boom)

	clock = clock.Add(30 * time.Second)
	_, err = m.Get(context.Background(), 1, fetch)
	require.ErrorIs(t, err, boom, "failure is still served within its ttl")
	assert.Equal(t, int32(1), calls.Load())

	clock = clock.Add(31 * time.Second)
	v, err := m.Get(context.Background(), 1, fetch)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemo_ValuesDoNotExpire(t *testing.T) {
	m := NewMemo[int, string]("test", Options{Capacity: 8, FailureTTL: time.Second})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	_, _ = m.Get(context.Background(), 1, fetch)
	clock = clock.Add(24 * time.Hour)
	_, _ = m.Get(context.Background(), 1, fetch)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemo_CancelledLeaderDoesNotFailLiveFollower(t *testing.T) {
	m := NewMemo[int, string]("test", Options{Capacity: 8})
	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()

	started := make(chan struct{})
	leaderDone := make(chan error, 1)
	go func() {
		_, err := m.Get(leaderCtx, 1, func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		})
		leaderDone <- err
	}()
	<-started

	var followerCalls atomic.Int32
	type outcome struct {
		value string
		err   error
	}
	followerDone := make(chan outcome, 1)
	go func() {
		v, err := m.Get(context.Background(), 1, func(context.Context) (string, error) {
			followerCalls.Add(1)
			return "fresh", nil
		})
		followerDone <- outcome{value: v, err: err}
	}()

	require.Eventually(t, func() bool { return m.Stats().Misses == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond) // let the follower join the in-flight fetch
	cancelLeader()

	assert.ErrorIs(t, <-leaderDone, context.Canceled)
	got := <-followerDone
	require.NoError(t, got.err)
	assert.Equal(t, "fresh", got.value)
	assert.Equal(t, int32(1), followerCalls.Load())

	v, err := m.Get(context.Background(), 1, func(context.Context) (string, error) { return "unused", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}
