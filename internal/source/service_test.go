package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/sales"
)

type mockFetcher struct {
	mu      sync.Mutex
	records []sales.Record
	err     error
	calls   int32
	params  []Params
	gate    chan struct{}
}

func (m *mockFetcher) Fetch(ctx context.Context, p Params) ([]sales.Record, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.params = append(m.params, p)
	records, err := m.records, m.err
	m.mu.Unlock()
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return records, err
}

func (m *mockFetcher) setRecords(records []sales.Record) {
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
}

type countingObserver struct {
	mu      sync.Mutex
	hits    int
	misses  int
	fetches int
}

func (o *countingObserver) CacheHit(string, string) {
	o.mu.Lock()
	o.hits++
	o.mu.Unlock()
}

func (o *countingObserver) CacheMiss(string, string) {
	o.mu.Lock()
	o.misses++
	o.mu.Unlock()
}

func (o *countingObserver) FetchCompleted(string, string, time.Duration, error) {
	o.mu.Lock()
	o.fetches++
	o.mu.Unlock()
}

func newRedisCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestLoadCachesInRedis(t *testing.T) {
	fetcher := &mockFetcher{records: []sales.Record{{Product: "Livro", Price: 10, PurchaseDate: sales.NewDate(2021, time.May, 2)}}}
	observer := &countingObserver{}
	svc := NewService(fetcher, newRedisCache(t), observer)
	ctx := context.Background()
	params := Params{Region: "Sul", Year: 2021}

	table, err := svc.Load(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))

	// Second call should hit cache and round-trip the date.
	table, err = svc.Load(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, sales.NewDate(2021, time.May, 2), table.Records[0].PurchaseDate)
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, observer.misses)
	assert.Equal(t, 1, observer.fetches)

	// A different tuple is a different entry.
	_, err = svc.Load(ctx, Params{Region: "Norte", Year: 2021})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetcher.calls))

	// Invalidating should trigger reload.
	require.NoError(t, svc.Invalidate(ctx))
	fetcher.setRecords([]sales.Record{{Product: "Livro", Price: 15}, {Product: "Mesa", Price: 99}})
	table, err = svc.Load(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&fetcher.calls))
}

func TestLoadLocalBackend(t *testing.T) {
	fetcher := &mockFetcher{records: []sales.Record{{Product: "Livro"}}}
	cache := NewCache(nil, time.Minute)
	now := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	svc := NewService(fetcher, cache, nil)
	ctx := context.Background()

	_, err := svc.Load(ctx, Params{})
	require.NoError(t, err)
	_, err = svc.Load(ctx, Params{Region: "Brasil"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls), "Brasil and no region share one entry")
	assert.Equal(t, 1, cache.Len())
	assert.False(t, cache.Shared())

	now = now.Add(2 * time.Minute)
	_, err = svc.Load(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetcher.calls), "expired entries are refetched")

	require.NoError(t, cache.Reset(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestLoadDoesNotCacheErrors(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("offline")}
	cache := NewCache(nil, 0)
	svc := NewService(fetcher, cache, nil)

	_, err := svc.Load(context.Background(), Params{})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.records = []sales.Record{{Product: "Livro"}}
	fetcher.mu.Unlock()
	table, err := svc.Load(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	fetcher := &mockFetcher{records: []sales.Record{{Product: "Livro"}}, gate: make(chan struct{})}
	svc := NewService(fetcher, NewCache(nil, 0), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := svc.Load(context.Background(), Params{Year: 2022})
			assert.NoError(t, err)
			assert.Equal(t, 1, table.Len())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

func TestSharedLoadOutlivesCancelledCaller(t *testing.T) {
	fetcher := &mockFetcher{records: []sales.Record{{Product: "Livro"}}, gate: make(chan struct{})}
	svc := NewService(fetcher, NewCache(nil, 0), nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Load(firstCtx, Params{})
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fetcher.calls) == 1 }, time.Second, 5*time.Millisecond)

	type loadResult struct {
		table sales.Table
		err   error
	}
	second := make(chan loadResult, 1)
	go func() {
		table, err := svc.Load(context.Background(), Params{})
		second <- loadResult{table: table, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(fetcher.gate)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.table.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

func TestSharedLoadHasItsOwnTimeout(t *testing.T) {
	fetcher := &mockFetcher{records: []sales.Record{{Product: "Livro"}}, gate: make(chan struct{})}
	defer close(fetcher.gate)
	cache := NewCache(nil, 0).WithLoadTimeout(20 * time.Millisecond)
	svc := NewService(fetcher, cache, nil)

	_, err := svc.Load(context.Background(), Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, cache.Len())
}

func TestWriteAfterBumpIsDropped(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(nil, 0)
	key, err := cache.BuildKey(ctx, "sales", "-", "-")
	require.NoError(t, err)

	records, hit, err := cache.Fetch(ctx, key, func(ctx context.Context) ([]sales.Record, error) {
		assert.NoError(t, cache.Bump(ctx))
		return []sales.Record{{Product: "Livro"}}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, records, 1, "the caller still receives the loaded records")
	assert.Equal(t, 0, cache.Len())

	fresh, err := cache.BuildKey(ctx, "sales", "-", "-")
	require.NoError(t, err)
	assert.Equal(t, "sales:-:-:v2", fresh)
	_, _, err = cache.Fetch(ctx, fresh, func(context.Context) ([]sales.Record, error) {
		return []sales.Record{{Product: "Mesa"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestRedisWriteAfterBumpIsDropped(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	stale, err := cache.BuildKey(ctx, "sales", "sul", "2021")
	require.NoError(t, err)
	_, _, err = cache.Fetch(ctx, stale, func(ctx context.Context) ([]sales.Record, error) {
		assert.NoError(t, cache.Bump(ctx))
		return []sales.Record{{Product: "Livro"}}, nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(stale))

	fresh, err := cache.BuildKey(ctx, "sales", "sul", "2021")
	require.NoError(t, err)
	_, _, err = cache.Fetch(ctx, fresh, func(context.Context) ([]sales.Record, error) {
		return []sales.Record{{Product: "Mesa"}}, nil
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists(fresh))
}

func TestBuildKeyFollowsVersion(t *testing.T) {
	cache := newRedisCache(t)
	ctx := context.Background()
	key, err := cache.BuildKey(ctx, "sales", "sul", "2021")
	require.NoError(t, err)
	assert.Equal(t, "sales:sul:2021:v1", key)

	require.NoError(t, cache.Bump(ctx))
	key, err = cache.BuildKey(ctx, "sales", "sul", "2021")
	require.NoError(t, err)
	assert.Equal(t, "sales:sul:2021:v2", key)
}
