package source

import (
	"context"
	"time"

	"github.com/salesdash/salesdash/internal/sales"
)

// Fetcher loads records for a parameter tuple.
type Fetcher interface {
	Fetch(ctx context.Context, p Params) ([]sales.Record, error)
}

// Observer receives fetch cache events.
type Observer interface {
	CacheHit(region, year string)
	CacheMiss(region, year string)
	FetchCompleted(region, year string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string, string)                             {}
func (nopObserver) CacheMiss(string, string)                            {}
func (nopObserver) FetchCompleted(string, string, time.Duration, error) {}

// Service coordinates endpoint fetches with the cache layer.
type Service struct {
	fetcher  Fetcher
	cache    *Cache
	observer Observer
}

// NewService wires a Fetcher with a Cache helper. A nil observer is ignored.
func NewService(fetcher Fetcher, cache *Cache, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{fetcher: fetcher, cache: cache, observer: observer}
}

// Load returns the table for p, fetching it at most once per cache lifetime.
func (s *Service) Load(ctx context.Context, p Params) (sales.Table, error) {
	region, year := labelValue(p.RegionParam()), labelValue(p.YearParam())
	key, err := s.cache.BuildKey(ctx, p.Key()...)
	if err != nil {
		return sales.Table{}, err
	}
	records, hit, err := s.cache.Fetch(ctx, key, func(ctx context.Context) ([]sales.Record, error) {
		start := time.Now()
		records, err := s.fetcher.Fetch(ctx, p)
		s.observer.FetchCompleted(region, year, time.Since(start), err)
		return records, err
	})
	if err != nil {
		return sales.Table{}, err
	}
	if hit {
		s.observer.CacheHit(region, year)
	} else {
		s.observer.CacheMiss(region, year)
	}
	return sales.NewTable(records), nil
}

// Invalidate drops every cached record set.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Reset(ctx)
}

func labelValue(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
