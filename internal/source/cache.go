package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/salesdash/salesdash/internal/sales"
)

const (
	cacheVersionKey    = "sales:version"
	bumpChannel        = "sales.bump"
	defaultLoadTimeout = 30 * time.Second
)

// Loader produces the records for a cache miss.
type Loader func(context.Context) ([]sales.Record, error)

type localEntry struct {
	records []sales.Record
	expires time.Time
}

// Cache keeps fetched record sets keyed by parameter tuple. With a Redis
// client entries are shared between processes and versioned; without one they
// live in an in-process map for the lifetime of the process or the TTL.
type Cache struct {
	client      *redis.Client
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group

	mu      sync.Mutex
	local   map[string]localEntry
	version int64
	now     func() time.Time
}

// NewCache instantiates the cache. A nil client selects the in-process backend.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client:      client,
		ttl:         ttl,
		loadTimeout: defaultLoadTimeout,
		local:       make(map[string]localEntry),
		version:     1,
		now:         time.Now,
	}
}

// WithLoadTimeout bounds a shared load. Non-positive values keep the default.
func (c *Cache) WithLoadTimeout(d time.Duration) *Cache {
	if c != nil && d > 0 {
		c.loadTimeout = d
	}
	return c
}

// Shared reports whether entries live in Redis.
func (c *Cache) Shared() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.version, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("source: cache version: %w", err)
	}
	return fmt.Sprintf("%s:v%d", strings.Join(parts, ":"), ver), nil
}

// Fetch returns the cached records for key or populates the entry using load.
// Concurrent misses for one key share a single load. The boolean reports a hit.
func (c *Cache) Fetch(ctx context.Context, key string, load Loader) ([]sales.Record, bool, error) {
	if load == nil {
		return nil, false, errors.New("source: cache loader required")
	}
	if c == nil {
		records, err := load(ctx)
		return records, false, err
	}
	if records, ok, err := c.get(ctx, key); err != nil {
		return nil, false, err
	} else if ok {
		return records, true, nil
	}

	// The load is shared by every caller waiting on key, so it must not end
	// when the first caller goes away.
	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		if records, ok, err := c.get(loadCtx, key); err == nil && ok {
			return records, nil
		}
		records, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := c.set(loadCtx, key, records); err != nil {
			return nil, err
		}
		return records, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]sales.Record), false, nil
	}
}

func (c *Cache) get(ctx context.Context, key string) ([]sales.Record, bool, error) {
	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		entry, ok := c.local[key]
		if !ok {
			return nil, false, nil
		}
		if !entry.expires.IsZero() && c.now().After(entry.expires) {
			delete(c.local, key)
			return nil, false, nil
		}
		return entry.records, true, nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("source: cache get: %w", err)
	}
	var records []sales.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("source: cache decode: %w", err)
	}
	return records, true, nil
}

// set stores records under key. Writes for a key built before the last Bump
// are dropped since no later BuildKey can produce it again.
func (c *Cache) set(ctx context.Context, key string, records []sales.Record) error {
	keyVer, versioned := keyVersion(key)
	if c.client == nil {
		entry := localEntry{records: records}
		if c.ttl > 0 {
			entry.expires = c.now().Add(c.ttl)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if versioned && keyVer < c.version {
			return nil
		}
		c.local[key] = entry
		return nil
	}
	if versioned {
		current, err := c.Version(ctx)
		if err != nil {
			return fmt.Errorf("source: cache version: %w", err)
		}
		if keyVer < current {
			return nil
		}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("source: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("source: cache set: %w", err)
	}
	return nil
}

// keyVersion extracts the version suffix appended by BuildKey.
func keyVersion(key string) (int64, bool) {
	i := strings.LastIndex(key, ":v")
	if i < 0 {
		return 0, false
	}
	ver, err := strconv.ParseInt(key[i+2:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ver, true
}

// Bump invalidates every entry by incrementing the version. With Redis the new
// version is published so other processes follow.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.client == nil {
		c.mu.Lock()
		c.version++
		c.local = make(map[string]localEntry)
		c.mu.Unlock()
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("source: cache bump: %w", err)
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// Reset drops all cached data.
func (c *Cache) Reset(ctx context.Context) error {
	return c.Bump(ctx)
}

// Len reports the number of in-process entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.local)
}

// ListenForInvalidation subscribes to version bump notifications.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("source: subscribe: %w", err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
					continue
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
			}
		}
	}()
	return nil
}
