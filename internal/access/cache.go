package access

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "access:version"

// Cache wraps Redis based caching of permission matrix cells with versioning
// controls. Every matrix mutation bumps the version, invalidating all cached
// decisions at once. Redis is never the source of truth: misses and outages
// fall through to storage.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type cachedCell struct {
	Found bool  `json:"found"`
	Flags Flags `json:"flags"`
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates every cached decision by incrementing the version.
func (c *Cache) Bump(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Incr(ctx, cacheVersionKey).Err()
}

// Flags loads a cached matrix cell or populates it using the loader.
// Concurrent lookups of the same cell share one storage round trip.
func (c *Cache) Flags(ctx context.Context, roleID, menuID int64, loader func(context.Context) (Flags, bool, error)) (Flags, bool, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	ver, err := c.Version(ctx)
	if err != nil {
		return loader(ctx)
	}
	key := fmt.Sprintf("access:decide:%d:%d:%d", roleID, menuID, ver)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cell cachedCell
		if err := json.Unmarshal(raw, &cell); err == nil {
			return cell.Flags, cell.Found, nil
		}
	}

	result := c.group.DoChan(key, func() (interface{}, error) {
		flags, found, err := loader(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		cell := cachedCell{Found: found, Flags: flags}
		if raw, err := json.Marshal(cell); err == nil {
			_ = c.client.Set(context.WithoutCancel(ctx), key, raw, c.ttl).Err()
		}
		return cell, nil
	})

	select {
	case <-ctx.Done():
		return Flags{}, false, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return Flags{}, false, res.Err
		}
		cell := res.Val.(cachedCell)
		return cell.Flags, cell.Found, nil
	}
}
