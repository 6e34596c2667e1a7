package release

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "heirloom/pkg/domain"
)

// defaultActiveTTL bounds staleness of cached active-release lookups. The
// service invalidates on every mutation, so the TTL only matters when another
// process mutates the same vault.
const defaultActiveTTL = 30 * time.Second

// RedisActiveCache caches ActiveRelease results in Redis. Cache failures are
// logged and treated as misses; the store stays authoritative.
type RedisActiveCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisActiveCache(client *redis.Client, logger *slog.Logger) *RedisActiveCache {
	return &RedisActiveCache{client: client, ttl: defaultActiveTTL, logger: logger}
}

func activeKey(vaultID id.VaultID) string {
	return "release:active:" + vaultID.String()
}

func (c *RedisActiveCache) Get(ctx context.Context, vaultID id.VaultID) (*Release, bool) {
	raw, err := c.client.Get(ctx, activeKey(vaultID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "active release cache read failed", "error", err.Error())
		}
		return nil, false
	}
	var release Release
	if err := json.Unmarshal(raw, &release); err != nil {
		c.logger.WarnContext(ctx, "active release cache entry corrupt", "error", err.Error())
		return nil, false
	}
	return &release, true
}

func (c *RedisActiveCache) Set(ctx context.Context, vaultID id.VaultID, release *Release) {
	raw, err := json.Marshal(release)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, activeKey(vaultID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "active release cache write failed", "error", err.Error())
	}
}

func (c *RedisActiveCache) Invalidate(ctx context.Context, vaultID id.VaultID) {
	if err := c.client.Del(ctx, activeKey(vaultID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "active release cache invalidation failed", "error", err.Error())
	}
}
