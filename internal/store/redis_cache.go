package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// RedisClient defines the subset of the Redis client used by the cache
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisCache caches feature rows keyed by profile, battle id and a digest of
// the battle content, so an edited battle never hits a stale entry.
type RedisCache struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisCache wraps a client. A zero ttl keeps entries forever.
func NewRedisCache(client RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey builds features:<profile>:<battle_id>:<digest>.
func CacheKey(profile string, b *models.BattleRecord) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("digest battle %s: %w", b.BattleID, err)
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("features:%s:%s:%s", profile, b.BattleID, hex.EncodeToString(sum[:12])), nil
}

// Get returns the cached row, reporting false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (models.FeatureRecord, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.FeatureRecord{}, false, nil
	}
	if err != nil {
		return models.FeatureRecord{}, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var rec models.FeatureRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.FeatureRecord{}, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return rec, true, nil
}

// Put stores a row.
func (c *RedisCache) Put(ctx context.Context, key string, rec models.FeatureRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
