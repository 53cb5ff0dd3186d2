package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/miragerp/statuswatch/internal/logger"
)

// KeyPrefix namespaces statuswatch entries in a shared Redis instance.
const KeyPrefix = "statuswatch:cache:"

// Redis is an alternative Store backed by Redis, for deployments running
// several web replicas that should share one status cache. The envelope
// carries its own capture timestamp so freshness semantics match the
// memory store exactly; the Redis key TTL only bounds memory.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger
}

type redisEnvelope struct {
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

func NewRedis(client *redis.Client, ttl time.Duration, log logger.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("redis cache read failed",
				logger.String("key", key),
				logger.Error(err))
		}
		return nil, false
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.Warn("redis cache entry is corrupt",
			logger.String("key", key),
			logger.Error(err))
		return nil, false
	}
	if r.now().Sub(env.CachedAt) >= r.ttl {
		return nil, false
	}
	return env.Data, true
}

func (r *Redis) Set(ctx context.Context, key string, data []byte) {
	env := redisEnvelope{Data: data, CachedAt: r.now()}
	raw, err := json.Marshal(env)
	if err != nil {
		r.log.Warn("failed to marshal cache envelope",
			logger.String("key", key),
			logger.Error(err))
		return
	}
	// Key TTL is twice the freshness window so Stats can still report
	// recently expired entries before Redis drops them.
	if err := r.client.Set(ctx, KeyPrefix+key, raw, 2*r.ttl).Err(); err != nil {
		r.log.Warn("redis cache write failed",
			logger.String("key", key),
			logger.Error(err))
	}
}

func (r *Redis) Stats(ctx context.Context) map[string]KeyStats {
	stats := make(map[string]KeyStats)
	now := r.now()

	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		raw, err := r.client.Get(ctx, fullKey).Bytes()
		if err != nil {
			continue
		}
		var env redisEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		age := now.Sub(env.CachedAt)
		stats[fullKey[len(KeyPrefix):]] = KeyStats{
			AgeSeconds: int(age.Seconds()),
			Expired:    age >= r.ttl,
		}
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("redis cache scan failed", logger.Error(err))
	}
	return stats
}

func (r *Redis) Sweep(ctx context.Context) int {
	now := r.now()
	deleted := 0

	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		raw, err := r.client.Get(ctx, fullKey).Bytes()
		if err != nil {
			continue
		}
		var env redisEnvelope
		if err := json.Unmarshal(raw, &env); err == nil && now.Sub(env.CachedAt) < r.ttl {
			continue
		}
		if err := r.client.Del(ctx, fullKey).Err(); err != nil {
			r.log.Warn("redis cache delete failed",
				logger.String("key", fullKey),
				logger.Error(err))
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("redis cache scan failed", logger.Error(err))
	}
	return deleted
}
