package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travelagency/pkg/config"
)

// NewRedisClient returns nil when Redis is unreachable; callers degrade to
// running without caching and rate limiting.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if strings.HasPrefix(cfg.Addr, "rediss://") {
		parsed, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil
		}
		opts = parsed
		if opts.TLSConfig == nil {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// Records caches single records keyed by kind and id. Entries are deleted,
// never merged, when the record changes.
type Records interface {
	Get(ctx context.Context, kind, id string, dest any) bool
	Set(ctx context.Context, kind, id string, v any)
	Invalidate(ctx context.Context, kind, id string)
}

type RedisRecords struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRecords returns a no-op cache when rdb is nil or caching is disabled.
func NewRecords(rdb *redis.Client, cfg config.CacheConfig) Records {
	if rdb == nil || !cfg.Enabled {
		return Nop{}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRecords{rdb: rdb, prefix: cfg.Prefix, ttl: ttl}
}

func Key(prefix, kind, id string) string {
	if prefix == "" {
		return kind + ":" + id
	}
	return prefix + ":" + kind + ":" + id
}

func (c *RedisRecords) Get(ctx context.Context, kind, id string, dest any) bool {
	b, err := c.rdb.Get(ctx, Key(c.prefix, kind, id)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (c *RedisRecords) Set(ctx context.Context, kind, id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.SetEx(ctx, Key(c.prefix, kind, id), b, c.ttl).Err()
}

func (c *RedisRecords) Invalidate(ctx context.Context, kind, id string) {
	_ = c.rdb.Del(ctx, Key(c.prefix, kind, id)).Err()
}

type Nop struct{}

func (Nop) Get(context.Context, string, string, any) bool { return false }
func (Nop) Set(context.Context, string, string, any)      {}
func (Nop) Invalidate(context.Context, string, string)    {}
